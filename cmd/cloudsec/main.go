package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/awnumar/memguard"

	"github.com/systmms/cloudsec/cmd/cloudsec/commands"
	"github.com/systmms/cloudsec/internal/config"
	dserrors "github.com/systmms/cloudsec/internal/errors"
	"github.com/systmms/cloudsec/internal/providers"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	defer memguard.Purge()

	cfg := &config.Config{}
	rootCmd := commands.NewRootCommand(cfg, fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date))
	err := rootCmd.ExecuteContext(context.Background())

	if cfg.MetricsFile != "" {
		if merr := providers.WriteMetrics(cfg.MetricsFile); merr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write metrics: %v\n", merr)
		}
	}

	if err == nil {
		return 0
	}

	var cmdErr dserrors.CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
		// exec passes the child's status through; the child already
		// reported its own failure.
		return cmdErr.ExitCode
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", dserrors.SimplifyError(err))
	return 1
}
