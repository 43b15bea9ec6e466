package logging

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"google.golang.org/grpc/grpclog"
)

// AutopaginateWarning is the marker of the client library notice that is
// suppressed while shell assignments are being rendered.
const AutopaginateWarning = "AutopaginateTrueWarning"

// FilterWriter forwards complete lines to the wrapped writer, dropping any line
// that contains one of the configured substrings. Partial lines are buffered
// until a newline arrives or Flush is called.
type FilterWriter struct {
	mu       sync.Mutex
	next     io.Writer
	patterns []string
	pending  []byte
}

// NewFilterWriter wraps next so that lines matching any of patterns are dropped.
func NewFilterWriter(next io.Writer, patterns ...string) *FilterWriter {
	return &FilterWriter{next: next, patterns: patterns}
}

// Write implements io.Writer. It always reports len(p) consumed unless the
// underlying writer fails.
func (f *FilterWriter) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pending = append(f.pending, p...)
	for {
		idx := bytes.IndexByte(f.pending, '\n')
		if idx < 0 {
			break
		}
		line := f.pending[:idx+1]
		if err := f.forward(line); err != nil {
			return 0, err
		}
		f.pending = f.pending[idx+1:]
	}
	return len(p), nil
}

// Flush writes any buffered partial line.
func (f *FilterWriter) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.pending) == 0 {
		return nil
	}
	err := f.forward(f.pending)
	f.pending = nil
	return err
}

func (f *FilterWriter) forward(line []byte) error {
	s := string(line)
	for _, pattern := range f.patterns {
		if pattern != "" && strings.Contains(s, pattern) {
			return nil
		}
	}
	_, err := f.next.Write(line)
	return err
}

var grpcLogOnce sync.Once

// RouteGRPCLogs sends gRPC's internal logger through w. Only the first call
// has an effect; grpclog does not allow replacing the logger once RPCs start.
func RouteGRPCLogs(w io.Writer) {
	grpcLogOnce.Do(func() {
		grpclog.SetLoggerV2(newGRPCLogger(w))
	})
}

// newGRPCLogger drops info output and writes warnings and errors to w once
// each; grpclog copies every error line to the warning writer as well.
func newGRPCLogger(w io.Writer) grpclog.LoggerV2 {
	return grpclog.NewLoggerV2(io.Discard, w, io.Discard)
}
