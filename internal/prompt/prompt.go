// Package prompt reads answers from the user for interactive commands.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	dserrors "github.com/systmms/cloudsec/internal/errors"
)

// Option is one entry of a Select prompt.
type Option struct {
	Label    string
	Value    string
	Disabled bool
}

// Prompter asks questions. Implementations must fail rather than block when
// no answer can be obtained.
type Prompter interface {
	// Input reads a line, returning defaultValue for an empty answer. When
	// validate is non-nil the question is repeated until it passes.
	Input(message, defaultValue string, validate func(string) error) (string, error)

	// Password reads a line without echo when the input is a terminal.
	// The caller owns the returned slice and should wipe it.
	Password(message string) ([]byte, error)

	// Confirm asks a yes/no question.
	Confirm(message string, defaultYes bool) (bool, error)

	// Select asks for one of options by number or value.
	Select(message string, options []Option, defaultValue string) (string, error)
}

// ErrNonInteractive is wrapped by every prompt refused in non-interactive mode.
var ErrNonInteractive = errors.New("interactive input required")

// Terminal prompts on a reader/writer pair, typically stdin and stderr.
type Terminal struct {
	in             *bufio.Reader
	fd             int
	isTTY          bool
	out            io.Writer
	nonInteractive bool
}

// NewTerminal creates a prompter. Hidden input is used only when in is a
// terminal file.
func NewTerminal(in io.Reader, out io.Writer, nonInteractive bool) *Terminal {
	t := &Terminal{
		in:             bufio.NewReader(in),
		fd:             -1,
		out:            out,
		nonInteractive: nonInteractive,
	}
	if f, ok := in.(*os.File); ok {
		t.fd = int(f.Fd())
		t.isTTY = term.IsTerminal(t.fd)
	}
	return t
}

func (t *Terminal) refuse(message string) error {
	return dserrors.UserError{
		Message:    fmt.Sprintf("Cannot prompt for %q in non-interactive mode", strings.TrimSuffix(message, ":")),
		Suggestion: "Pass the value as an argument or flag, or drop --non-interactive",
		Err:        fmt.Errorf("%w: %w", dserrors.ErrInvalidInput, ErrNonInteractive),
	}
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", dserrors.UserError{
				Message: "Input closed before an answer was given",
				Err:     fmt.Errorf("%w: %w", dserrors.ErrInvalidInput, err),
			}
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *Terminal) Input(message, defaultValue string, validate func(string) error) (string, error) {
	if t.nonInteractive {
		return "", t.refuse(message)
	}

	for {
		if defaultValue != "" {
			fmt.Fprintf(t.out, "? %s (%s) ", message, defaultValue)
		} else {
			fmt.Fprintf(t.out, "? %s ", message)
		}

		answer, err := t.readLine()
		if err != nil {
			return "", err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			answer = defaultValue
		}

		if validate != nil {
			if verr := validate(answer); verr != nil {
				fmt.Fprintf(t.out, "  %s\n", verr)
				continue
			}
		}
		return answer, nil
	}
}

func (t *Terminal) Password(message string) ([]byte, error) {
	if t.nonInteractive {
		return nil, t.refuse(message)
	}

	fmt.Fprintf(t.out, "? %s ", message)
	if t.isTTY {
		secret, err := term.ReadPassword(t.fd)
		fmt.Fprintln(t.out)
		if err != nil {
			return nil, fmt.Errorf("failed to read hidden input: %w", err)
		}
		return secret, nil
	}

	line, err := t.readLine()
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}

func (t *Terminal) Confirm(message string, defaultYes bool) (bool, error) {
	if t.nonInteractive {
		return false, t.refuse(message)
	}

	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}

	for {
		fmt.Fprintf(t.out, "? %s (%s) ", message, hint)
		answer, err := t.readLine()
		if err != nil {
			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			fmt.Fprintln(t.out, "  Please answer yes or no.")
		}
	}
}

func (t *Terminal) Select(message string, options []Option, defaultValue string) (string, error) {
	if t.nonInteractive {
		return "", t.refuse(message)
	}

	fmt.Fprintf(t.out, "? %s\n", message)
	for i, opt := range options {
		label := opt.Label
		if label == "" {
			label = opt.Value
		}
		if opt.Disabled {
			label += " (coming soon)"
		}
		marker := " "
		if opt.Value == defaultValue {
			marker = ">"
		}
		fmt.Fprintf(t.out, " %s %d) %s\n", marker, i+1, label)
	}

	for {
		fmt.Fprint(t.out, "  Choice: ")
		answer, err := t.readLine()
		if err != nil {
			return "", err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" && defaultValue != "" {
			return defaultValue, nil
		}

		choice := -1
		if n, convErr := strconv.Atoi(answer); convErr == nil && n >= 1 && n <= len(options) {
			choice = n - 1
		} else {
			for i, opt := range options {
				if strings.EqualFold(opt.Value, answer) {
					choice = i
					break
				}
			}
		}

		switch {
		case choice < 0:
			fmt.Fprintln(t.out, "  Invalid selection. Please try again.")
		case options[choice].Disabled:
			fmt.Fprintf(t.out, "  %s is not available yet.\n", options[choice].Value)
		default:
			return options[choice].Value, nil
		}
	}
}

// Required rejects blank answers.
func Required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
