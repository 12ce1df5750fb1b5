package tvmc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes one tvmc invocation and blocks until it terminates.
// A nil return means the tool exited zero.
type Runner interface {
	Run(ctx context.Context, args []string, dir string) error
}

// ExitError reports a tvmc invocation that ran but exited non-zero.
type ExitError struct {
	Status int
	// Output is the trimmed combined stdout/stderr of the failed run.
	Output string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("tvmc exited with status %d", e.Status)
}

// SpawnError reports a tvmc invocation that could not be started at all
// (missing executable, permission error).
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("starting tvmc: %v", e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExecRunner runs tvmc as a child process.
type ExecRunner struct {
	// Command is the tvmc executable and any leading arguments, e.g.
	// ["tvmc"] or ["python3", "-m", "tvm.driver.tvmc"].
	Command []string

	// Stdout and Stderr, when set, receive the child's output as it is
	// produced. Output is always captured for diagnostics as well.
	Stdout io.Writer
	Stderr io.Writer

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// DefaultCommand is the tvmc invocation used when none is configured.
var DefaultCommand = []string{"tvmc"}

// Executable returns the program ExecRunner would spawn.
func (r *ExecRunner) Executable() string {
	if len(r.Command) == 0 {
		return DefaultCommand[0]
	}
	return r.Command[0]
}

// Run spawns tvmc with the given arguments, waits for it to terminate, and
// maps the outcome to nil, *ExitError, or *SpawnError. The fully quoted
// command line and working directory are logged at debug level before
// spawning so failures can be reproduced by hand.
func (r *ExecRunner) Run(ctx context.Context, args []string, dir string) error {
	base := r.Command
	if len(base) == 0 {
		base = DefaultCommand
	}
	argv := make([]string, 0, len(base)+len(args))
	argv = append(argv, base...)
	argv = append(argv, args...)

	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("run", "cmd", QuoteCommand(argv), "dir", dir)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if r.Stdout != nil {
		cmd.Stdout = io.MultiWriter(r.Stdout, &buf)
	}
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(r.Stderr, &buf)
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{
				Status: exitErr.ExitCode(),
				Output: strings.TrimSpace(buf.String()),
			}
		}
		return &SpawnError{Err: err}
	}
	return nil
}

// QuoteCommand renders an argument vector as a single copy-pasteable line.
// Arguments without whitespace or quotes pass through untouched.
func QuoteCommand(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		if a == "" || strings.ContainsAny(a, " \t\n\"'") {
			quoted[i] = strconv.Quote(a)
		} else {
			quoted[i] = a
		}
	}
	return strings.Join(quoted, " ")
}
