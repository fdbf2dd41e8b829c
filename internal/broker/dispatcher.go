package broker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
	"unicode/utf8"
)

const defaultShell = "/bin/sh"

// Dispatcher executes validated, confirmed actions against the host. A
// failed action is reported, never retried.
type Dispatcher struct {
	shell   string
	timeout time.Duration
}

// NewDispatcher creates a dispatcher. timeout bounds run-command wall-clock
// time; zero means no limit.
func NewDispatcher(timeout time.Duration) *Dispatcher {
	return &Dispatcher{shell: defaultShell, timeout: timeout}
}

// Dispatch runs the action and returns its success payload. The type switch
// is exhaustive over the action variants built by parseAction.
func (d *Dispatcher) Dispatch(ctx context.Context, act action) (map[string]any, error) {
	switch a := act.(type) {
	case *runCommandAction:
		return d.runCommand(ctx, a)
	case *readFileAction:
		return d.readFile(a)
	case *writeFileAction:
		return d.writeFile(a)
	default:
		return nil, &ExecutionError{Msg: fmt.Sprintf("unhandled action type %T", act)}
	}
}

// runCommand executes the full command string through the shell so that
// pipes and redirection work. A nonzero exit code is not an error here: the
// command ran as requested and the code is reported in the payload. The
// child is killed on context cancellation, and output capture completes
// before return.
func (d *Dispatcher) runCommand(ctx context.Context, a *runCommandAction) (map[string]any, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, d.shell, "-c", a.Command)
	if a.WorkingDir != "" {
		cmd.Dir = a.WorkingDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return nil, &ExecutionError{Msg: "command could not be started", Err: err}
		}
	}

	return map[string]any{
		"stdout":    stdout.String(),
		"stderr":    stderr.String(),
		"exit_code": exitCode,
	}, nil
}

// readFile reads the file as UTF-8 text. Content that does not decode
// degrades to a binary marker with the file size, a partial success rather
// than an error.
func (d *Dispatcher) readFile(a *readFileAction) (map[string]any, error) {
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, &ExecutionError{Msg: fmt.Sprintf("cannot read %s", a.Path), Err: err}
	}

	if !utf8.Valid(data) {
		return map[string]any{
			"file_path":  a.Path,
			"binary":     true,
			"size_bytes": len(data),
		}, nil
	}

	return map[string]any{
		"file_path": a.Path,
		"content":   string(data),
	}, nil
}

// writeFile writes the content, creating missing parent directories first.
// bytes_written is measured after encoding, not in characters.
func (d *Dispatcher) writeFile(a *writeFileAction) (map[string]any, error) {
	if dir := filepath.Dir(a.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &ExecutionError{Msg: fmt.Sprintf("cannot create parent directories for %s", a.Path), Err: err}
		}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if a.Append {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}

	f, err := os.OpenFile(a.Path, flags, 0o644)
	if err != nil {
		return nil, &ExecutionError{Msg: fmt.Sprintf("cannot open %s for writing", a.Path), Err: err}
	}
	defer f.Close()

	n, err := f.Write([]byte(a.Content))
	if err != nil {
		return nil, &ExecutionError{Msg: fmt.Sprintf("write to %s failed", a.Path), Err: err}
	}

	return map[string]any{
		"file_path":     a.Path,
		"status":        fmt.Sprintf("wrote %d bytes to %s", n, a.Path),
		"bytes_written": n,
	}, nil
}
