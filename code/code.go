// Package code runs code snippets written by the coder worker.
package code

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Supported languages.
const (
	Python = "python"
	Bash   = "bash"
)

// ErrUnsupportedLanguage is returned for languages without an interpreter.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Result is the outcome of one execution. A non-zero exit code is a result,
// not an error.
type Result struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// Executor defines the interface for executing code snippets.
type Executor interface {
	// Execute runs source with the interpreter for language.
	Execute(ctx context.Context, language, source string) (Result, error)
}

// ProcessOptions configures a ProcessExecutor.
type ProcessOptions struct {
	// Dir is the working directory of the interpreter.
	Dir string
	// Timeout bounds one execution. Defaults to 60s.
	Timeout time.Duration
	// MaxOutput truncates stdout and stderr. Defaults to 32KiB each.
	MaxOutput int
	// Interpreters maps a language to its command line; the source is
	// appended as the last argument.
	Interpreters map[string][]string
}

// ProcessExecutor runs snippets in a local interpreter process.
type ProcessExecutor struct {
	opts ProcessOptions
}

var _ Executor = (*ProcessExecutor)(nil)

// NewProcessExecutor creates a ProcessExecutor with python3 and bash.
func NewProcessExecutor(optFns ...func(o *ProcessOptions)) *ProcessExecutor {
	opts := ProcessOptions{
		Timeout:   60 * time.Second,
		MaxOutput: 32 << 10,
		Interpreters: map[string][]string{
			Python: {"python3", "-c"},
			Bash:   {"bash", "-c"},
		},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ProcessExecutor{opts: opts}
}

// Execute implements Executor.
func (e *ProcessExecutor) Execute(ctx context.Context, language, source string) (Result, error) {
	argv, ok := e.opts.Interpreters[language]
	if !ok || len(argv) == 0 {
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	args := append(append([]string(nil), argv[1:]...), source)
	cmd := exec.CommandContext(ctx, argv[0], args...)
	cmd.Dir = e.opts.Dir
	// Children of the interpreter may keep the output pipes open after it
	// was killed.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := Result{
		Stdout: truncate(stdout.String(), e.opts.MaxOutput),
		Stderr: truncate(stderr.String(), e.opts.MaxOutput),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return res, fmt.Errorf("execute %s: %w", language, ctx.Err())
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return res, fmt.Errorf("execute %s: %w", language, err)
	}

	return res, nil
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit] + "\n... (truncated)"
}
