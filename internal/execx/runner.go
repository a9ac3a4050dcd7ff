// Package execx runs the external command surface (the airflow CLI and the
// derived-variable script) with captured output and exit codes.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Result holds the captured outcome of one command invocation.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes external commands. The concrete implementation shells out;
// tests substitute a fake to drive the layers above without real binaries.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*Result, error)
}

// CLIRunner runs commands on the host, inheriting the process environment so
// the invoked CLI sees the same deployment variables this process does.
type CLIRunner struct{}

func New() *CLIRunner {
	return &CLIRunner{}
}

// Run executes name with args and blocks until it exits. A nonzero exit
// returns both the populated Result and an error carrying the stderr tail.
func (r *CLIRunner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("command", name).Strs("args", Redact(args)).Msg("Running command")

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, fmt.Errorf("%s exited with code %d: %s", name, result.ExitCode, stderrTail(stderr.Bytes()))
		}
		return result, fmt.Errorf("starting %s: %w", name, err)
	}
	return result, nil
}

// Redact replaces the value following any password-carrying flag so argv can
// be logged safely.
func Redact(args []string) []string {
	redacted := make([]string, len(args))
	copy(redacted, args)
	for i := 0; i < len(redacted)-1; i++ {
		switch redacted[i] {
		case "-p", "--password", "--conn-password":
			redacted[i+1] = "****"
		}
	}
	return redacted
}

// stderrTail returns the last line of stderr, which is where CLI tools put
// their operative diagnostic.
func stderrTail(stderr []byte) string {
	trimmed := strings.TrimSpace(string(stderr))
	if trimmed == "" {
		return "(no stderr)"
	}
	if idx := strings.LastIndexByte(trimmed, '\n'); idx >= 0 {
		return strings.TrimSpace(trimmed[idx+1:])
	}
	return trimmed
}
