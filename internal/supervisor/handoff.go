// Package supervisor performs the final hand-off: replacing this process
// image with supervisord. The bootstrap's lifetime ends here; on success
// nothing below Exec ever runs.
package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/rs/zerolog"

	bserrors "github.com/dataservices/airflow-bootstrap/internal/errors"
)

// Handoff execs into supervisord with a fixed configuration path.
type Handoff struct {
	Binary     string
	ConfigPath string

	// execFunc defaults to syscall.Exec. Tests override it to capture the
	// argv instead of having the test process replaced.
	execFunc func(argv0 string, argv []string, envv []string) error
	lookPath func(file string) (string, error)
}

func New(configPath string) *Handoff {
	return &Handoff{
		Binary:     "supervisord",
		ConfigPath: configPath,
		execFunc:   syscall.Exec,
		lookPath:   exec.LookPath,
	}
}

// Exec replaces the current process image with supervisord. On success this
// function does not return; any return value is a failure.
func (h *Handoff) Exec(ctx context.Context) error {
	path, err := h.lookPath(h.Binary)
	if err != nil {
		return fmt.Errorf("%w: %v", bserrors.ErrSupervisorNotFound, err)
	}

	zerolog.Ctx(ctx).Info().Str("binary", path).Str("config", h.ConfigPath).Msg("Handing off to supervisord")

	argv := []string{path, "-c", h.ConfigPath}
	if err := h.execFunc(path, argv, os.Environ()); err != nil {
		return fmt.Errorf("exec %s: %w", path, err)
	}
	// Reached only with an overridden execFunc: the real syscall.Exec does
	// not return on success.
	return nil
}
