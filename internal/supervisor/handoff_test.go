package supervisor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bserrors "github.com/dataservices/airflow-bootstrap/internal/errors"
)

func TestExecReplacesProcessImage(t *testing.T) {
	var gotArgv0 string
	var gotArgv []string
	var gotEnv []string

	h := New("/etc/supervisor/supervisord.conf")
	h.lookPath = func(file string) (string, error) {
		assert.Equal(t, "supervisord", file)
		return "/usr/bin/supervisord", nil
	}
	h.execFunc = func(argv0 string, argv []string, envv []string) error {
		gotArgv0 = argv0
		gotArgv = argv
		gotEnv = envv
		return nil
	}

	require.NoError(t, h.Exec(context.Background()))
	assert.Equal(t, "/usr/bin/supervisord", gotArgv0)
	assert.Equal(t, []string{"/usr/bin/supervisord", "-c", "/etc/supervisor/supervisord.conf"}, gotArgv)
	assert.NotEmpty(t, gotEnv, "supervisord inherits the deployment environment")
}

func TestExecBinaryNotFound(t *testing.T) {
	h := New("/etc/supervisor/supervisord.conf")
	h.lookPath = func(string) (string, error) {
		return "", errors.New("executable file not found in $PATH")
	}
	h.execFunc = func(string, []string, []string) error {
		t.Fatal("exec must not be attempted without a resolved binary")
		return nil
	}

	err := h.Exec(context.Background())
	assert.ErrorIs(t, err, bserrors.ErrSupervisorNotFound)
}

func TestExecFailureReturnsError(t *testing.T) {
	h := New("/etc/supervisor/supervisord.conf")
	h.lookPath = func(string) (string, error) { return "/usr/bin/supervisord", nil }
	h.execFunc = func(string, []string, []string) error {
		return errors.New("permission denied")
	}

	err := h.Exec(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exec /usr/bin/supervisord")
}
