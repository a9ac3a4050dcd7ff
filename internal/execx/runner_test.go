package execx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesOutput(t *testing.T) {
	runner := New()

	result, err := runner.Run(context.Background(), "sh", "-c", "echo out; echo err >&2")
	require.NoError(t, err)
	assert.Equal(t, "out\n", string(result.Stdout))
	assert.Equal(t, "err\n", string(result.Stderr))
	assert.Equal(t, 0, result.ExitCode)
}

func TestRunNonzeroExit(t *testing.T) {
	runner := New()

	result, err := runner.Run(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 3, result.ExitCode)
	assert.Contains(t, err.Error(), "exited with code 3")
	assert.Contains(t, err.Error(), "boom")
}

func TestRunMissingBinary(t *testing.T) {
	runner := New()

	_, err := runner.Run(context.Background(), "definitely-not-a-binary-xyz")
	assert.Error(t, err)
}

func TestRedact(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "password flag value hidden",
			args: []string{"users", "create", "--username", "admin", "--password", "hunter2"},
			want: []string{"users", "create", "--username", "admin", "--password", "****"},
		},
		{
			name: "conn password hidden",
			args: []string{"connections", "add", "slack", "--conn-password", "tok"},
			want: []string{"connections", "add", "slack", "--conn-password", "****"},
		},
		{
			name: "no secrets untouched",
			args: []string{"db", "init"},
			want: []string{"db", "init"},
		},
		{
			name: "trailing flag without value",
			args: []string{"--password"},
			want: []string{"--password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := make([]string, len(tt.args))
			copy(original, tt.args)

			assert.Equal(t, tt.want, Redact(tt.args))
			assert.Equal(t, original, tt.args, "input slice must not be mutated")
		})
	}
}

func TestStderrTail(t *testing.T) {
	assert.Equal(t, "last line", stderrTail([]byte("first\nsecond\nlast line\n")))
	assert.Equal(t, "only", stderrTail([]byte("only")))
	assert.Equal(t, "(no stderr)", stderrTail(nil))
}
