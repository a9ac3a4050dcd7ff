package sequencer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExecutesStagesInOrder(t *testing.T) {
	var order []string
	stage := func(name string) Stage {
		return Stage{Name: name, Run: func(context.Context) error {
			order = append(order, name)
			return nil
		}}
	}

	seq := New([]Stage{stage("first"), stage("second"), stage("third")})
	results, err := seq.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, order)
	require.Len(t, results, 3)
	for i, result := range results {
		assert.Equal(t, order[i], result.Name)
		assert.NoError(t, result.Err)
	}
}

func TestRunAbortsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	var ran []string

	seq := New([]Stage{
		{Name: "ok", Run: func(context.Context) error {
			ran = append(ran, "ok")
			return nil
		}},
		{Name: "fails", Run: func(context.Context) error {
			ran = append(ran, "fails")
			return boom
		}},
		{Name: "never", Run: func(context.Context) error {
			ran = append(ran, "never")
			return nil
		}},
	})

	results, err := seq.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "stage fails")
	assert.Equal(t, []string{"ok", "fails"}, ran)

	// Partial results are returned so callers can see what happened.
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, boom)
}

func TestPlanListsWithoutRunning(t *testing.T) {
	ran := false
	seq := New([]Stage{
		{Name: "a", Run: func(context.Context) error { ran = true; return nil }},
		{Name: "b", Run: func(context.Context) error { ran = true; return nil }},
	})

	assert.Equal(t, []string{"a", "b"}, seq.Plan())
	assert.False(t, ran)
}

func TestRunIDsAreUnique(t *testing.T) {
	a := New(nil)
	b := New(nil)
	assert.NotEmpty(t, a.RunID())
	assert.NotEqual(t, a.RunID(), b.RunID())
}
