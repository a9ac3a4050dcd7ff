// Package sequencer executes the ordered bootstrap stages. Stages run
// strictly sequentially, the first failure aborts the remainder, and there
// are no retries and no rollback: a mid-sequence failure leaves the
// deployment partially initialized for the next run to finish.
package sequencer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
)

// Stage is one step of the bootstrap sequence.
type Stage struct {
	Name string
	Run  func(ctx context.Context) error
}

// StageResult records the outcome of a single stage.
type StageResult struct {
	Name     string
	Duration time.Duration
	Err      error
}

// Sequencer runs stages in declaration order under a per-run ID.
type Sequencer struct {
	runID  ksuid.KSUID
	stages []Stage
}

func New(stages []Stage) *Sequencer {
	return &Sequencer{runID: ksuid.New(), stages: stages}
}

func (s *Sequencer) RunID() string {
	return s.runID.String()
}

// Plan returns the stage names in execution order without running anything.
func (s *Sequencer) Plan() []string {
	names := make([]string, 0, len(s.stages))
	for _, stage := range s.stages {
		names = append(names, stage.Name)
	}
	return names
}

// Run executes the stages. It returns the results accumulated so far along
// with the first error; callers get a full trace of what ran even on
// failure.
func (s *Sequencer) Run(ctx context.Context) ([]StageResult, error) {
	logger := zerolog.Ctx(ctx).With().Str("run_id", s.runID.String()).Logger()
	ctx = logger.WithContext(ctx)

	results := make([]StageResult, 0, len(s.stages))
	for _, stage := range s.stages {
		logger.Info().Str("stage", stage.Name).Msg("Stage starting")
		start := time.Now()
		err := stage.Run(ctx)
		result := StageResult{Name: stage.Name, Duration: time.Since(start), Err: err}
		results = append(results, result)

		if err != nil {
			logger.Error().Err(err).Str("stage", stage.Name).Dur("duration", result.Duration).Msg("Stage failed, aborting sequence")
			return results, fmt.Errorf("stage %s: %w", stage.Name, err)
		}
		logger.Info().Str("stage", stage.Name).Dur("duration", result.Duration).Msg("Stage complete")
	}
	return results, nil
}
