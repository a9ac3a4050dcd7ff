// Package database waits for the metadata database to become reachable
// before schema migration starts. Deployments routinely race the database
// container; without this gate the first migration attempt loses that race.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	bserrors "github.com/dataservices/airflow-bootstrap/internal/errors"
)

// pinger abstracts the pgx connection used by Wait so tests can inject a
// fake without standing up a real database.
type pinger interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Probe checks database reachability with bounded exponential backoff.
type Probe struct {
	dsn         string
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	connect     func(ctx context.Context, dsn string) (pinger, error)
}

func NewProbe(dsn string) *Probe {
	return &Probe{
		dsn:         dsn,
		maxAttempts: 10,
		baseDelay:   500 * time.Millisecond,
		maxDelay:    5 * time.Second,
		connect:     realConnect,
	}
}

// Wait blocks until the database answers a ping or attempts are exhausted.
// A DSN that does not parse fails immediately — that is a configuration
// error, and it surfaces before any store mutation happens.
func (p *Probe) Wait(ctx context.Context) error {
	if _, err := pgx.ParseConfig(p.dsn); err != nil {
		return fmt.Errorf("parsing database DSN: %w", err)
	}

	logger := zerolog.Ctx(ctx)

	var lastErr error
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := p.baseDelay * time.Duration(1<<uint(attempt-1))
			if delay > p.maxDelay {
				delay = p.maxDelay
			}
			logger.Debug().Int("attempt", attempt+1).Dur("delay", delay).Msg("Retrying database probe")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := p.ping(ctx); err != nil {
			lastErr = err
			logger.Warn().Err(err).Msg("Database not ready")
			continue
		}

		logger.Info().Msg("Database reachable")
		return nil
	}

	return fmt.Errorf("%w after %d attempts: %v", bserrors.ErrDatabaseUnreachable, p.maxAttempts, lastErr)
}

func (p *Probe) ping(ctx context.Context) error {
	conn, err := p.connect(ctx, p.dsn)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	return conn.Ping(ctx)
}

func realConnect(ctx context.Context, dsn string) (pinger, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
