package sequencer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dataservices/airflow-bootstrap/internal/catalog"
	"github.com/dataservices/airflow-bootstrap/internal/config"
	"github.com/dataservices/airflow-bootstrap/internal/vars"
)

// AirflowClient is the slice of the airflow adapter the bootstrap stages
// drive.
type AirflowClient interface {
	InitDB(ctx context.Context) error
	UpgradeDB(ctx context.Context) error
	ListUsernames(ctx context.Context) ([]string, error)
	CreateUser(ctx context.Context, account catalog.Account) error
	SyncConnections(ctx context.Context, conns []catalog.Connection) error
	ImportVariables(ctx context.Context, path string) error
	GenerateVariables(ctx context.Context, script string) error
}

// Prober reports when the metadata database is reachable.
type Prober interface {
	Wait(ctx context.Context) error
}

// ProbeFactory builds a Prober for a resolved DSN. The DSN only exists once
// the resolve stage has run, so construction is deferred.
type ProbeFactory func(dsn string) Prober

type bootstrap struct {
	cfg      *config.Config
	client   AirflowClient
	newProbe ProbeFactory

	// dsn is set by the resolve stage and consumed by the wait stage.
	dsn string
}

// BootstrapStages assembles the full bootstrap sequence:
//
//  1. resolve-dsn        — derive the metadata-database DSN from the snapshot
//  2. wait-for-database  — block until the database answers
//  3. db-init            — non-destructive schema initializer
//  4. db-upgrade         — apply pending migrations
//  5. generate-variables — run the derived-variable script
//  6. create-users       — ensure the fixed accounts exist
//  7. sync-connections   — delete-then-recreate the connection catalog
//  8. import-variables   — validate and bulk-load the variable bundle
//
// The supervisor hand-off is deliberately not a stage: it replaces the
// process image and never returns, so the caller performs it after Run.
func BootstrapStages(cfg *config.Config, client AirflowClient, newProbe ProbeFactory) []Stage {
	b := &bootstrap{cfg: cfg, client: client, newProbe: newProbe}
	return []Stage{
		{Name: "resolve-dsn", Run: b.resolveDSN},
		{Name: "wait-for-database", Run: b.waitForDatabase},
		{Name: "db-init", Run: b.initDB},
		{Name: "db-upgrade", Run: b.upgradeDB},
		{Name: "generate-variables", Run: b.generateVariables},
		{Name: "create-users", Run: b.createUsers},
		{Name: "sync-connections", Run: b.syncConnections},
		{Name: "import-variables", Run: b.importVariables},
	}
}

func (b *bootstrap) resolveDSN(ctx context.Context) error {
	dsn, err := b.cfg.ResolveDSN()
	if err != nil {
		return err
	}
	b.dsn = dsn
	return nil
}

func (b *bootstrap) waitForDatabase(ctx context.Context) error {
	return b.newProbe(b.dsn).Wait(ctx)
}

func (b *bootstrap) initDB(ctx context.Context) error {
	return b.client.InitDB(ctx)
}

func (b *bootstrap) upgradeDB(ctx context.Context) error {
	return b.client.UpgradeDB(ctx)
}

func (b *bootstrap) generateVariables(ctx context.Context) error {
	return b.client.GenerateVariables(ctx, b.cfg.MkVarsScript)
}

// createUsers is check-then-create: accounts that already exist are skipped
// so re-running the bootstrap does not fail on its own earlier work.
func (b *bootstrap) createUsers(ctx context.Context) error {
	existing, err := b.client.ListUsernames(ctx)
	if err != nil {
		return err
	}
	present := make(map[string]bool, len(existing))
	for _, username := range existing {
		present[username] = true
	}

	logger := zerolog.Ctx(ctx)
	for _, account := range catalog.Accounts(b.cfg) {
		if present[account.Username] {
			logger.Info().Str("username", account.Username).Msg("User already exists, skipping")
			continue
		}
		if err := b.client.CreateUser(ctx, account); err != nil {
			return err
		}
		logger.Info().Str("username", account.Username).Str("role", account.Role).Msg("User created")
	}
	return nil
}

func (b *bootstrap) syncConnections(ctx context.Context) error {
	return b.client.SyncConnections(ctx, catalog.Connections(b.cfg))
}

func (b *bootstrap) importVariables(ctx context.Context) error {
	bundle, err := vars.Load(b.cfg.VarsFile)
	if err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Int("count", len(bundle)).Msg("Variable bundle validated")

	if err := b.client.ImportVariables(ctx, b.cfg.VarsFile); err != nil {
		return fmt.Errorf("importing bundle with %d variables: %w", len(bundle), err)
	}
	return nil
}
