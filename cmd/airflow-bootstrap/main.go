package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dataservices/airflow-bootstrap/cmd/airflow-bootstrap/commands"
	"github.com/dataservices/airflow-bootstrap/internal/di"
)

func main() {
	logger := di.ProvideLogger()
	ctx := logger.WithContext(context.Background())

	app := &cli.App{
		Name:  "airflow-bootstrap",
		Usage: "Bring an Airflow deployment to a known-good state and hand off to supervisord",
		Description: `Sequences the deployment bootstrap for an Airflow installation.

This tool provides commands for:
  - Running the full bootstrap sequence and exec'ing into supervisord
  - Applying metadata-database schema migrations on their own
  - Provisioning the fixed user accounts
  - Reconciling the HTTP connection catalog
  - Importing the variable bundle`,
		Commands: []*cli.Command{
			commands.RunCommand(&logger),
			commands.MigrateCommand(&logger),
			commands.UsersCommand(&logger),
			commands.ConnectionsCommand(&logger),
			commands.VariablesCommand(&logger),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.Error().Err(err).Msg("Bootstrap error")
		os.Exit(1)
	}
}
