package commands

import (
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/dataservices/airflow-bootstrap/internal/airflow"
	"github.com/dataservices/airflow-bootstrap/internal/config"
	"github.com/dataservices/airflow-bootstrap/internal/database"
	"github.com/dataservices/airflow-bootstrap/internal/execx"
)

// MigrateCommand returns the migrate command: database wait plus the two
// schema stages, without touching users, connections, or variables.
func MigrateCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Initialize and upgrade the metadata-database schema",
		Description: `Resolves the database DSN, waits for the database, then runs the
schema initializer and migration apply. Both external commands are
idempotent: running migrate twice in a row changes nothing the second time.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "skip-wait",
				Usage: "Do not wait for the database to become reachable",
			},
		},
		Action: func(c *cli.Context) error {
			return migrateAction(c, logger)
		},
	}
}

func migrateAction(c *cli.Context, logger *zerolog.Logger) error {
	ctx := c.Context
	cfg := config.FromEnv()

	dsn, err := cfg.ResolveDSN()
	if err != nil {
		return err
	}

	if !c.Bool("skip-wait") {
		if err := database.NewProbe(dsn).Wait(ctx); err != nil {
			return err
		}
	}

	client := airflow.New(execx.New())
	if err := client.InitDB(ctx); err != nil {
		return err
	}
	if err := client.UpgradeDB(ctx); err != nil {
		return err
	}

	logger.Info().Msg("Schema is current")
	return nil
}
