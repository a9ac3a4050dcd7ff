package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/dataservices/airflow-bootstrap/internal/airflow"
	"github.com/dataservices/airflow-bootstrap/internal/catalog"
	"github.com/dataservices/airflow-bootstrap/internal/config"
	"github.com/dataservices/airflow-bootstrap/internal/execx"
)

// ConnectionsCommand returns the connections command: reconcile the HTTP
// connection catalog.
func ConnectionsCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "connections",
		Usage: "Reconcile the declared HTTP connection catalog",
		Description: `Deletes and recreates every connection in the fixed catalog, so the
store ends up holding exactly the declared records. Deleting an identifier
that does not exist yet is not an error.

Examples:
  # Show what would be registered
  airflow-bootstrap connections --dry-run

  # Reconcile the catalog
  airflow-bootstrap connections`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "List the catalog without touching the store",
			},
		},
		Action: func(c *cli.Context) error {
			return connectionsAction(c, logger)
		},
	}
}

func connectionsAction(c *cli.Context, logger *zerolog.Logger) error {
	ctx := c.Context
	cfg := config.FromEnv()
	conns := catalog.Connections(cfg)

	if c.Bool("dry-run") {
		fmt.Printf("Catalog holds %d connection(s):\n", len(conns))
		for _, conn := range conns {
			fmt.Printf("  %-32s %s://%s\n", conn.ID, conn.Schema, conn.Host)
		}
		return nil
	}

	client := airflow.New(execx.New())
	if err := client.SyncConnections(ctx, conns); err != nil {
		return err
	}

	logger.Info().Int("count", len(conns)).Msg("Connection catalog reconciled")
	return nil
}
