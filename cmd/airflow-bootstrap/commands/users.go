package commands

import (
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/dataservices/airflow-bootstrap/internal/airflow"
	"github.com/dataservices/airflow-bootstrap/internal/catalog"
	"github.com/dataservices/airflow-bootstrap/internal/config"
	"github.com/dataservices/airflow-bootstrap/internal/execx"
)

// UsersCommand returns the users command: provision the fixed accounts.
func UsersCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Create the fixed admin and service accounts",
		Description: `Creates the admin (role Admin) and dataservices (role User) accounts.
Passwords come from AIRFLOW_USER_ADMIN_PASSWD / AIRFLOW_USER_DATASERVICES_PASSWD,
falling back to AIRFLOW_USER_DEFAULT_PASSWD and then the literal defaults.

Accounts that already exist are skipped unless --strict is set, in which case
the duplicate error from the airflow CLI propagates.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Fail instead of skipping accounts that already exist",
			},
		},
		Action: func(c *cli.Context) error {
			return usersAction(c, logger)
		},
	}
}

func usersAction(c *cli.Context, logger *zerolog.Logger) error {
	ctx := c.Context
	cfg := config.FromEnv()
	client := airflow.New(execx.New())

	present := map[string]bool{}
	if !c.Bool("strict") {
		existing, err := client.ListUsernames(ctx)
		if err != nil {
			return err
		}
		for _, username := range existing {
			present[username] = true
		}
	}

	for _, account := range catalog.Accounts(cfg) {
		if present[account.Username] {
			logger.Info().Str("username", account.Username).Msg("User already exists, skipping")
			continue
		}
		if err := client.CreateUser(ctx, account); err != nil {
			return err
		}
		logger.Info().Str("username", account.Username).Str("role", account.Role).Msg("User created")
	}
	return nil
}
