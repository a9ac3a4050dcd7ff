package commands

import (
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/dataservices/airflow-bootstrap/internal/airflow"
	"github.com/dataservices/airflow-bootstrap/internal/config"
	"github.com/dataservices/airflow-bootstrap/internal/execx"
	"github.com/dataservices/airflow-bootstrap/internal/vars"
)

// VariablesCommand returns the variables command: validate and import the
// variable bundle.
func VariablesCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "variables",
		Usage: "Validate and import the variable bundle",
		Description: `Parses the bundle file locally before handing it to the import command,
so a malformed bundle fails without touching the metadata store. Overwrite
semantics for existing variables belong to the airflow CLI.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Variable bundle to import",
				EnvVars: []string{config.EnvVarsFile},
			},
		},
		Action: func(c *cli.Context) error {
			return variablesAction(c, logger)
		},
	}
}

func variablesAction(c *cli.Context, logger *zerolog.Logger) error {
	ctx := c.Context
	cfg := config.FromEnv()
	if path := c.String("file"); path != "" {
		cfg.VarsFile = path
	}

	bundle, err := vars.Load(cfg.VarsFile)
	if err != nil {
		return err
	}
	logger.Info().Int("count", len(bundle)).Strs("keys", bundle.Keys()).Msg("Variable bundle validated")

	client := airflow.New(execx.New())
	if err := client.ImportVariables(ctx, cfg.VarsFile); err != nil {
		return err
	}

	logger.Info().Str("file", cfg.VarsFile).Msg("Variables imported")
	return nil
}
