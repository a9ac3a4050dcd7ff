package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/dataservices/airflow-bootstrap/internal/airflow"
	"github.com/dataservices/airflow-bootstrap/internal/config"
	"github.com/dataservices/airflow-bootstrap/internal/di"
	"github.com/dataservices/airflow-bootstrap/internal/sequencer"
	"github.com/dataservices/airflow-bootstrap/internal/supervisor"
)

// RunCommand returns the run command: the full bootstrap sequence followed
// by the supervisord hand-off.
func RunCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the full bootstrap sequence and exec supervisord",
		Description: `Executes the bootstrap stages in order:

  resolve-dsn > wait-for-database > db-init > db-upgrade >
  generate-variables > create-users > sync-connections > import-variables

then replaces this process with supervisord. On success this command never
returns. Any stage failure aborts the sequence with a nonzero exit and no
rollback; re-running continues from a consistent-enough state because every
stage except user creation is idempotent, and user creation checks first.

Examples:
  # Normal container entrypoint
  airflow-bootstrap run

  # Show the plan without side effects
  airflow-bootstrap run --dry-run

  # Run the sequence in CI without replacing the process
  airflow-bootstrap run --no-handoff`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the stage plan without executing anything",
			},
			&cli.BoolFlag{
				Name:  "no-handoff",
				Usage: "Run the sequence but do not exec supervisord afterwards",
			},
			&cli.StringFlag{
				Name:    "vars-file",
				Usage:   "Variable bundle to import",
				EnvVars: []string{config.EnvVarsFile},
			},
			&cli.StringFlag{
				Name:    "mkvars-script",
				Usage:   "Derived-variable generation script",
				EnvVars: []string{config.EnvMkVarsScript},
			},
			&cli.StringFlag{
				Name:    "supervisor-conf",
				Usage:   "supervisord configuration file",
				EnvVars: []string{config.EnvSupervisorConf},
			},
		},
		Action: func(c *cli.Context) error {
			return runAction(c, logger)
		},
	}
}

func runAction(c *cli.Context, logger *zerolog.Logger) error {
	ctx := c.Context

	container, err := di.New(
		di.WithProviders(func() *config.Config {
			return snapshotFromFlags(c)
		}),
	)
	if err != nil {
		return fmt.Errorf("building container: %w", err)
	}

	return container.Invoke(func(cfg *config.Config, client *airflow.Client, newProbe sequencer.ProbeFactory) error {
		seq := sequencer.New(sequencer.BootstrapStages(cfg, client, newProbe))

		if c.Bool("dry-run") {
			fmt.Println("Planned stages:")
			for _, name := range seq.Plan() {
				fmt.Printf("  %s\n", name)
			}
			if !c.Bool("no-handoff") {
				fmt.Println("then: exec supervisord -c " + cfg.SupervisorConf)
			}
			return nil
		}

		logger.Info().Str("run_id", seq.RunID()).Msg("Starting bootstrap")
		if _, err := seq.Run(ctx); err != nil {
			return err
		}

		if c.Bool("no-handoff") {
			logger.Info().Msg("Bootstrap complete, skipping supervisord hand-off")
			return nil
		}

		// Only returns on failure: the process image is replaced on success.
		return supervisor.New(cfg.SupervisorConf).Exec(ctx)
	})
}

// snapshotFromFlags builds the environment snapshot, letting CLI flags win
// over their environment counterparts.
func snapshotFromFlags(c *cli.Context) *config.Config {
	cfg := config.FromEnv()
	if path := c.String("vars-file"); path != "" {
		cfg.VarsFile = path
	}
	if script := c.String("mkvars-script"); script != "" {
		cfg.MkVarsScript = script
	}
	if conf := c.String("supervisor-conf"); conf != "" {
		cfg.SupervisorConf = conf
	}
	return cfg
}
