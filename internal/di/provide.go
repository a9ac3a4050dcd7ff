package di

import (
	"github.com/dataservices/airflow-bootstrap/internal/airflow"
	"github.com/dataservices/airflow-bootstrap/internal/database"
	"github.com/dataservices/airflow-bootstrap/internal/execx"
	"github.com/dataservices/airflow-bootstrap/internal/sequencer"
)

func ProvideRunner() execx.Runner {
	return execx.New()
}

func ProvideAirflowClient(runner execx.Runner) *airflow.Client {
	return airflow.New(runner)
}

// ProvideProbeFactory defers probe construction until the resolve stage has
// produced a DSN.
func ProvideProbeFactory() sequencer.ProbeFactory {
	return func(dsn string) sequencer.Prober {
		return database.NewProbe(dsn)
	}
}
