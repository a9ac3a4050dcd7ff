package sequencer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataservices/airflow-bootstrap/internal/catalog"
	"github.com/dataservices/airflow-bootstrap/internal/config"
	bserrors "github.com/dataservices/airflow-bootstrap/internal/errors"
)

// fakeClient records the operations driven against the airflow adapter.
type fakeClient struct {
	ops       []string
	usernames []string

	initErr   error
	createErr error
}

func (f *fakeClient) InitDB(context.Context) error {
	f.ops = append(f.ops, "init-db")
	return f.initErr
}

func (f *fakeClient) UpgradeDB(context.Context) error {
	f.ops = append(f.ops, "upgrade-db")
	return nil
}

func (f *fakeClient) ListUsernames(context.Context) ([]string, error) {
	f.ops = append(f.ops, "list-users")
	return f.usernames, nil
}

func (f *fakeClient) CreateUser(_ context.Context, account catalog.Account) error {
	f.ops = append(f.ops, "create-user:"+account.Username)
	return f.createErr
}

func (f *fakeClient) SyncConnections(_ context.Context, conns []catalog.Connection) error {
	for _, conn := range conns {
		f.ops = append(f.ops, "sync-connection:"+conn.ID)
	}
	return nil
}

func (f *fakeClient) ImportVariables(_ context.Context, path string) error {
	f.ops = append(f.ops, "import-variables:"+filepath.Base(path))
	return nil
}

func (f *fakeClient) GenerateVariables(_ context.Context, script string) error {
	f.ops = append(f.ops, "generate-variables:"+filepath.Base(script))
	return nil
}

type fakeProbe struct {
	err error
	dsn string
}

func (f *fakeProbe) Wait(context.Context) error { return f.err }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	bundle := filepath.Join(t.TempDir(), "vars.json")
	require.NoError(t, os.WriteFile(bundle, []byte(`{"slack_channel": "#data-alerts"}`), 0o644))
	return &config.Config{
		SQLAlchemyConn: "postgresql://airflow:pw@db:5432/airflow",
		VarsFile:       bundle,
		MkVarsScript:   "scripts/mkvars.py",
	}
}

func runBootstrap(t *testing.T, cfg *config.Config, client *fakeClient, probe *fakeProbe) ([]StageResult, error) {
	t.Helper()
	factory := func(dsn string) Prober {
		probe.dsn = dsn
		return probe
	}
	return New(BootstrapStages(cfg, client, factory)).Run(context.Background())
}

func TestBootstrapFullSequence(t *testing.T) {
	cfg := testConfig(t)
	client := &fakeClient{}
	probe := &fakeProbe{}

	results, err := runBootstrap(t, cfg, client, probe)
	require.NoError(t, err)
	require.Len(t, results, 8)

	assert.Equal(t, "postgresql://airflow:pw@db:5432/airflow", probe.dsn)
	assert.Equal(t, []string{
		"init-db",
		"upgrade-db",
		"generate-variables:mkvars.py",
		"list-users",
		"create-user:admin",
		"create-user:dataservices",
		"sync-connection:slack",
		"sync-connection:geozet_conn_id",
		"sync-connection:geosearch_conn_id",
		"sync-connection:oov_braks_conn_id",
		"sync-connection:api_data_amsterdam_conn_id",
		"sync-connection:schemas_data_amsterdam_conn_id",
		"sync-connection:airflow_home_conn_id",
		"sync-connection:verlichting_conn_id",
		"sync-connection:taxi_waarnemingen_conn_id",
		"sync-connection:taxi_waarnemingen_acc_conn_id",
		"sync-connection:rdw_conn_id",
		"import-variables:vars.json",
	}, client.ops)
}

func TestBootstrapPlanNamesStages(t *testing.T) {
	cfg := testConfig(t)
	seq := New(BootstrapStages(cfg, &fakeClient{}, func(string) Prober { return &fakeProbe{} }))

	assert.Equal(t, []string{
		"resolve-dsn",
		"wait-for-database",
		"db-init",
		"db-upgrade",
		"generate-variables",
		"create-users",
		"sync-connections",
		"import-variables",
	}, seq.Plan())
}

func TestBootstrapIsRepeatable(t *testing.T) {
	// Second run: users already exist, everything else is idempotent by
	// external contract. No stage may fail.
	cfg := testConfig(t)
	client := &fakeClient{usernames: []string{"admin", "dataservices"}}

	_, err := runBootstrap(t, cfg, client, &fakeProbe{})
	require.NoError(t, err)

	assert.NotContains(t, client.ops, "create-user:admin")
	assert.NotContains(t, client.ops, "create-user:dataservices")
}

func TestBootstrapNoDSNAbortsBeforeAnyMutation(t *testing.T) {
	cfg := testConfig(t)
	cfg.SQLAlchemyConn = ""
	client := &fakeClient{}

	_, err := runBootstrap(t, cfg, client, &fakeProbe{})
	require.Error(t, err)
	assert.ErrorIs(t, err, bserrors.ErrNoDatabaseDSN)
	assert.Empty(t, client.ops)
}

func TestBootstrapUnreachableDatabaseAbortsBeforeAnyMutation(t *testing.T) {
	cfg := testConfig(t)
	client := &fakeClient{}
	probe := &fakeProbe{err: bserrors.ErrDatabaseUnreachable}

	_, err := runBootstrap(t, cfg, client, probe)
	require.Error(t, err)
	assert.ErrorIs(t, err, bserrors.ErrDatabaseUnreachable)
	assert.Empty(t, client.ops, "no user or connection mutation may happen before the database is reachable")
}

func TestBootstrapSchemaFailureStopsSequence(t *testing.T) {
	cfg := testConfig(t)
	client := &fakeClient{initErr: errors.New("migration lock held")}

	_, err := runBootstrap(t, cfg, client, &fakeProbe{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage db-init")
	assert.Equal(t, []string{"init-db"}, client.ops)
}

func TestBootstrapPartialUserProvisioning(t *testing.T) {
	// admin exists from an earlier interrupted run; only the service
	// account is created.
	cfg := testConfig(t)
	client := &fakeClient{usernames: []string{"admin"}}

	_, err := runBootstrap(t, cfg, client, &fakeProbe{})
	require.NoError(t, err)
	assert.NotContains(t, client.ops, "create-user:admin")
	assert.Contains(t, client.ops, "create-user:dataservices")
}

func TestBootstrapDuplicateUserErrorPropagates(t *testing.T) {
	cfg := testConfig(t)
	client := &fakeClient{createErr: errors.New("admin already exist in the db")}

	_, err := runBootstrap(t, cfg, client, &fakeProbe{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage create-users")

	// The failure lands before connections or variables are touched.
	for _, op := range client.ops {
		assert.NotContains(t, op, "sync-connection")
		assert.NotContains(t, op, "import-variables")
	}
}

func TestBootstrapMissingBundleFailsBeforeImport(t *testing.T) {
	cfg := testConfig(t)
	cfg.VarsFile = filepath.Join(t.TempDir(), "absent.json")
	client := &fakeClient{}

	_, err := runBootstrap(t, cfg, client, &fakeProbe{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage import-variables")
	for _, op := range client.ops {
		assert.NotContains(t, op, "import-variables", "a bundle that fails validation must not reach the import command")
	}
}
