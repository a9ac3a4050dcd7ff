// Package catalog declares the fixed connection and account catalogs the
// bootstrap reconciles into the metadata store.
package catalog

import (
	"github.com/dataservices/airflow-bootstrap/internal/config"
)

// Connection is a named external-endpoint descriptor registered with the
// workflow engine. Identifiers are unique within the catalog.
type Connection struct {
	ID       string
	Host     string
	Schema   string
	Password string // optional, e.g. the Slack webhook token
}

// Account is a workflow-engine user account.
type Account struct {
	Role      string
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// Connections returns the declared connection catalog. Only the slack record
// takes values from the environment snapshot; the rest are constant. Each
// bootstrap run deletes and recreates every record, so after a successful run
// the store holds exactly these entries.
func Connections(cfg *config.Config) []Connection {
	return []Connection{
		{ID: "slack", Host: cfg.SlackWebhookHost, Schema: "https", Password: cfg.SlackWebhookToken},
		{ID: "geozet_conn_id", Host: "geozet.koop.overheid.nl", Schema: "https"},
		{ID: "geosearch_conn_id", Host: "api.data.amsterdam.nl", Schema: "https"},
		{ID: "oov_braks_conn_id", Host: "api.data.amsterdam.nl", Schema: "https"},
		{ID: "api_data_amsterdam_conn_id", Host: "api.data.amsterdam.nl", Schema: "https"},
		{ID: "schemas_data_amsterdam_conn_id", Host: "schemas.data.amsterdam.nl", Schema: "https"},
		{ID: "airflow_home_conn_id", Host: "airflow.data.amsterdam.nl", Schema: "https"},
		{ID: "verlichting_conn_id", Host: "api.data.amsterdam.nl", Schema: "https"},
		{ID: "taxi_waarnemingen_conn_id", Host: "waarnemingen.amsterdam.nl", Schema: "https"},
		{ID: "taxi_waarnemingen_acc_conn_id", Host: "acc.waarnemingen.amsterdam.nl", Schema: "https"},
		{ID: "rdw_conn_id", Host: "opendata.rdw.nl", Schema: "https"},
	}
}

// Accounts returns the two fixed accounts with passwords resolved through
// the environment override chain.
func Accounts(cfg *config.Config) []Account {
	return []Account{
		{
			Role:      "Admin",
			Username:  "admin",
			Email:     "admin@amsterdam.nl",
			FirstName: "Airflow",
			LastName:  "Admin",
			Password:  cfg.ResolveAdminPassword(),
		},
		{
			Role:      "User",
			Username:  "dataservices",
			Email:     "dataservices@amsterdam.nl",
			FirstName: "Team",
			LastName:  "Dataservices",
			Password:  cfg.ResolveDataservicesPassword(),
		},
	}
}
