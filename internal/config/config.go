// Package config holds the read-only snapshot of the deployment environment.
// Every parameter the bootstrap consumes is captured once by FromEnv at
// startup; nothing re-reads the process environment afterwards.
package config

import (
	"net/url"
	"os"

	bserrors "github.com/dataservices/airflow-bootstrap/internal/errors"
)

// Environment variables consumed by the bootstrap.
const (
	EnvSQLAlchemyConn = "AIRFLOW__CORE__SQL_ALCHEMY_CONN"
	EnvDatabaseURL    = "DATABASE_URL"

	EnvSlackWebhookHost  = "SLACK_WEBHOOK_HOST"
	EnvSlackWebhookToken = "SLACK_WEBHOOK_TOKEN"

	EnvAdminPassword        = "AIRFLOW_USER_ADMIN_PASSWD"
	EnvDataservicesPassword = "AIRFLOW_USER_DATASERVICES_PASSWD"
	EnvDefaultPassword      = "AIRFLOW_USER_DEFAULT_PASSWD"

	EnvVarsFile       = "AIRFLOW_VARS_FILE"
	EnvSupervisorConf = "SUPERVISOR_CONF"
	EnvMkVarsScript   = "AIRFLOW_MKVARS_SCRIPT"
)

// Fallback values used when the corresponding variable is unset.
const (
	DefaultAdminPassword        = "admin"
	DefaultDataservicesPassword = "dataservices"
	DefaultVarsFile             = "vars/vars.json"
	DefaultSupervisorConf       = "/etc/supervisor/supervisord.conf"
	DefaultMkVarsScript         = "scripts/mkvars.py"
)

// Config is the deployment environment snapshot.
type Config struct {
	// SQLAlchemyConn is the explicit metadata-database DSN override. When
	// set it is used verbatim.
	SQLAlchemyConn string

	// DatabaseURL is the secondary DSN; its query string is stripped
	// during resolution.
	DatabaseURL string

	SlackWebhookHost  string
	SlackWebhookToken string

	// Password overrides for the fixed accounts. DefaultPassword is a
	// shared fallback consulted before the literal defaults.
	AdminPassword        string
	DataservicesPassword string
	DefaultPassword      string

	// VarsFile is the variable-bundle path imported into the metadata
	// store, relative to the working directory unless absolute.
	VarsFile string

	// SupervisorConf is passed to supervisord at hand-off.
	SupervisorConf string

	// MkVarsScript computes derived variables before user provisioning.
	MkVarsScript string
}

// FromEnv captures the deployment environment. Values are read exactly once.
func FromEnv() *Config {
	return &Config{
		SQLAlchemyConn:       os.Getenv(EnvSQLAlchemyConn),
		DatabaseURL:          os.Getenv(EnvDatabaseURL),
		SlackWebhookHost:     os.Getenv(EnvSlackWebhookHost),
		SlackWebhookToken:    os.Getenv(EnvSlackWebhookToken),
		AdminPassword:        os.Getenv(EnvAdminPassword),
		DataservicesPassword: os.Getenv(EnvDataservicesPassword),
		DefaultPassword:      os.Getenv(EnvDefaultPassword),
		VarsFile:             envOr(EnvVarsFile, DefaultVarsFile),
		SupervisorConf:       envOr(EnvSupervisorConf, DefaultSupervisorConf),
		MkVarsScript:         envOr(EnvMkVarsScript, DefaultMkVarsScript),
	}
}

func envOr(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// ResolveDSN derives the metadata-database DSN. The explicit override wins
// verbatim; otherwise the secondary DSN is used with its query parameters
// stripped. The shape of the result is not validated here — a malformed DSN
// surfaces when the database probe first consumes it.
func (c *Config) ResolveDSN() (string, error) {
	if c.SQLAlchemyConn != "" {
		return c.SQLAlchemyConn, nil
	}
	if c.DatabaseURL == "" {
		return "", bserrors.ErrNoDatabaseDSN
	}
	return stripQuery(c.DatabaseURL), nil
}

// stripQuery removes the query string from a URL. Input that does not parse
// is passed through unchanged.
func stripQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	return u.String()
}

// ResolveAdminPassword applies the override chain for the admin account:
// specific override, shared override, literal default.
func (c *Config) ResolveAdminPassword() string {
	return firstOf(c.AdminPassword, c.DefaultPassword, DefaultAdminPassword)
}

// ResolveDataservicesPassword applies the override chain for the service
// account.
func (c *Config) ResolveDataservicesPassword() string {
	return firstOf(c.DataservicesPassword, c.DefaultPassword, DefaultDataservicesPassword)
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
