package errors

import "errors"

var (
	ErrNoDatabaseDSN       = errors.New("no database DSN configured: set AIRFLOW__CORE__SQL_ALCHEMY_CONN or DATABASE_URL")
	ErrSupervisorNotFound  = errors.New("supervisord binary not found")
	ErrEmptyBundle         = errors.New("variable bundle contains no entries")
	ErrDatabaseUnreachable = errors.New("database not reachable")
)
