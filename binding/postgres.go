package binding

import (
	"database/sql"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
)

var (
	PostgresDialect = &Dialect{
		Name:               "postgres",
		TimestampType:      "TIMESTAMP",
		ForUpdate:          " FOR UPDATE",
		DollarPlaceholders: true,
		ForeignKeys:        true,
		DataSource:         postgresDataSource,
		Open: func(dsn string) (*sql.DB, error) {
			config, err := pgx.ParseConfig(dsn)
			if err != nil {
				return nil, errors.Wrap(err, "parse postgres dsn")
			}
			return stdlib.OpenDB(*config), nil
		},
	}
)

func postgresDataSource(dsn string, conn *Connection) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", errors.Wrap(err, "parse postgres url")
	}
	if (u.Path == "" || u.Path == "/") && conn.Database != "" {
		u.Path = "/" + conn.Database
	}
	withParams(u, conn.Others)
	return u.String(), nil
}
