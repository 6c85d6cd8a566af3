package binding

import (
	"database/sql"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"
)

var (
	SqliteDialect = &Dialect{
		Name:          "sqlite",
		TimestampType: "DATETIME",
		// locking is per database, taken when a transaction begins
		ForUpdate: "",
		// one writer at a time, loaders and terminals queue on the pool
		MaxOpenConns: 1,
		TextTimes:    true,
		DataSource:   sqliteDataSource,
		Open: func(dsn string) (*sql.DB, error) {
			return sql.Open("sqlite", dsn)
		},
	}

	sqliteParams = Properties{
		"_txlock": "immediate",
	}
)

// sqliteDataSource maps sqlite://path (or file:path) to a file: DSN that
// waits on locks instead of failing.
func sqliteDataSource(dsn string, conn *Connection) (string, error) {
	path := strings.TrimPrefix(strings.TrimPrefix(dsn, "sqlite://"), "file:")
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		path = conn.Database + ".db"
	}
	query := ""
	if i := strings.Index(dsn, "?"); i >= 0 {
		query = dsn[i+1:]
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return "", err
	}
	for k, v := range sqliteParams {
		values.Set(k, v)
	}
	for k, v := range conn.Others {
		values.Set(k, v)
	}
	values.Add("_pragma", "busy_timeout(5000)")
	return "file:" + path + "?" + values.Encode(), nil
}
