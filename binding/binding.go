// Package binding holds the systems under test the benchmark can drive.
package binding

import (
	"net/url"
	"strings"

	"github.com/hhkbp2/tpccbench/sut"
	"github.com/pkg/errors"
)

// Properties holds the free-form options of a binding.
type Properties map[string]string

func (self Properties) Get(key string) string {
	v, _ := self[key]
	return v
}

func (self Properties) GetDefault(key string, defaultValue string) string {
	if v, ok := self[key]; ok {
		return v
	}
	return defaultValue
}

// Roles holds one data source per kind of connection. An empty role falls
// back to Benchmark.
type Roles struct {
	Schema    string `yaml:"schema" toml:"schema"`
	Loader    string `yaml:"loader" toml:"loader"`
	Benchmark string `yaml:"benchmark" toml:"benchmark"`
}

type Role uint8

const (
	RoleSchema Role = iota
	RoleLoader
	RoleBenchmark
)

type Connection struct {
	// Sut is inferred from the benchmark data source when empty.
	Sut         string     `yaml:"sut" toml:"sut"`
	Database    string     `yaml:"database" toml:"database"`
	Connections Roles      `yaml:"connections" toml:"connections"`
	Others      Properties `yaml:"others" toml:"others"`
}

func (self *Connection) DataSource(role Role) string {
	var dsn string
	switch role {
	case RoleSchema:
		dsn = self.Connections.Schema
	case RoleLoader:
		dsn = self.Connections.Loader
	}
	if dsn == "" {
		dsn = self.Connections.Benchmark
	}
	return dsn
}

// InferSut returns the name of the binding a data source is for, judging by
// its scheme.
func InferSut(dsn string) (string, error) {
	if dsn == "" {
		return "basic", nil
	}
	i := strings.Index(dsn, ":")
	if i <= 0 {
		return "", errors.Wrapf(sut.ErrUnsupportedSut, "no scheme in %q", dsn)
	}
	switch strings.ToLower(dsn[:i]) {
	case "mysql":
		return "mysql", nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "sqlite", "file":
		return "sqlite", nil
	case "basic":
		return "basic", nil
	default:
		return "", errors.Wrapf(sut.ErrUnsupportedSut, "scheme of %q", dsn)
	}
}

type MakeSutFunc func(conn *Connection) (sut.Sut, error)

var (
	Suts = map[string]MakeSutFunc{
		"basic": func(conn *Connection) (sut.Sut, error) {
			return NewBasicSut(conn.Others)
		},
		"mysql": func(conn *Connection) (sut.Sut, error) {
			return NewSQLSut(MysqlDialect, conn)
		},
		"postgres": func(conn *Connection) (sut.Sut, error) {
			return NewSQLSut(PostgresDialect, conn)
		},
		"sqlite": func(conn *Connection) (sut.Sut, error) {
			return NewSQLSut(SqliteDialect, conn)
		},
	}
)

func NewSut(conn *Connection) (sut.Sut, error) {
	name := conn.Sut
	if name == "" {
		var err error
		if name, err = InferSut(conn.DataSource(RoleBenchmark)); err != nil {
			return nil, err
		}
	}
	f, ok := Suts[name]
	if !ok {
		return nil, errors.Wrapf(sut.ErrUnsupportedSut, "%s", name)
	}
	return f(conn)
}

func withParams(u *url.URL, params Properties) {
	if len(params) == 0 {
		return
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
}
