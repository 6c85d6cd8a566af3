package tpccbench

import (
	"github.com/hhkbp2/testify/require"
	tx "github.com/hhkbp2/tpccbench/transaction"
	"github.com/pkg/errors"
	"os"
	"path/filepath"
	"testing"
)

const yamlConfig = `
log_level: debug
monitor:
  enable: true
  listen_addr: 0.0.0.0:9100
measurement:
  exporter: json
  percentiles: [50, 99]
bench:
  connection:
    database: bench
    connections:
      schema: mysql://admin:pw@db:3306/
      benchmark: mysql://bench:pw@db:3306/
    others:
      timeout: 5s
  loader:
    warehouse: 20
    monkeys: 4
  benchmark:
    tpcc:
      keying_and_thinking: false
      ramp_up: 2
      baking: 10
      terminals: 200
      transactions:
        payment: 43
        order_status: 4
        delivery: 4
        stock_level: 4
`

const tomlConfig = `
log_level = "warn"

[bench.connection]
sut = "sqlite"

[bench.connection.connections]
benchmark = "sqlite:///tmp/tpcc.db"

[bench.loader]
warehouse = 2
monkeys = 2

[bench.benchmark.tpcc]
terminals = 20
baking = 3

[bench.benchmark.tpcc.transactions]
payment = 45.0
order_status = 5.0
delivery = 5.0
stock_level = 5.0
`

func writeConfig(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.Nil(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	require.Nil(t, config.Validate())
	require.Equal(t, tx.DefaultWeights(), config.Bench.Benchmark.TPCC.Transactions)
	require.Equal(t, "/prometheus", config.Monitor.Path)
}

func TestLoadYAMLConfig(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "bench.yaml", yamlConfig))
	require.Nil(t, err)
	require.Nil(t, config.Validate())
	require.Equal(t, "debug", config.LogLevel)
	require.True(t, config.Monitor.Enable)
	// unset values keep their defaults
	require.Equal(t, "/prometheus", config.Monitor.Path)
	require.Equal(t, "json", config.Measurement.Exporter)
	require.Equal(t, []int64{50, 99}, config.Measurement.Percentiles)
	conn := config.Bench.Connection
	require.Equal(t, "bench", conn.Database)
	require.Equal(t, "mysql://admin:pw@db:3306/", conn.Connections.Schema)
	require.Equal(t, "5s", conn.Others.Get("timeout"))
	require.Equal(t, int64(20), config.Bench.Loader.Warehouse)
	require.Equal(t, 4, config.Bench.Loader.Monkeys)
	tpcc := config.Bench.Benchmark.TPCC
	require.False(t, tpcc.KeyingAndThinking)
	require.Equal(t, 2, tpcc.RampUp)
	require.Equal(t, 10, tpcc.Baking)
	require.Equal(t, 200, tpcc.Terminals)
	require.Equal(t, tx.DefaultWeights(), tpcc.Transactions)
}

func TestLoadTOMLConfig(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "bench.toml", tomlConfig))
	require.Nil(t, err)
	require.Nil(t, config.Validate())
	require.Equal(t, "warn", config.LogLevel)
	require.Equal(t, "sqlite", config.Bench.Connection.Sut)
	require.Equal(t, "sqlite:///tmp/tpcc.db", config.Bench.Connection.Connections.Benchmark)
	require.Equal(t, int64(2), config.Bench.Loader.Warehouse)
	require.Equal(t, 20, config.Bench.Benchmark.TPCC.Terminals)
	require.Equal(t, 3, config.Bench.Benchmark.TPCC.Baking)
	require.InDelta(t, 45.0, config.Bench.Benchmark.TPCC.Transactions.Payment, 0.0001)
	require.InDelta(t, 40.0, config.Bench.Benchmark.TPCC.Transactions.NewOrder(), 0.0001)
}

func TestLoadMissingConfig(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	require.NotNil(t, err)
}

func TestOverride(t *testing.T) {
	config := DefaultConfig()
	props := NewProperties()
	props.Add("bench.benchmark.tpcc.terminals", "20")
	props.Add("bench.benchmark.tpcc.keying_and_thinking", "false")
	props.Add("bench.benchmark.tpcc.transactions.payment", "50.5")
	props.Add("bench.connection.others.charset", "utf8mb4")
	props.Add("bench.connection.connections.benchmark", "postgres://localhost/tpcc")
	require.Nil(t, config.Override(props))
	tpcc := config.Bench.Benchmark.TPCC
	require.Equal(t, 20, tpcc.Terminals)
	require.False(t, tpcc.KeyingAndThinking)
	require.InDelta(t, 50.5, tpcc.Transactions.Payment, 0.0001)
	require.Equal(t, "utf8mb4", config.Bench.Connection.Others.Get("charset"))
	require.Equal(t, "postgres://localhost/tpcc", config.Bench.Connection.Connections.Benchmark)
	// untouched values survive
	require.Equal(t, 5, tpcc.Baking)

	bad := NewProperties()
	bad.Add("bench.benchmark.tpcc.terminals.count", "1")
	require.NotNil(t, config.Override(bad))
	unknown := NewProperties()
	unknown.Add("bench.nothing", "1")
	require.NotNil(t, config.Override(unknown))
}

func TestValidate(t *testing.T) {
	cases := []func(c *Config){
		func(c *Config) { c.Bench.Loader.Warehouse = 0 },
		func(c *Config) { c.Bench.Loader.Monkeys = 0 },
		func(c *Config) { c.Bench.Benchmark.TPCC.Terminals = 0 },
		func(c *Config) { c.Bench.Benchmark.TPCC.Baking = 0 },
		func(c *Config) { c.Bench.Benchmark.TPCC.RampUp = -1 },
		func(c *Config) { c.Measurement.Exporter = "csv" },
	}
	for _, mutate := range cases {
		config := DefaultConfig()
		mutate(config)
		require.Equal(t, ErrInvalidConfig, errors.Cause(config.Validate()))
	}
}
