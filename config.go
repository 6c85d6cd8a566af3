package tpccbench

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hhkbp2/tpccbench/binding"
	"github.com/hhkbp2/tpccbench/measurement"
	"github.com/hhkbp2/tpccbench/monitor"
	tx "github.com/hhkbp2/tpccbench/transaction"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	ConfigFileDefault = "tpccbench.yaml"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

type Config struct {
	LogLevel    string             `yaml:"log_level" toml:"log_level"`
	Monitor     monitor.Config     `yaml:"monitor" toml:"monitor"`
	Measurement measurement.Config `yaml:"measurement" toml:"measurement"`
	Bench       BenchConfig        `yaml:"bench" toml:"bench"`
}

type BenchConfig struct {
	Connection binding.Connection `yaml:"connection" toml:"connection"`
	Loader     LoaderConfig       `yaml:"loader" toml:"loader"`
	Benchmark  BenchmarkConfig    `yaml:"benchmark" toml:"benchmark"`
}

type LoaderConfig struct {
	// Warehouse is the number of warehouses to load and to benchmark.
	Warehouse int64 `yaml:"warehouse" toml:"warehouse"`
	// Monkeys is the number of concurrent loaders.
	Monkeys int `yaml:"monkeys" toml:"monkeys"`
}

type BenchmarkConfig struct {
	TPCC TPCCConfig `yaml:"tpcc" toml:"tpcc"`
}

type TPCCConfig struct {
	KeyingAndThinking bool `yaml:"keying_and_thinking" toml:"keying_and_thinking"`
	// RampUp and Baking are in minutes.
	RampUp       int        `yaml:"ramp_up" toml:"ramp_up"`
	Baking       int        `yaml:"baking" toml:"baking"`
	Terminals    int        `yaml:"terminals" toml:"terminals"`
	Transactions tx.Weights `yaml:"transactions" toml:"transactions"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Monitor: monitor.Config{
			ListenAddr: "127.0.0.1:9090",
			Path:       monitor.DefaultPath,
		},
		Measurement: measurement.DefaultConfig(),
		Bench: BenchConfig{
			Connection: binding.Connection{
				Database: "tpcc",
			},
			Loader: LoaderConfig{
				Warehouse: 1,
				Monkeys:   1,
			},
			Benchmark: BenchmarkConfig{
				TPCC: TPCCConfig{
					KeyingAndThinking: true,
					RampUp:            1,
					Baking:            5,
					Terminals:         10,
					Transactions:      tx.DefaultWeights(),
				},
			},
		},
	}
}

// LoadConfig reads a YAML file, or a TOML file when its name ends with
// .toml, on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, config); err != nil {
			return nil, errors.Wrapf(err, "decode %s", path)
		}
		return config, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return config, nil
}

// Override sets the values of dotted paths, e.g.
// "bench.benchmark.tpcc.terminals" = "20". Values are parsed as YAML scalars.
func (self *Config) Override(props Properties) error {
	if len(props) == 0 {
		return nil
	}
	data, err := yaml.Marshal(self)
	if err != nil {
		return err
	}
	tree := make(map[interface{}]interface{})
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	for path, raw := range props {
		var value interface{}
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return errors.Wrapf(err, "value of %s", path)
		}
		if err := setPath(tree, strings.Split(path, "."), value); err != nil {
			return errors.Wrapf(err, "override %s", path)
		}
	}
	if data, err = yaml.Marshal(tree); err != nil {
		return err
	}
	return errors.Wrap(yaml.UnmarshalStrict(data, self), "apply overrides")
}

func setPath(tree map[interface{}]interface{}, keys []string, value interface{}) error {
	key := keys[0]
	if len(keys) == 1 {
		tree[key] = value
		return nil
	}
	child, ok := tree[key]
	if !ok || child == nil {
		child = make(map[interface{}]interface{})
		tree[key] = child
	}
	m, ok := child.(map[interface{}]interface{})
	if !ok {
		return errors.Errorf("%s is not a section", key)
	}
	return setPath(m, keys[1:], value)
}

func (self *Config) Validate() error {
	tpcc := &self.Bench.Benchmark.TPCC
	switch {
	case self.Bench.Loader.Warehouse <= 0:
		return errors.Wrapf(ErrInvalidConfig, "bench.loader.warehouse must be positive")
	case self.Bench.Loader.Monkeys <= 0:
		return errors.Wrapf(ErrInvalidConfig, "bench.loader.monkeys must be positive")
	case tpcc.Terminals <= 0:
		return errors.Wrapf(ErrInvalidConfig, "bench.benchmark.tpcc.terminals must be positive")
	case tpcc.Baking <= 0:
		return errors.Wrapf(ErrInvalidConfig, "bench.benchmark.tpcc.baking must be positive")
	case tpcc.RampUp < 0:
		return errors.Wrapf(ErrInvalidConfig, "bench.benchmark.tpcc.ramp_up must not be negative")
	}
	if _, ok := measurement.MeasurementExporters[self.Measurement.Exporter]; !ok {
		return errors.Wrapf(ErrInvalidConfig, "unsupported measurement exporter %q", self.Measurement.Exporter)
	}
	return nil
}
