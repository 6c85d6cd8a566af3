package tpccbench

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hhkbp2/tpccbench/benchmark"
	"github.com/hhkbp2/tpccbench/binding"
	"github.com/hhkbp2/tpccbench/loader"
	"github.com/hhkbp2/tpccbench/log"
	"github.com/hhkbp2/tpccbench/measurement"
	"github.com/hhkbp2/tpccbench/monitor"
	"github.com/hhkbp2/tpccbench/sut"
	tx "github.com/hhkbp2/tpccbench/transaction"
	"github.com/pkg/errors"
)

type Client interface {
	Main() error
}

func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func openSut(config *Config) (sut.Sut, error) {
	if err := log.SetLogLevelByName(config.LogLevel); err != nil {
		return nil, err
	}
	return binding.NewSut(&config.Bench.Connection)
}

type Builder struct {
	config *Config
}

func NewBuilder(config *Config) *Builder {
	return &Builder{
		config: config,
	}
}

func (self *Builder) Main() error {
	s, err := openSut(self.config)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx, cancel := interruptible()
	defer cancel()
	return loader.Build(ctx, s, self.config.Bench.Loader.Warehouse, self.config.Bench.Loader.Monkeys)
}

type Destroyer struct {
	config *Config
}

func NewDestroyer(config *Config) *Destroyer {
	return &Destroyer{
		config: config,
	}
}

func (self *Destroyer) Main() error {
	s, err := openSut(self.config)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx, cancel := interruptible()
	defer cancel()
	return s.DestroySchema(ctx)
}

type Runner struct {
	config *Config
	// minute is only shortened by tests.
	minute time.Duration
}

func NewRunner(config *Config) *Runner {
	return &Runner{
		config: config,
		minute: time.Minute,
	}
}

func (self *Runner) engineConfig() benchmark.Config {
	tpcc := self.config.Bench.Benchmark.TPCC
	return benchmark.Config{
		Terminals:         tpcc.Terminals,
		Warehouses:        self.config.Bench.Loader.Warehouse,
		RampUp:            tpcc.RampUp,
		Baking:            tpcc.Baking,
		KeyingAndThinking: tpcc.KeyingAndThinking,
		Weights:           tpcc.Transactions,
		Minute:            self.minute,
	}
}

func (self *Runner) Main() error {
	s, err := openSut(self.config)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx, cancel := interruptible()
	defer cancel()

	counters := benchmark.NewCounters()
	engine := benchmark.NewEngine(self.engineConfig(), counters)
	measurements := measurement.NewMeasurements(self.config.Measurement)
	engine.SetMeasurements(measurements)
	m := monitor.NewMonitor(counters)
	engine.AddListener(m)
	if self.config.Monitor.Enable {
		m.Serve(self.config.Monitor)
		defer m.Shutdown(context.Background())
	}

	report, err := engine.Run(ctx, s)
	if err != nil {
		return err
	}
	Println("%s", report)
	if err := self.export(measurements); err != nil {
		return err
	}
	if self.config.Monitor.Enable {
		return m.Dump(OutputDest)
	}
	return nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}

func (self *Runner) export(measurements *measurement.Measurements) error {
	var w io.WriteCloser = nopCloser{OutputDest}
	if path := self.config.Measurement.ExportFile; path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "create export file")
		}
		w = f
	}
	exporter, err := measurement.NewMeasurementExporter(self.config.Measurement.Exporter, w)
	if err != nil {
		w.Close()
		return err
	}
	if err := measurements.ExportMeasurements(exporter); err != nil {
		exporter.Close()
		return err
	}
	return exporter.Close()
}

// Shell issues single transactions on one terminal and prints their screens.
type Shell struct {
	config *Config
	in     io.Reader
}

func NewShell(config *Config) *Shell {
	return &Shell{
		config: config,
		in:     os.Stdin,
	}
}

var (
	regexCmd *regexp.Regexp

	shellKinds = map[string]tx.Kind{
		"neworder":    tx.KindNewOrder,
		"payment":     tx.KindPayment,
		"orderstatus": tx.KindOrderStatus,
		"delivery":    tx.KindDelivery,
		"stocklevel":  tx.KindStockLevel,
	}
)

func init() {
	regexCmd = regexp.MustCompile(`\s+`)
}

func (self *Shell) Main() error {
	Println("TPC-C Command Line Client")
	Println(`Type "help" for command line help`)

	s, err := openSut(self.config)
	if err != nil {
		return errors.Wrap(err, "fail to create system under test")
	}
	defer s.Close()
	ctx := context.Background()
	terminal, err := s.Terminal(ctx, 0)
	if err != nil {
		return errors.Wrap(err, "fail to open terminal")
	}
	defer terminal.Close()

	Println("Connected.")
	warehouses := self.config.Bench.Loader.Warehouse
	generator := tx.NewGenerator(self.config.Bench.Benchmark.TPCC.Transactions, warehouses)
	scanner := bufio.NewScanner(self.in)
	warehouseID, districtID := int64(1), int64(1)
	for {
		Printf("> ")
		if !scanner.Scan() {
			break
		}
		startTime := time.Now()
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "help":
			self.help()
			continue
		case "quit":
			return nil
		}
		parts := regexCmd.Split(line, -1)
		length := len(parts)
		switch parts[0] {
		case "terminal":
			if length != 3 {
				Println(`Error: syntax is "terminal warehouse district"`)
				break
			}
			w, err1 := strconv.ParseInt(parts[1], 0, 64)
			d, err2 := strconv.ParseInt(parts[2], 0, 64)
			if err1 != nil || err2 != nil || w < 1 || w > warehouses || d < 1 || d > 10 {
				Println("Error: invalid warehouse or district")
				break
			}
			warehouseID, districtID = w, d
			Println("Using warehouse %d district %d", warehouseID, districtID)
		case "random":
			self.issue(ctx, terminal, generator.Generate(warehouseID, districtID))
		default:
			kind, ok := shellKinds[parts[0]]
			if !ok {
				Println(`Error: unknown command "%s"`, parts[0])
				break
			}
			self.issue(ctx, terminal, generator.GenerateKind(kind, warehouseID, districtID))
		}
		Println("%d ms", time.Since(startTime)/time.Millisecond)
	}
	return scanner.Err()
}

func (self *Shell) issue(ctx context.Context, terminal sut.Terminal, input tx.Transaction) {
	Println("%s", input.Screen())
	out, voided, err := sut.Dispatch(ctx, terminal, input)
	if err != nil {
		Println("Error: %s", err)
		return
	}
	Println("%s", out.Screen())
	if voided {
		Println("Result: %s", measurement.StatusRollback)
	} else {
		Println("Result: %s", measurement.StatusOK)
	}
}

func (self *Shell) help() {
	helpFormat := `Commands
  neworder - Issue a New-Order
  payment - Issue a Payment
  orderstatus - Issue an Order-Status
  delivery - Issue a Delivery
  stocklevel - Issue a Stock-Level
  random - Issue a transaction drawn from the configured mix
  terminal warehouse district - Bind the terminal to a district
  quit - Quit`
	Println(helpFormat)
}
