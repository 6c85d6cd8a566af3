// Package benchmark drives the TPC-C terminals against a loaded system under
// test and computes tpmC.
package benchmark

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hhkbp2/tpccbench/log"
	"github.com/hhkbp2/tpccbench/measurement"
	"github.com/hhkbp2/tpccbench/sut"
	tx "github.com/hhkbp2/tpccbench/transaction"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidConfig = errors.New("invalid benchmark config")
)

type Config struct {
	Terminals  int
	Warehouses int64
	// RampUp and Baking are in minutes.
	RampUp            int
	Baking            int
	KeyingAndThinking bool
	Weights           tx.Weights
	// Minute is the length of one reporting minute, time.Minute unless a
	// test needs it shorter.
	Minute time.Duration
	// Pace scales the keying and thinking times, 1 unless a test needs
	// them shorter.
	Pace float64
}

func (self *Config) Validate() error {
	if self.Terminals <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "terminals must be positive, got %d", self.Terminals)
	}
	if self.Warehouses <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "warehouses must be positive, got %d", self.Warehouses)
	}
	if self.RampUp < 0 {
		return errors.Wrapf(ErrInvalidConfig, "negative ramp up: %d", self.RampUp)
	}
	if self.Baking <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "baking must be positive, got %d", self.Baking)
	}
	return nil
}

// Bind returns the warehouse and district terminal id works on. Terminals
// are spread round robin over all the districts.
func Bind(id int, warehouses int64) (int64, int64) {
	in := int64(id) % (warehouses * 10)
	return in/10 + 1, in%10 + 1
}

type Engine struct {
	config       Config
	counters     *Counters
	measurements *measurement.Measurements
	listeners    []Listener
}

func NewEngine(config Config, counters *Counters) *Engine {
	if config.Minute <= 0 {
		config.Minute = time.Minute
	}
	if config.Pace <= 0 {
		config.Pace = 1
	}
	return &Engine{
		config:   config,
		counters: counters,
	}
}

func (self *Engine) SetMeasurements(m *measurement.Measurements) {
	self.measurements = m
}

func (self *Engine) AddListener(l Listener) {
	self.listeners = append(self.listeners, l)
}

func (self *Engine) Counters() *Counters {
	return self.counters
}

func warnViolations(violations []*tx.WeightViolation) {
	for _, v := range violations {
		log.Warnf("%s, the run does not conform to TPC-C", v)
	}
}

// Run spawns the terminals and blocks until the measurement is over or a
// terminal fails. A failure stops the other terminals at their next stop poll;
// transactions already dispatched run to completion. No report is returned on
// failure.
func (self *Engine) Run(ctx context.Context, s sut.Sut) (*Report, error) {
	if err := self.config.Validate(); err != nil {
		return nil, err
	}
	violations, err := self.config.Weights.Verify()
	if err != nil {
		return nil, err
	}
	warnViolations(violations)
	if int64(self.config.Terminals) > self.config.Warehouses*10 {
		log.Warnf("%d terminals for %d warehouses, more than 10 terminals per warehouse violates TPC-C 2.8.1.1",
			self.config.Terminals, self.config.Warehouses)
	}

	report := &Report{
		RunID:      uuid.New().String(),
		Terminals:  self.config.Terminals,
		Violations: violations,
	}
	log.Infof("Run %s: %d terminals, %d warehouses, ramp up %d minutes, baking %d minutes",
		report.RunID, self.config.Terminals, self.config.Warehouses, self.config.RampUp, self.config.Baking)

	generator := tx.NewGenerator(self.config.Weights, self.config.Warehouses)
	stop := make(chan struct{})
	failed := make(chan struct{})
	var once sync.Once
	var group errgroup.Group
	for i := 0; i < self.config.Terminals; i++ {
		id := i
		group.Go(func() error {
			err := self.runTerminal(ctx, s, generator, id, stop)
			if err != nil {
				once.Do(func() { close(failed) })
			}
			return err
		})
	}

	rampUp, end, err := self.runTimer(ctx, failed)
	close(stop)
	// a failed terminal is what interrupts the timer
	if werr := group.Wait(); werr != nil {
		err = werr
	}
	if err != nil {
		log.Errorf("Run %s failed: %s", report.RunID, err)
		return nil, err
	}

	report.RampUpCount = rampUp
	report.MeasuredCount = end.Sub(rampUp)
	report.RampUp = rampUp.Per(self.config.RampUp)
	report.Measured = report.MeasuredCount.Per(self.config.Baking)
	log.Infof("Run %s finished, tpmC=%.2f tpmTotal=%.2f",
		report.RunID, report.Measured.TpmC, report.Measured.TpmTotal)
	warnViolations(violations)
	return report, nil
}

// runTimer sequences ramp up and baking. It returns the counters taken at the
// end of ramp up and at the end of baking, or early once failed is closed.
func (self *Engine) runTimer(ctx context.Context, failed <-chan struct{}) (rampUp, end Snapshot, err error) {
	ticker := time.NewTicker(self.config.Minute)
	defer ticker.Stop()

	phase := PhaseRampUp
	if self.config.RampUp == 0 {
		phase = PhaseBaking
	}
	minutes := 0
	for {
		select {
		case <-ctx.Done():
			err = errors.Wrap(ctx.Err(), "benchmark interrupted")
			return
		case <-failed:
			return
		case <-ticker.C:
		}
		minutes++
		current := self.counters.Snapshot()
		rate := current.Sub(rampUp).Per(minutes)
		log.Infof("[%s] minute %d: tpmC=%.2f tpmTotal=%.2f", phase, minutes, rate.TpmC, rate.TpmTotal)
		for _, l := range self.listeners {
			l.Interim(phase, minutes, rate)
		}
		switch {
		case phase == PhaseRampUp && minutes >= self.config.RampUp:
			log.Infof("Ramp up finished, start measuring")
			rampUp = current
			phase = PhaseBaking
			minutes = 0
		case phase == PhaseBaking && minutes >= self.config.Baking:
			end = current
			return
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (self *Engine) paced(d time.Duration) time.Duration {
	return time.Duration(float64(d) * self.config.Pace)
}

func (self *Engine) measure(kind tx.Kind, start time.Time, status measurement.StatusType) {
	if self.measurements == nil {
		return
	}
	self.measurements.Measure(kind.String(), int64(time.Since(start)/time.Microsecond))
	self.measurements.ReportStatus(kind.String(), status)
}

func (self *Engine) runTerminal(
	ctx context.Context, s sut.Sut, generator *tx.Generator, id int, stop <-chan struct{}) (err error) {

	warehouseID, districtID := Bind(id, self.config.Warehouses)
	t, err := s.Terminal(ctx, id)
	if err != nil {
		return errors.Wrapf(err, "open terminal %d", id)
	}
	defer func() {
		if cerr := t.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close terminal %d", id)
		}
	}()
	log.Debugf("Terminal %d bound to warehouse %d district %d", id, warehouseID, districtID)

	for {
		input := generator.Generate(warehouseID, districtID)
		select {
		case <-stop:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		kind := input.Kind()
		if self.config.KeyingAndThinking {
			if err = sleep(ctx, self.paced(kind.KeyingDuration())); err != nil {
				return err
			}
		}
		start := time.Now()
		// once dispatched a transaction is never canceled
		_, voided, derr := sut.Dispatch(context.WithoutCancel(ctx), t, input)
		if derr != nil {
			self.measure(kind, start, measurement.StatusError)
			return errors.Wrapf(derr, "terminal %d %s", id, kind)
		}
		self.counters.AddTotal()
		if kind == tx.KindNewOrder && !voided {
			self.counters.AddNewOrder()
		}
		if voided {
			self.measure(kind, start, measurement.StatusRollback)
		} else {
			self.measure(kind, start, measurement.StatusOK)
		}
		if self.config.KeyingAndThinking {
			if err = sleep(ctx, self.paced(kind.ThinkingDuration())); err != nil {
				return err
			}
		}
		runtime.Gosched()
	}
}
