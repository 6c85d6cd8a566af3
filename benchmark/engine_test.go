package benchmark

import (
	"context"
	"github.com/hhkbp2/testify/require"
	"github.com/hhkbp2/tpccbench/measurement"
	"github.com/hhkbp2/tpccbench/model"
	"github.com/hhkbp2/tpccbench/sut"
	tx "github.com/hhkbp2/tpccbench/transaction"
	"github.com/pkg/errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var errPaymentFailed = errors.New("payment failed")

type fakeSut struct {
	opened int32
	closed int32
	// failAfter makes every terminal fail its n-th payment, 0 never fails.
	failAfter int32
	payments  int32
	bindings  sync.Map
}

func (self *fakeSut) Terminal(ctx context.Context, id int) (sut.Terminal, error) {
	atomic.AddInt32(&self.opened, 1)
	return &fakeTerminal{sut: self}, nil
}

func (self *fakeSut) BuildSchema(ctx context.Context) error   { return nil }
func (self *fakeSut) AfterLoaded(ctx context.Context) error   { return nil }
func (self *fakeSut) DestroySchema(ctx context.Context) error { return nil }
func (self *fakeSut) Loader(ctx context.Context) (sut.Loader, error) {
	return nil, sut.ErrUnsupportedSut
}
func (self *fakeSut) Close() error { return nil }

type fakeTerminal struct {
	sut *fakeSut
}

func (self *fakeTerminal) NewOrder(ctx context.Context, input *tx.NewOrder) (*tx.NewOrderResult, error) {
	self.sut.bindings.Store([2]int64{input.WarehouseID, input.DistrictID}, true)
	if input.RollbackLast {
		return tx.Voided(&tx.NewOrderRollbackOut{}), nil
	}
	return tx.Completed(&tx.NewOrderOut{}), nil
}

func (self *fakeTerminal) Payment(ctx context.Context, input *tx.Payment) (*tx.PaymentOut, error) {
	n := atomic.AddInt32(&self.sut.payments, 1)
	if self.sut.failAfter > 0 && n >= self.sut.failAfter {
		return nil, errPaymentFailed
	}
	return &tx.PaymentOut{}, nil
}

func (self *fakeTerminal) OrderStatus(ctx context.Context, input *tx.OrderStatus) (*tx.OrderStatusOut, error) {
	return &tx.OrderStatusOut{}, nil
}

func (self *fakeTerminal) Delivery(ctx context.Context, input *tx.Delivery) (*tx.DeliveryOut, error) {
	return &tx.DeliveryOut{}, nil
}

func (self *fakeTerminal) StockLevel(ctx context.Context, input *tx.StockLevel) (*tx.StockLevelOut, error) {
	return &tx.StockLevelOut{}, nil
}

func (self *fakeTerminal) Close() error {
	atomic.AddInt32(&self.sut.closed, 1)
	return nil
}

type recordingListener struct {
	lock   sync.Mutex
	phases []Phase
}

func (self *recordingListener) Interim(phase Phase, minute int, rate Rate) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.phases = append(self.phases, phase)
}

func testConfig(weights tx.Weights) Config {
	return Config{
		Terminals:  10,
		Warehouses: 1,
		RampUp:     0,
		Baking:     1,
		Weights:    weights,
		Minute:     50 * time.Millisecond,
	}
}

func TestBind(t *testing.T) {
	w, d := Bind(0, 2)
	require.Equal(t, int64(1), w)
	require.Equal(t, int64(1), d)
	w, d = Bind(9, 2)
	require.Equal(t, int64(1), w)
	require.Equal(t, int64(10), d)
	w, d = Bind(10, 2)
	require.Equal(t, int64(2), w)
	require.Equal(t, int64(1), d)
	// wraps around once every district has a terminal
	w, d = Bind(21, 2)
	require.Equal(t, int64(1), w)
	require.Equal(t, int64(2), d)
}

func TestCounters(t *testing.T) {
	c := NewCounters()
	c.AddTotal()
	c.AddTotal()
	c.AddNewOrder()
	s := c.Snapshot()
	require.Equal(t, Snapshot{NewOrders: 1, Total: 2}, s)
	c.AddTotal()
	require.Equal(t, Snapshot{NewOrders: 0, Total: 1}, c.Snapshot().Sub(s))
	require.Equal(t, Rate{TpmC: 0.5, TpmTotal: 1}, s.Per(2))
	require.Equal(t, Rate{}, s.Per(0))
}

func TestRunEndToEnd(t *testing.T) {
	s := &fakeSut{}
	counters := NewCounters()
	engine := NewEngine(testConfig(tx.Weights{Payment: 45, OrderStatus: 5, Delivery: 5, StockLevel: 5}), counters)
	m := measurement.NewMeasurements(measurement.DefaultConfig())
	engine.SetMeasurements(m)
	listener := &recordingListener{}
	engine.AddListener(listener)

	report, err := engine.Run(context.Background(), s)
	require.Nil(t, err)
	require.NotNil(t, report)
	require.True(t, counters.Total() > 0)
	require.True(t, counters.NewOrders() > 0)
	require.True(t, counters.NewOrders() < counters.Total())
	require.Equal(t, int32(10), atomic.LoadInt32(&s.opened))
	require.Equal(t, int32(10), atomic.LoadInt32(&s.closed))
	require.Equal(t, 0, len(report.Violations))
	require.NotEqual(t, "", report.RunID)
	require.Equal(t, Rate{}, report.RampUp)
	require.True(t, report.Measured.TpmTotal > 0)
	require.True(t, report.MeasuredCount.Total <= counters.Total())
	require.Equal(t, []Phase{PhaseBaking}, listener.phases)
	require.NotNil(t, m.Get(tx.KindPayment.String()))

	// ten terminals on one warehouse cover every district
	districts := 0
	s.bindings.Range(func(k, v interface{}) bool {
		districts++
		return true
	})
	require.True(t, districts <= model.DistrictsPerWarehouse)
}

func TestRunWithRampUp(t *testing.T) {
	s := &fakeSut{}
	config := testConfig(tx.DefaultWeights())
	config.RampUp = 1
	engine := NewEngine(config, NewCounters())
	listener := &recordingListener{}
	engine.AddListener(listener)

	report, err := engine.Run(context.Background(), s)
	require.Nil(t, err)
	require.True(t, report.RampUp.TpmTotal > 0)
	require.True(t, report.Measured.TpmTotal > 0)
	require.Equal(t, []Phase{PhaseRampUp, PhaseBaking}, listener.phases)
}

func TestRunFloorViolationsWarn(t *testing.T) {
	s := &fakeSut{}
	engine := NewEngine(testConfig(tx.Weights{Payment: 10, OrderStatus: 4, Delivery: 4, StockLevel: 4}), NewCounters())
	report, err := engine.Run(context.Background(), s)
	require.Nil(t, err)
	require.Equal(t, 1, len(report.Violations))
	require.Equal(t, tx.KindPayment, report.Violations[0].Kind)
}

func TestRunNegativeWeightsAbort(t *testing.T) {
	s := &fakeSut{}
	engine := NewEngine(testConfig(tx.Weights{Payment: 60, OrderStatus: 30, Delivery: 30, StockLevel: 30}), NewCounters())
	report, err := engine.Run(context.Background(), s)
	require.Nil(t, report)
	require.Equal(t, tx.ErrNegativeWeight, errors.Cause(err))
	require.Equal(t, int32(0), atomic.LoadInt32(&s.opened))
}

func TestRunTerminalFailure(t *testing.T) {
	s := &fakeSut{failAfter: 20}
	config := testConfig(tx.DefaultWeights())
	config.Baking = 1000
	engine := NewEngine(config, NewCounters())
	report, err := engine.Run(context.Background(), s)
	require.Nil(t, report)
	require.Equal(t, errPaymentFailed, errors.Cause(err))
	require.Equal(t, int32(10), atomic.LoadInt32(&s.closed))
}

func TestRunTooManyTerminals(t *testing.T) {
	s := &fakeSut{}
	config := testConfig(tx.DefaultWeights())
	config.Terminals = 15
	report, err := NewEngine(config, NewCounters()).Run(context.Background(), s)
	require.Nil(t, err)
	require.NotNil(t, report)
	require.Equal(t, int32(15), atomic.LoadInt32(&s.opened))
}

func TestRunCanceled(t *testing.T) {
	s := &fakeSut{}
	config := testConfig(tx.DefaultWeights())
	config.Baking = 1000
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	report, err := NewEngine(config, NewCounters()).Run(ctx, s)
	require.Nil(t, report)
	require.NotNil(t, err)
	require.Equal(t, int32(10), atomic.LoadInt32(&s.closed))
}

func TestConfigValidate(t *testing.T) {
	config := testConfig(tx.DefaultWeights())
	require.Nil(t, config.Validate())
	config.Baking = 0
	require.Equal(t, ErrInvalidConfig, errors.Cause(config.Validate()))
	config = testConfig(tx.DefaultWeights())
	config.Warehouses = 0
	require.Equal(t, ErrInvalidConfig, errors.Cause(config.Validate()))
}

func TestReportString(t *testing.T) {
	report := &Report{
		RunID:    "r",
		Measured: Rate{TpmC: 1.5, TpmTotal: 3},
		Violations: []*tx.WeightViolation{
			{Kind: tx.KindDelivery, Weight: 1, Minimum: 4},
		},
	}
	out := report.String()
	require.True(t, strings.Contains(out, "measurement: tpmC=1.50 tpmTotal=3.00"))
	require.True(t, strings.Contains(out, "warning: "))
	require.Equal(t, "RAMP-UP", PhaseRampUp.String())
}

// slowSut fails the payment of terminal 0 while the others are in the middle
// of a long payment.
type slowSut struct {
	fakeSut
	canceled  int32
	completed int32
}

func (self *slowSut) Terminal(ctx context.Context, id int) (sut.Terminal, error) {
	atomic.AddInt32(&self.opened, 1)
	return &slowTerminal{fakeTerminal: fakeTerminal{sut: &self.fakeSut}, owner: self, id: id}, nil
}

type slowTerminal struct {
	fakeTerminal
	owner *slowSut
	id    int
}

func (self *slowTerminal) Payment(ctx context.Context, input *tx.Payment) (*tx.PaymentOut, error) {
	if self.id == 0 {
		time.Sleep(20 * time.Millisecond)
		return nil, errPaymentFailed
	}
	select {
	case <-ctx.Done():
		atomic.AddInt32(&self.owner.canceled, 1)
	case <-time.After(200 * time.Millisecond):
		atomic.AddInt32(&self.owner.completed, 1)
	}
	return &tx.PaymentOut{}, nil
}

func TestRunFailureLetsInFlightTransactionsComplete(t *testing.T) {
	s := &slowSut{}
	config := testConfig(tx.Weights{Payment: 100})
	config.Terminals = 2
	config.Baking = 1000
	counters := NewCounters()
	report, err := NewEngine(config, counters).Run(context.Background(), s)
	require.Nil(t, report)
	require.Equal(t, errPaymentFailed, errors.Cause(err))
	require.Equal(t, int32(0), atomic.LoadInt32(&s.canceled))
	require.Equal(t, int32(1), atomic.LoadInt32(&s.completed))
	require.Equal(t, int64(1), counters.Total())
	require.Equal(t, int32(2), atomic.LoadInt32(&s.closed))
}

type dispatch struct {
	kind tx.Kind
	at   time.Time
}

// pacedSut records when every terminal dispatches and closes.
type pacedSut struct {
	fakeSut
	lock       sync.Mutex
	dispatches map[int][]dispatch
	closedAt   map[int]time.Time
	count      int32
}

func (self *pacedSut) Terminal(ctx context.Context, id int) (sut.Terminal, error) {
	atomic.AddInt32(&self.opened, 1)
	return &pacedTerminal{fakeTerminal: fakeTerminal{sut: &self.fakeSut}, owner: self, id: id}, nil
}

func (self *pacedSut) record(id int, kind tx.Kind) {
	atomic.AddInt32(&self.count, 1)
	self.lock.Lock()
	defer self.lock.Unlock()
	self.dispatches[id] = append(self.dispatches[id], dispatch{kind: kind, at: time.Now()})
}

type pacedTerminal struct {
	fakeTerminal
	owner *pacedSut
	id    int
}

func (self *pacedTerminal) NewOrder(ctx context.Context, input *tx.NewOrder) (*tx.NewOrderResult, error) {
	self.owner.record(self.id, tx.KindNewOrder)
	return self.fakeTerminal.NewOrder(ctx, input)
}

func (self *pacedTerminal) Payment(ctx context.Context, input *tx.Payment) (*tx.PaymentOut, error) {
	self.owner.record(self.id, tx.KindPayment)
	return &tx.PaymentOut{}, nil
}

func (self *pacedTerminal) OrderStatus(ctx context.Context, input *tx.OrderStatus) (*tx.OrderStatusOut, error) {
	self.owner.record(self.id, tx.KindOrderStatus)
	return &tx.OrderStatusOut{}, nil
}

func (self *pacedTerminal) Delivery(ctx context.Context, input *tx.Delivery) (*tx.DeliveryOut, error) {
	self.owner.record(self.id, tx.KindDelivery)
	return &tx.DeliveryOut{}, nil
}

func (self *pacedTerminal) StockLevel(ctx context.Context, input *tx.StockLevel) (*tx.StockLevelOut, error) {
	self.owner.record(self.id, tx.KindStockLevel)
	return &tx.StockLevelOut{}, nil
}

func (self *pacedTerminal) Close() error {
	self.owner.lock.Lock()
	self.owner.closedAt[self.id] = time.Now()
	self.owner.lock.Unlock()
	return self.fakeTerminal.Close()
}

// stopListener counts the dispatches seen when the last baking minute is
// reported, right before stop is broadcast.
type stopListener struct {
	sut     *pacedSut
	baking  int
	atStop  int32
	stopped bool
}

func (self *stopListener) Interim(phase Phase, minute int, rate Rate) {
	if phase == PhaseBaking && minute == self.baking {
		self.atStop = atomic.LoadInt32(&self.sut.count)
		self.stopped = true
	}
}

func TestRunKeyingAndThinking(t *testing.T) {
	s := &pacedSut{
		dispatches: make(map[int][]dispatch),
		closedAt:   make(map[int]time.Time),
	}
	config := testConfig(tx.DefaultWeights())
	config.Terminals = 3
	config.Baking = 2
	config.Minute = 100 * time.Millisecond
	config.KeyingAndThinking = true
	config.Pace = 0.002
	engine := NewEngine(config, NewCounters())
	listener := &stopListener{sut: s, baking: config.Baking}
	engine.AddListener(listener)
	paced := func(d time.Duration) time.Duration {
		return time.Duration(float64(d) * config.Pace)
	}

	start := time.Now()
	report, err := engine.Run(context.Background(), s)
	require.Nil(t, err)
	require.NotNil(t, report)
	require.True(t, listener.stopped)
	// a terminal may only finish the iteration it polled before stop
	require.True(t, atomic.LoadInt32(&s.count) <= listener.atStop+int32(config.Terminals))

	require.Equal(t, config.Terminals, len(s.dispatches))
	for id, ds := range s.dispatches {
		require.True(t, len(ds) > 0)
		require.True(t, ds[0].at.Sub(start) >= paced(ds[0].kind.KeyingDuration()))
		for i := 1; i < len(ds); i++ {
			gap := paced(ds[i-1].kind.ThinkingDuration()) + paced(ds[i].kind.KeyingDuration())
			require.True(t, ds[i].at.Sub(ds[i-1].at) >= gap)
		}
		last := ds[len(ds)-1]
		require.True(t, s.closedAt[id].Sub(last.at) >= paced(last.kind.ThinkingDuration()))
	}
}
