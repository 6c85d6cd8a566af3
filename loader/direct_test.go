package loader

import (
	"context"
	"github.com/hhkbp2/testify/require"
	"github.com/hhkbp2/tpccbench/model"
	"github.com/pkg/errors"
	"strings"
	"sync"
	"testing"
)

// recordingExecutor keeps per table statement and row counts.
type recordingExecutor struct {
	lock       sync.Mutex
	statements map[string]int
	rows       map[string]int
	batchRows  map[string]map[int]int
}

func newRecordingExecutor() *recordingExecutor {
	return &recordingExecutor{
		statements: make(map[string]int),
		rows:       make(map[string]int),
		batchRows:  make(map[string]map[int]int),
	}
}

func (self *recordingExecutor) Execute(_ context.Context, statement string) error {
	self.lock.Lock()
	defer self.lock.Unlock()
	table := strings.Fields(strings.TrimPrefix(statement, "INSERT INTO "))[0]
	rows := strings.Count(statement, "),(") + 1
	self.statements[table]++
	self.rows[table] += rows
	if self.batchRows[table] == nil {
		self.batchRows[table] = make(map[int]int)
	}
	self.batchRows[table][rows]++
	return nil
}

func TestLoadStocks(t *testing.T) {
	exec := newRecordingExecutor()
	d := NewDirect(exec, DefaultBatches())
	err := d.loadStocks(context.Background(), &model.Warehouse{ID: 1})
	require.Nil(t, err)
	require.Equal(t, 100, exec.statements["stock"])
	require.Equal(t, model.StockPerWarehouse, exec.rows["stock"])
	require.Equal(t, 1, len(exec.batchRows["stock"]))
	require.Equal(t, 100, exec.batchRows["stock"][1000])
}

func TestUnevenBatchWritesNothing(t *testing.T) {
	exec := newRecordingExecutor()
	batches := DefaultBatches()
	batches.Stock = 999
	d := NewDirect(exec, batches)
	err := d.LoadWarehouse(context.Background(), &model.Warehouse{ID: 1})
	require.NotNil(t, err)
	require.Equal(t, ErrUnevenBatch, errors.Cause(err))
	require.Equal(t, 0, len(exec.statements))

	batches = DefaultBatches()
	batches.Item = 300
	d = NewDirect(exec, batches)
	err = d.LoadItems(context.Background(), model.NewItemGenerator(1, 50000))
	require.Equal(t, ErrUnevenBatch, errors.Cause(err))
	require.Equal(t, 0, len(exec.statements))
}

func TestLoadItems(t *testing.T) {
	exec := newRecordingExecutor()
	d := NewDirect(exec, DefaultBatches())
	for _, gen := range model.NewItemGenerators() {
		require.Nil(t, d.LoadItems(context.Background(), gen))
	}
	require.Equal(t, 1000, exec.statements["item"])
	require.Equal(t, model.ItemCount, exec.rows["item"])
}

func TestLoadWarehouse(t *testing.T) {
	exec := newRecordingExecutor()
	d := NewDirect(exec, DefaultBatches())
	require.Nil(t, d.LoadWarehouse(context.Background(), &model.Warehouse{ID: 1}))
	districts := model.DistrictsPerWarehouse
	require.Equal(t, 1, exec.rows["warehouse"])
	require.Equal(t, districts, exec.rows["district"])
	require.Equal(t, 1, exec.statements["district"])
	require.Equal(t, districts*model.CustomersPerDistrict, exec.rows["customer"])
	require.Equal(t, districts*model.CustomersPerDistrict, exec.rows["history"])
	require.Equal(t, districts*model.OrdersPerDistrict, exec.rows["oorder"])
	require.Equal(t, districts*model.NewOrdersPerDistrict, exec.rows["new_order"])
	require.Equal(t, districts, exec.statements["new_order"])
	// one statement per order
	require.Equal(t, districts*model.OrdersPerDistrict, exec.statements["order_line"])
	require.True(t, exec.rows["order_line"] >= districts*model.OrdersPerDistrict*model.MinOrderLines)
	require.True(t, exec.rows["order_line"] <= districts*model.OrdersPerDistrict*model.MaxOrderLines)
}

type failingExecutor struct {
	after int
	count int
}

var errBoom = errors.New("boom")

func (self *failingExecutor) Execute(_ context.Context, _ string) error {
	self.count++
	if self.count > self.after {
		return errBoom
	}
	return nil
}

func TestLoadWarehouseFailure(t *testing.T) {
	exec := &failingExecutor{after: 3}
	d := NewDirect(exec, DefaultBatches())
	err := d.LoadWarehouse(context.Background(), &model.Warehouse{ID: 1})
	require.NotNil(t, err)
	require.Equal(t, errBoom, errors.Cause(err))
	require.Equal(t, 4, exec.count)
}

func TestQuote(t *testing.T) {
	require.Equal(t, "'it''s'", quote("it's"))
	require.Equal(t, "NULL", nullableInt(0))
	require.Equal(t, "7", nullableInt(7))
	require.Equal(t, "NULL", timestamp(model.OrderLine{}.DeliveryDate))
}
