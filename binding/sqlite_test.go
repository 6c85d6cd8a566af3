package binding

import (
	"context"
	"github.com/hhkbp2/testify/require"
	"github.com/hhkbp2/tpccbench/loader"
	"github.com/hhkbp2/tpccbench/model"
	tx "github.com/hhkbp2/tpccbench/transaction"
	"path/filepath"
	"testing"
)

// Loads one warehouse into a sqlite file and runs every transaction on it.
func TestSqliteEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("loads a full warehouse")
	}
	ctx := context.Background()
	conn := &Connection{
		Connections: Roles{
			Benchmark: "sqlite://" + filepath.Join(t.TempDir(), "tpcc.db"),
		},
	}
	s, err := NewSut(conn)
	require.Nil(t, err)
	defer s.Close()
	require.Nil(t, loader.Build(ctx, s, 1, 1))

	term, err := s.Terminal(ctx, 0)
	require.Nil(t, err)
	defer term.Close()

	lines := []*tx.NewOrderLine{
		{ItemID: 10, SupplyWarehouseID: 1, Quantity: 3},
		{ItemID: 20, SupplyWarehouseID: 1, Quantity: 5},
	}
	res, err := term.NewOrder(ctx, &tx.NewOrder{
		WarehouseID: 1, DistrictID: 1, CustomerID: 7, Lines: lines,
	})
	require.Nil(t, err)
	require.False(t, res.IsVoided())
	out := res.Out()
	require.Equal(t, int64(model.OrdersPerDistrict+1), out.OrderID)
	require.Equal(t, 2, len(out.Lines))
	require.True(t, out.Total > 0)

	invalid := append(append([]*tx.NewOrderLine{}, lines...),
		&tx.NewOrderLine{ItemID: 100001, SupplyWarehouseID: 1, Quantity: 1})
	res, err = term.NewOrder(ctx, &tx.NewOrder{
		WarehouseID: 1, DistrictID: 1, CustomerID: 7, RollbackLast: true, Lines: invalid,
	})
	require.Nil(t, err)
	require.True(t, res.IsVoided())
	require.Equal(t, int64(model.OrdersPerDistrict+2), res.Rollback().OrderID)

	// the rollback gave the order number back
	res, err = term.NewOrder(ctx, &tx.NewOrder{
		WarehouseID: 1, DistrictID: 1, CustomerID: 8, Lines: lines,
	})
	require.Nil(t, err)
	require.Equal(t, int64(model.OrdersPerDistrict+2), res.Out().OrderID)

	payment, err := term.Payment(ctx, &tx.Payment{
		WarehouseID:     1,
		DistrictID:      2,
		HomeWarehouseID: 1,
		Customer:        tx.CustomerSelector{ID: 5},
		Amount:          100,
	})
	require.Nil(t, err)
	require.Equal(t, int64(5), payment.CustomerID)
	require.True(t, payment.CustomerBalance < -10)
	require.False(t, payment.CustomerSince.IsZero())

	status, err := term.OrderStatus(ctx, &tx.OrderStatus{
		WarehouseID: 1,
		DistrictID:  1,
		Customer:    tx.CustomerSelector{ID: 8},
	})
	require.Nil(t, err)
	require.Equal(t, int64(model.OrdersPerDistrict+2), status.OrderID)
	require.Equal(t, 2, len(status.Lines))
	require.True(t, status.Lines[0].DeliveryDate.IsZero())

	byName, err := term.OrderStatus(ctx, &tx.OrderStatus{
		WarehouseID: 1,
		DistrictID:  2,
		Customer:    tx.CustomerSelector{ByLastName: true, LastName: payment.CustomerLast},
	})
	require.Nil(t, err)
	require.Equal(t, payment.CustomerLast, byName.CustomerLast)

	delivery, err := term.Delivery(ctx, &tx.Delivery{WarehouseID: 1, CarrierID: 3})
	require.Nil(t, err)
	require.Equal(t, int64(model.DistrictsPerWarehouse), delivery.Delivered)

	level, err := term.StockLevel(ctx, &tx.StockLevel{WarehouseID: 1, DistrictID: 1, Threshold: 20})
	require.Nil(t, err)
	require.True(t, level.LowStock >= 0)

	require.Nil(t, s.DestroySchema(ctx))
}
