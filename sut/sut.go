// Package sut defines what a system under test has to provide to be loaded
// and driven by the benchmark.
//
// Each terminal and each loader worker gets its own instance from the Sut,
// so implementations may keep per-session state without locking. The
// semantics of the five transactions follow TPC-C; an error returned from
// any method is fatal to the caller.
package sut

import (
	"context"

	"github.com/hhkbp2/tpccbench/model"
	tx "github.com/hhkbp2/tpccbench/transaction"
)

type Sut interface {
	// Terminal opens the session of terminal id.
	Terminal(ctx context.Context, id int) (Terminal, error)

	// BuildSchema creates the tables to be loaded.
	BuildSchema(ctx context.Context) error

	// AfterLoaded runs once all the data is loaded, for example to create
	// indexes and constraints.
	AfterLoaded(ctx context.Context) error

	// DestroySchema drops everything BuildSchema and AfterLoaded created.
	DestroySchema(ctx context.Context) error

	// Loader opens a session exclusive to one loader worker.
	Loader(ctx context.Context) (Loader, error)

	Close() error
}

type Terminal interface {
	NewOrder(ctx context.Context, input *tx.NewOrder) (*tx.NewOrderResult, error)
	Payment(ctx context.Context, input *tx.Payment) (*tx.PaymentOut, error)
	OrderStatus(ctx context.Context, input *tx.OrderStatus) (*tx.OrderStatusOut, error)
	Delivery(ctx context.Context, input *tx.Delivery) (*tx.DeliveryOut, error)
	StockLevel(ctx context.Context, input *tx.StockLevel) (*tx.StockLevelOut, error)
	Close() error
}

type Loader interface {
	LoadItems(ctx context.Context, items *model.ItemGenerator) error
	// LoadWarehouses drains the channel, loading every warehouse with all
	// its districts, customers, orders and stock.
	LoadWarehouses(ctx context.Context, warehouses <-chan *model.Warehouse) error
	Close() error
}

// Executor runs one SQL statement. It is the building block of the generic
// loader.
type Executor interface {
	Execute(ctx context.Context, statement string) error
}

// Screener is anything rendered on an 80x24 terminal screen.
type Screener interface {
	Screen() string
}

// Dispatch runs the input on the terminal and returns its output screen.
// Voided reports whether a NewOrder was rolled back on purpose.
func Dispatch(ctx context.Context, t Terminal, input tx.Transaction) (out Screener, voided bool, err error) {
	switch in := input.(type) {
	case *tx.NewOrder:
		var res *tx.NewOrderResult
		res, err = t.NewOrder(ctx, in)
		if err == nil {
			out, voided = res, res.IsVoided()
		}
	case *tx.Payment:
		out, err = t.Payment(ctx, in)
	case *tx.OrderStatus:
		out, err = t.OrderStatus(ctx, in)
	case *tx.Delivery:
		out, err = t.Delivery(ctx, in)
	case *tx.StockLevel:
		out, err = t.StockLevel(ctx, in)
	default:
		err = ErrUnknownTransaction
	}
	return
}
