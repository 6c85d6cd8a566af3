package binding

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	g "github.com/hhkbp2/tpccbench/generator"
	"github.com/hhkbp2/tpccbench/loader"
	"github.com/hhkbp2/tpccbench/log"
	"github.com/hhkbp2/tpccbench/model"
	"github.com/hhkbp2/tpccbench/sut"
	tx "github.com/hhkbp2/tpccbench/transaction"
)

const (
	ConfigBasicVerbose          = "basic.verbose"
	ConfigBasicVerboseDefault   = "false"
	ConfigSimulateDelay         = "basic.simulatedelay"
	ConfigSimulateDelayDefault  = "0"
	ConfigRandomizeDelay        = "basic.randomizedelay"
	ConfigRandomizeDelayDefault = "true"
)

func MillisecondToNanosecond(millis int64) int64 {
	return millis * 1000 * 1000
}

// BasicSut stores nothing. It echoes what it is asked to do when verbose and
// may simulate a delay on every call.
type BasicSut struct {
	verbose        bool
	randomizeDelay bool
	toDelay        int64
	delays         *g.UniformIntegerGenerator
	statements     int64
}

func NewBasicSut(p Properties) (*BasicSut, error) {
	object := &BasicSut{}
	var err error
	object.verbose, err = strconv.ParseBool(
		p.GetDefault(ConfigBasicVerbose, ConfigBasicVerboseDefault))
	if err != nil {
		return nil, err
	}
	object.toDelay, err = strconv.ParseInt(
		p.GetDefault(ConfigSimulateDelay, ConfigSimulateDelayDefault), 0, 64)
	if err != nil {
		return nil, err
	}
	object.randomizeDelay, err = strconv.ParseBool(
		p.GetDefault(ConfigRandomizeDelay, ConfigRandomizeDelayDefault))
	if err != nil {
		return nil, err
	}
	if object.toDelay > 0 {
		object.delays = g.NewUniformIntegerGenerator(0, object.toDelay-1)
	}
	if object.verbose {
		log.Infof("basic sut: verbose=%t delay=%dms randomize=%t",
			object.verbose, object.toDelay, object.randomizeDelay)
	}
	return object, nil
}

// Statements returns how many statements the loaders executed.
func (self *BasicSut) Statements() int64 {
	return atomic.LoadInt64(&self.statements)
}

func (self *BasicSut) Delay() {
	if self.toDelay > 0 {
		var nanos int64
		if self.randomizeDelay {
			nanos = MillisecondToNanosecond(self.delays.NextInt())
			if nanos == 0 {
				return
			}
		} else {
			nanos = MillisecondToNanosecond(self.toDelay)
		}
		time.Sleep(time.Duration(nanos))
	}
}

func (self *BasicSut) output(format string, args ...interface{}) {
	if self.verbose {
		log.Infof(format, args...)
	}
}

func (self *BasicSut) Terminal(ctx context.Context, id int) (sut.Terminal, error) {
	self.output("TERMINAL %d", id)
	return &basicTerminal{sut: self, id: id}, nil
}

func (self *BasicSut) BuildSchema(ctx context.Context) error {
	self.output("BUILD SCHEMA")
	return nil
}

func (self *BasicSut) AfterLoaded(ctx context.Context) error {
	self.output("AFTER LOADED")
	return nil
}

func (self *BasicSut) DestroySchema(ctx context.Context) error {
	self.output("DESTROY SCHEMA")
	return nil
}

func (self *BasicSut) Loader(ctx context.Context) (sut.Loader, error) {
	return &basicLoader{
		Direct: loader.NewDirect(self, loader.DefaultBatches()),
	}, nil
}

// Execute counts the statements of the loaders.
func (self *BasicSut) Execute(ctx context.Context, statement string) error {
	atomic.AddInt64(&self.statements, 1)
	if self.verbose {
		n := len(statement)
		if n > 64 {
			n = 64
		}
		log.Debugf("EXECUTE %s...", statement[:n])
	}
	return nil
}

func (self *BasicSut) Close() error {
	return nil
}

type basicLoader struct {
	*loader.Direct
}

func (self *basicLoader) LoadWarehouses(ctx context.Context, warehouses <-chan *model.Warehouse) error {
	return loader.Drain(ctx, warehouses, self.LoadWarehouse)
}

func (self *basicLoader) Close() error {
	return nil
}

type basicTerminal struct {
	sut *BasicSut
	id  int
}

func (self *basicTerminal) NewOrder(ctx context.Context, input *tx.NewOrder) (*tx.NewOrderResult, error) {
	self.sut.Delay()
	self.sut.output("NEW_ORDER %d: warehouse %d district %d customer %d lines %d",
		self.id, input.WarehouseID, input.DistrictID, input.CustomerID, len(input.Lines))
	if input.RollbackLast {
		return tx.Voided(&tx.NewOrderRollbackOut{
			WarehouseID: input.WarehouseID,
			DistrictID:  input.DistrictID,
			CustomerID:  input.CustomerID,
		}), nil
	}
	out := &tx.NewOrderOut{
		WarehouseID: input.WarehouseID,
		DistrictID:  input.DistrictID,
		CustomerID:  input.CustomerID,
		EntryDate:   time.Now(),
	}
	for _, l := range input.Lines {
		out.Lines = append(out.Lines, &tx.NewOrderLineOut{
			ItemID:            l.ItemID,
			SupplyWarehouseID: l.SupplyWarehouseID,
			Quantity:          l.Quantity,
			ItemName:          fmt.Sprintf("item-%d", l.ItemID),
			BrandGeneric:      "G",
		})
	}
	return tx.Completed(out), nil
}

func (self *basicTerminal) Payment(ctx context.Context, input *tx.Payment) (*tx.PaymentOut, error) {
	self.sut.Delay()
	self.sut.output("PAYMENT %d: warehouse %d district %d customer %s amount %.2f",
		self.id, input.WarehouseID, input.DistrictID, input.Customer, input.Amount)
	return &tx.PaymentOut{
		WarehouseID:         input.WarehouseID,
		DistrictID:          input.DistrictID,
		CustomerID:          input.Customer.ID,
		CustomerWarehouseID: input.CustomerWarehouseID(),
		CustomerDistrictID:  input.DistrictID,
		CustomerLast:        input.Customer.LastName,
		Amount:              input.Amount,
		Date:                time.Now(),
	}, nil
}

func (self *basicTerminal) OrderStatus(ctx context.Context, input *tx.OrderStatus) (*tx.OrderStatusOut, error) {
	self.sut.Delay()
	self.sut.output("ORDER_STATUS %d: warehouse %d district %d customer %s",
		self.id, input.WarehouseID, input.DistrictID, input.Customer)
	return &tx.OrderStatusOut{
		WarehouseID:  input.WarehouseID,
		DistrictID:   input.DistrictID,
		CustomerID:   input.Customer.ID,
		CustomerLast: input.Customer.LastName,
	}, nil
}

func (self *basicTerminal) Delivery(ctx context.Context, input *tx.Delivery) (*tx.DeliveryOut, error) {
	self.sut.Delay()
	self.sut.output("DELIVERY %d: warehouse %d carrier %d", self.id, input.WarehouseID, input.CarrierID)
	return &tx.DeliveryOut{
		WarehouseID: input.WarehouseID,
		CarrierID:   input.CarrierID,
	}, nil
}

func (self *basicTerminal) StockLevel(ctx context.Context, input *tx.StockLevel) (*tx.StockLevelOut, error) {
	self.sut.Delay()
	self.sut.output("STOCK_LEVEL %d: warehouse %d district %d threshold %d",
		self.id, input.WarehouseID, input.DistrictID, input.Threshold)
	return &tx.StockLevelOut{
		WarehouseID: input.WarehouseID,
		DistrictID:  input.DistrictID,
		Threshold:   input.Threshold,
	}, nil
}

func (self *basicTerminal) Close() error {
	return nil
}
