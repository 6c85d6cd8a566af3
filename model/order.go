package model

import (
	"time"

	g "github.com/hhkbp2/tpccbench/generator"
)

type Order struct {
	ID          int64
	DistrictID  int64
	WarehouseID int64
	CustomerID  int64
	EntryDate   time.Time
	// CarrierID is 0 while the order is undelivered.
	CarrierID      int64
	OrderLineCount int64
	AllLocal       bool
}

func (self *Order) Delivered() bool {
	return self.CarrierID != 0
}

type NewOrder struct {
	OrderID     int64
	DistrictID  int64
	WarehouseID int64
}

type OrderLine struct {
	OrderID           int64
	DistrictID        int64
	WarehouseID       int64
	Number            int64
	ItemID            int64
	SupplyWarehouseID int64
	// DeliveryDate is the zero time for undelivered lines.
	DeliveryDate time.Time
	Quantity     int64
	Amount       float64
	DistInfo     string
}

// OrderGenerator yields the orders of one district. Customer ids are a
// random permutation of 1..3000 so that each customer places exactly one
// order.
type OrderGenerator struct {
	districtID  int64
	warehouseID int64
	ids         *g.RangeGenerator
	customerIDs []int64
}

func NewOrderGenerator(d *District) *OrderGenerator {
	return &OrderGenerator{
		districtID:  d.ID,
		warehouseID: d.WarehouseID,
		ids:         g.NewRangeGenerator(1, OrdersPerDistrict),
		customerIDs: g.Perm(OrdersPerDistrict),
	}
}

func (self *OrderGenerator) Len() int64 {
	return self.ids.Len()
}

// Next returns the next order and, for undelivered orders, its NewOrder.
func (self *OrderGenerator) Next() (*Order, *NewOrder, bool) {
	id, ok := self.ids.Next()
	if !ok {
		return nil, nil, false
	}
	o := &Order{
		ID:             id,
		DistrictID:     self.districtID,
		WarehouseID:    self.warehouseID,
		CustomerID:     self.customerIDs[id-1],
		EntryDate:      time.Now(),
		OrderLineCount: g.RandomInt(MinOrderLines, MaxOrderLines),
		AllLocal:       true,
	}
	var no *NewOrder
	if id <= DeliveredOrders {
		o.CarrierID = g.RandomInt(1, MaxCarrierID)
	} else {
		no = &NewOrder{
			OrderID:     id,
			DistrictID:  self.districtID,
			WarehouseID: self.warehouseID,
		}
	}
	return o, no, true
}

type OrderLineGenerator struct {
	order *Order
	ids   *g.RangeGenerator
}

func NewOrderLineGenerator(o *Order) *OrderLineGenerator {
	return &OrderLineGenerator{
		order: o,
		ids:   g.NewRangeGenerator(1, o.OrderLineCount),
	}
}

func (self *OrderLineGenerator) Next() (*OrderLine, bool) {
	n, ok := self.ids.Next()
	if !ok {
		return nil, false
	}
	o := self.order
	ol := &OrderLine{
		OrderID:           o.ID,
		DistrictID:        o.DistrictID,
		WarehouseID:       o.WarehouseID,
		Number:            n,
		ItemID:            g.RandomInt(1, ItemCount),
		SupplyWarehouseID: o.WarehouseID,
		Quantity:          5,
		DistInfo:          g.RandStr(24, 24),
	}
	if o.ID <= DeliveredOrders {
		ol.DeliveryDate = o.EntryDate
	} else {
		ol.Amount = g.RandDouble(0.01, 9999.99, 2)
	}
	return ol, true
}
