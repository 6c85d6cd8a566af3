package transaction

import (
	g "github.com/hhkbp2/tpccbench/generator"
	"github.com/hhkbp2/tpccbench/model"
)

type Delivery struct {
	WarehouseID int64
	CarrierID   int64
}

func GenerateDelivery(warehouseID int64) *Delivery {
	return &Delivery{
		WarehouseID: warehouseID,
		CarrierID:   g.RandomInt(1, model.MaxCarrierID),
	}
}

func (self *Delivery) Kind() Kind {
	return KindDelivery
}

func (self *Delivery) Screen() string {
	s := newScreen("Delivery")
	s.linef("Warehouse: %-6d", self.WarehouseID)
	s.linef("Carrier Number: %-2d", self.CarrierID)
	s.linef("Execution Status: -------------------------")
	return s.String()
}

type DeliveryOut struct {
	WarehouseID int64
	CarrierID   int64
	// Delivered counts the districts that had an undelivered order.
	Delivered int64
}

func (self *DeliveryOut) Screen() string {
	s := newScreen("Delivery")
	s.linef("Warehouse: %-6d", self.WarehouseID)
	s.linef("Carrier Number: %-2d", self.CarrierID)
	s.linef("Execution Status: Delivery has been queued")
	return s.String()
}
