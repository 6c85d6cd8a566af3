package transaction

import (
	g "github.com/hhkbp2/tpccbench/generator"
)

type StockLevel struct {
	WarehouseID int64
	DistrictID  int64
	Threshold   int64
}

func GenerateStockLevel(warehouseID, districtID int64) *StockLevel {
	return &StockLevel{
		WarehouseID: warehouseID,
		DistrictID:  districtID,
		Threshold:   g.RandomInt(10, 20),
	}
}

func (self *StockLevel) Kind() Kind {
	return KindStockLevel
}

func (self *StockLevel) Screen() string {
	s := newScreen("Stock-Level")
	s.linef("Warehouse: %-6d District: %-2d", self.WarehouseID, self.DistrictID)
	s.linef("Stock Level Threshold: %-2d", self.Threshold)
	s.linef("low stock: ---")
	return s.String()
}

type StockLevelOut struct {
	WarehouseID int64
	DistrictID  int64
	Threshold   int64
	LowStock    int64
}

func (self *StockLevelOut) Screen() string {
	s := newScreen("Stock-Level")
	s.linef("Warehouse: %-6d District: %-2d", self.WarehouseID, self.DistrictID)
	s.linef("Stock Level Threshold: %-2d", self.Threshold)
	s.linef("low stock: %-3d", self.LowStock)
	return s.String()
}
