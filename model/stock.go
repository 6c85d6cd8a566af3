package model

import (
	g "github.com/hhkbp2/tpccbench/generator"
)

type Stock struct {
	ItemID      int64
	WarehouseID int64
	Quantity    int64
	Dist        [DistrictsPerWarehouse]string
	YTD         int64
	OrderCount  int64
	RemoteCount int64
	Data        string
}

type StockGenerator struct {
	warehouseID int64
	ids         *g.RangeGenerator
}

func NewStockGenerator(w *Warehouse) *StockGenerator {
	return &StockGenerator{
		warehouseID: w.ID,
		ids:         g.NewRangeGenerator(1, StockPerWarehouse),
	}
}

func (self *StockGenerator) Len() int64 {
	return self.ids.Len()
}

func (self *StockGenerator) Next() (*Stock, bool) {
	id, ok := self.ids.Next()
	if !ok {
		return nil, false
	}
	s := &Stock{
		ItemID:      id,
		WarehouseID: self.warehouseID,
		Quantity:    g.RandomInt(10, 100),
		Data:        randData(),
	}
	for i := range s.Dist {
		s.Dist[i] = g.RandStr(24, 24)
	}
	return s, true
}
