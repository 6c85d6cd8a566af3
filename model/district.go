package model

import (
	g "github.com/hhkbp2/tpccbench/generator"
)

type District struct {
	ID          int64
	WarehouseID int64
	Name        string
	Address
	Tax         float64
	YTD         float64
	NextOrderID int64
}

type DistrictGenerator struct {
	warehouseID int64
	ids         *g.RangeGenerator
}

func NewDistrictGenerator(w *Warehouse) *DistrictGenerator {
	return &DistrictGenerator{
		warehouseID: w.ID,
		ids:         g.NewRangeGenerator(1, DistrictsPerWarehouse),
	}
}

func (self *DistrictGenerator) Len() int64 {
	return self.ids.Len()
}

func (self *DistrictGenerator) Next() (*District, bool) {
	id, ok := self.ids.Next()
	if !ok {
		return nil, false
	}
	return &District{
		ID:          id,
		WarehouseID: self.warehouseID,
		Name:        g.RandStr(6, 10),
		Address:     randAddress(),
		Tax:         g.RandDouble(0, 0.2, 4),
		YTD:         30000,
		NextOrderID: OrdersPerDistrict + 1,
	}, true
}
