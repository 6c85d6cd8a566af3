package model

import (
	g "github.com/hhkbp2/tpccbench/generator"
)

type Address struct {
	Street1 string
	Street2 string
	City    string
	State   string
	Zip     string
}

func randAddress() Address {
	return Address{
		Street1: g.RandStr(10, 20),
		Street2: g.RandStr(10, 20),
		City:    g.RandStr(10, 20),
		State:   g.RandStr(2, 2),
		Zip:     g.RandZip(),
	}
}

type Warehouse struct {
	ID   int64
	Name string
	Address
	Tax float64
	YTD float64
}

// WarehouseGenerator yields warehouses 1..count.
type WarehouseGenerator struct {
	ids *g.RangeGenerator
}

func NewWarehouseGenerator(count int64) *WarehouseGenerator {
	return &WarehouseGenerator{
		ids: g.NewRangeGenerator(1, count),
	}
}

func (self *WarehouseGenerator) Next() (*Warehouse, bool) {
	id, ok := self.ids.Next()
	if !ok {
		return nil, false
	}
	return &Warehouse{
		ID:      id,
		Name:    g.RandStr(4, 10),
		Address: randAddress(),
		Tax:     g.RandDouble(0, 0.2, 4),
		YTD:     300000,
	}, true
}
