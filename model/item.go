package model

import (
	g "github.com/hhkbp2/tpccbench/generator"
)

type Item struct {
	ID      int64
	ImageID int64
	Name    string
	Price   float64
	Data    string
}

// ItemGenerator yields the items of one contiguous id range.
type ItemGenerator struct {
	ids *g.RangeGenerator
}

func NewItemGenerator(start, end int64) *ItemGenerator {
	return &ItemGenerator{
		ids: g.NewRangeGenerator(start, end),
	}
}

// NewItemGenerators splits the item catalog into its two load ranges.
func NewItemGenerators() []*ItemGenerator {
	return []*ItemGenerator{
		NewItemGenerator(1, ItemFirstRangeEnd),
		NewItemGenerator(ItemFirstRangeEnd+1, ItemCount),
	}
}

func (self *ItemGenerator) Len() int64 {
	return self.ids.Len()
}

func (self *ItemGenerator) Start() int64 {
	return self.ids.Start()
}

// randData returns a data string that carries the ORIGINAL mark at a random
// offset in 10% of the calls.
func randData() string {
	data := g.RandStr(26, 50)
	if g.RandomBool(0.1) {
		pos := int(g.NextInt64(int64(len(data) - len(OriginalMark))))
		data = data[:pos] + OriginalMark + data[pos+len(OriginalMark):]
	}
	return data
}

func (self *ItemGenerator) Next() (*Item, bool) {
	id, ok := self.ids.Next()
	if !ok {
		return nil, false
	}
	return &Item{
		ID:      id,
		ImageID: g.RandomInt(1, 10000),
		Name:    g.RandStr(14, 24),
		Price:   g.RandDouble(1, 100, 2),
		Data:    randData(),
	}, true
}
