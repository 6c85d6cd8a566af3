package generator

import (
	"sync/atomic"
)

type Pair struct {
	Weight float64
	Value  string
}

// DiscreteGenerator picks a value by walking an ordered list of percentage
// weights against a uniform draw in [0, 100). Whatever the weights leave of
// the 100 goes to the fallback value.
type DiscreteGenerator struct {
	values    []*Pair
	fallback  string
	lastValue atomic.Value
}

func NewDiscreteGenerator(fallback string) *DiscreteGenerator {
	return &DiscreteGenerator{
		values:   make([]*Pair, 0),
		fallback: fallback,
	}
}

// Choose returns the value selected by the draw u, u in [0, 100).
func (self *DiscreteGenerator) Choose(u float64) string {
	var acc float64
	for _, p := range self.values {
		acc += p.Weight
		if u < acc {
			return p.Value
		}
	}
	return self.fallback
}

func (self *DiscreteGenerator) NextString() string {
	ret := self.Choose(NextFloat64() * 100)
	self.lastValue.Store(ret)
	return ret
}

func (self *DiscreteGenerator) LastString() string {
	v, ok := self.lastValue.Load().(string)
	if !ok {
		return self.NextString()
	}
	return v
}

// AddValue appends a value with its weight. Order matters: the cumulative
// walk follows insertion order.
func (self *DiscreteGenerator) AddValue(weight float64, value string) {
	self.values = append(self.values, &Pair{
		Weight: weight,
		Value:  value,
	})
}
