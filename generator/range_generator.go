package generator

import (
	"sync/atomic"
)

// RangeGenerator hands out the ids of the contiguous range [start, end] in
// increasing order, once each.
type RangeGenerator struct {
	*IntegerGeneratorBase
	count int64
	start int64
	end   int64
}

func NewRangeGenerator(start, end int64) *RangeGenerator {
	return &RangeGenerator{
		IntegerGeneratorBase: NewIntegerGeneratorBase(start - 1),
		count:                start - 1,
		start:                start,
		end:                  end,
	}
}

// Next returns the next id and whether the range still had one.
func (self *RangeGenerator) Next() (int64, bool) {
	ret := atomic.AddInt64(&self.count, 1)
	if ret > self.end {
		return 0, false
	}
	self.SetLastInt(ret)
	return ret, true
}

// NextInt returns the next id, or end+1 once the range is exhausted.
func (self *RangeGenerator) NextInt() int64 {
	ret, ok := self.Next()
	if !ok {
		return self.end + 1
	}
	return ret
}

func (self *RangeGenerator) NextString() string {
	return self.IntegerGeneratorBase.NextString(self)
}

func (self *RangeGenerator) Mean() float64 {
	return float64(self.start+self.end) / 2.0
}

// Len returns the total number of ids in the range.
func (self *RangeGenerator) Len() int64 {
	if self.end < self.start {
		return 0
	}
	return self.end - self.start + 1
}

func (self *RangeGenerator) Start() int64 {
	return self.start
}
