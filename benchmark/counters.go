package benchmark

import (
	"sync/atomic"
)

// Counters are shared by all terminals of a run. Terminals only add, the
// timer only reads.
type Counters struct {
	newOrders int64
	total     int64
}

func NewCounters() *Counters {
	return &Counters{}
}

func (self *Counters) AddNewOrder() {
	atomic.AddInt64(&self.newOrders, 1)
}

func (self *Counters) AddTotal() {
	atomic.AddInt64(&self.total, 1)
}

func (self *Counters) NewOrders() int64 {
	return atomic.LoadInt64(&self.newOrders)
}

func (self *Counters) Total() int64 {
	return atomic.LoadInt64(&self.total)
}

func (self *Counters) Snapshot() Snapshot {
	return Snapshot{
		NewOrders: self.NewOrders(),
		Total:     self.Total(),
	}
}

type Snapshot struct {
	NewOrders int64
	Total     int64
}

func (self Snapshot) Sub(other Snapshot) Snapshot {
	return Snapshot{
		NewOrders: self.NewOrders - other.NewOrders,
		Total:     self.Total - other.Total,
	}
}

// Per returns the rate over the given number of minutes. Zero minutes gives
// a zero rate.
func (self Snapshot) Per(minutes int) Rate {
	if minutes <= 0 {
		return Rate{}
	}
	return Rate{
		TpmC:     float64(self.NewOrders) / float64(minutes),
		TpmTotal: float64(self.Total) / float64(minutes),
	}
}

type Rate struct {
	// TpmC counts committed new orders per minute.
	TpmC     float64
	TpmTotal float64
}
