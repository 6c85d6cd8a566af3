package benchmark

import (
	"bytes"
	"fmt"

	tx "github.com/hhkbp2/tpccbench/transaction"
)

type Phase uint8

const (
	PhaseRampUp Phase = iota
	PhaseBaking
)

func (self Phase) String() string {
	switch self {
	case PhaseRampUp:
		return "RAMP-UP"
	case PhaseBaking:
		return "BAKING"
	default:
		return "UNKNOWN_PHASE"
	}
}

// Listener is told about the interim rate once per elapsed minute.
type Listener interface {
	Interim(phase Phase, minute int, rate Rate)
}

type Report struct {
	RunID     string
	Terminals int
	// RampUp is zero when there was no ramp-up.
	RampUp        Rate
	Measured      Rate
	RampUpCount   Snapshot
	MeasuredCount Snapshot
	Violations    []*tx.WeightViolation
}

func (self *Report) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "run %s with %d terminals\n", self.RunID, self.Terminals)
	fmt.Fprintf(&buf, "ramp-up:     tpmC=%.2f tpmTotal=%.2f (new orders=%d, total=%d)\n",
		self.RampUp.TpmC, self.RampUp.TpmTotal, self.RampUpCount.NewOrders, self.RampUpCount.Total)
	fmt.Fprintf(&buf, "measurement: tpmC=%.2f tpmTotal=%.2f (new orders=%d, total=%d)\n",
		self.Measured.TpmC, self.Measured.TpmTotal, self.MeasuredCount.NewOrders, self.MeasuredCount.Total)
	for _, v := range self.Violations {
		fmt.Fprintf(&buf, "warning: %s\n", v)
	}
	return buf.String()
}
