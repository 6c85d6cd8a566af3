// Package transaction describes the five TPC-C transactions: their inputs
// as keyed in by a terminal, their outputs, and the 80x24 screens both are
// rendered on.
package transaction

import (
	"time"
)

type Kind uint8

const (
	KindNewOrder Kind = iota
	KindPayment
	KindOrderStatus
	KindDelivery
	KindStockLevel
)

var (
	Kinds = []Kind{
		KindNewOrder,
		KindPayment,
		KindOrderStatus,
		KindDelivery,
		KindStockLevel,
	}

	kindNames = map[Kind]string{
		KindNewOrder:    "NEW_ORDER",
		KindPayment:     "PAYMENT",
		KindOrderStatus: "ORDER_STATUS",
		KindDelivery:    "DELIVERY",
		KindStockLevel:  "STOCK_LEVEL",
	}

	keyingDurations = map[Kind]time.Duration{
		KindNewOrder:    18 * time.Second,
		KindPayment:     3 * time.Second,
		KindOrderStatus: 2 * time.Second,
		KindDelivery:    2 * time.Second,
		KindStockLevel:  2 * time.Second,
	}

	thinkingDurations = map[Kind]time.Duration{
		KindNewOrder:    12 * time.Second,
		KindPayment:     12 * time.Second,
		KindOrderStatus: 10 * time.Second,
		KindDelivery:    5 * time.Second,
		KindStockLevel:  5 * time.Second,
	}
)

func (self Kind) String() string {
	if name, ok := kindNames[self]; ok {
		return name
	}
	return "UNKNOWN_TRANSACTION"
}

// ParseKind is the inverse of Kind.String.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// KeyingDuration is the time a terminal operator takes to key in the input.
func (self Kind) KeyingDuration() time.Duration {
	return keyingDurations[self]
}

// ThinkingDuration is the time a terminal operator takes to read the output.
func (self Kind) ThinkingDuration() time.Duration {
	return thinkingDurations[self]
}

// Transaction is the input of one of the five transactions.
type Transaction interface {
	Kind() Kind
	// Screen renders the input as an 80x24 terminal screen.
	Screen() string
}
