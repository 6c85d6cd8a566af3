package transaction

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNegativeWeight = errors.New("transaction weights leave a negative share to new order")

	// Minimum share of each transaction kind, in percent.
	MinimumWeights = map[Kind]float64{
		KindNewOrder:    0,
		KindPayment:     43,
		KindOrderStatus: 4,
		KindDelivery:    4,
		KindStockLevel:  4,
	}
)

// Weights are the configured percentages of the transaction mix. NewOrder
// gets whatever the other four leave of 100.
type Weights struct {
	Payment     float64 `yaml:"payment" toml:"payment"`
	OrderStatus float64 `yaml:"order_status" toml:"order_status"`
	Delivery    float64 `yaml:"delivery" toml:"delivery"`
	StockLevel  float64 `yaml:"stock_level" toml:"stock_level"`
}

func DefaultWeights() Weights {
	return Weights{
		Payment:     43,
		OrderStatus: 4,
		Delivery:    4,
		StockLevel:  4,
	}
}

func (self Weights) NewOrder() float64 {
	return 100 - (self.Payment + self.OrderStatus + self.Delivery + self.StockLevel)
}

// Weight returns the share of the given kind.
func (self Weights) Weight(kind Kind) float64 {
	switch kind {
	case KindNewOrder:
		return self.NewOrder()
	case KindPayment:
		return self.Payment
	case KindOrderStatus:
		return self.OrderStatus
	case KindDelivery:
		return self.Delivery
	case KindStockLevel:
		return self.StockLevel
	default:
		return 0
	}
}

type WeightViolation struct {
	Kind    Kind
	Weight  float64
	Minimum float64
}

func (self *WeightViolation) String() string {
	return fmt.Sprintf("%s weight %g%% is below the minimum %g%%", self.Kind, self.Weight, self.Minimum)
}

// Verify checks every kind against its minimum share. A negative NewOrder
// share is an error; shares below their minimum are returned as violations
// for the caller to warn about.
func (self Weights) Verify() ([]*WeightViolation, error) {
	if self.NewOrder() < 0 {
		return nil, errors.Wrapf(ErrNegativeWeight, "new order weight %g%%", self.NewOrder())
	}
	var ret []*WeightViolation
	for _, kind := range Kinds {
		w := self.Weight(kind)
		if min := MinimumWeights[kind]; w < min {
			ret = append(ret, &WeightViolation{
				Kind:    kind,
				Weight:  w,
				Minimum: min,
			})
		}
	}
	return ret, nil
}
