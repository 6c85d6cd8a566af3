package transaction

import (
	g "github.com/hhkbp2/tpccbench/generator"
)

// Generator draws transactions according to the configured mix. It is safe
// for concurrent use.
type Generator struct {
	warehouseCount int64
	chooser        *g.DiscreteGenerator
}

func NewGenerator(weights Weights, warehouseCount int64) *Generator {
	chooser := g.NewDiscreteGenerator(KindNewOrder.String())
	// the cumulative walk order is part of the mix definition
	chooser.AddValue(weights.Payment, KindPayment.String())
	chooser.AddValue(weights.OrderStatus, KindOrderStatus.String())
	chooser.AddValue(weights.Delivery, KindDelivery.String())
	chooser.AddValue(weights.StockLevel, KindStockLevel.String())
	return &Generator{
		warehouseCount: warehouseCount,
		chooser:        chooser,
	}
}

// Choose maps a draw u in [0, 100) to a transaction kind.
func (self *Generator) Choose(u float64) Kind {
	kind, _ := ParseKind(self.chooser.Choose(u))
	return kind
}

func (self *Generator) NextKind() Kind {
	kind, _ := ParseKind(self.chooser.NextString())
	return kind
}

// Generate draws the next transaction for a terminal bound to the given
// warehouse and district.
func (self *Generator) Generate(warehouseID, districtID int64) Transaction {
	return self.GenerateKind(self.NextKind(), warehouseID, districtID)
}

func (self *Generator) GenerateKind(kind Kind, warehouseID, districtID int64) Transaction {
	switch kind {
	case KindPayment:
		return GeneratePayment(warehouseID, self.warehouseCount, districtID)
	case KindOrderStatus:
		return GenerateOrderStatus(warehouseID)
	case KindDelivery:
		return GenerateDelivery(warehouseID)
	case KindStockLevel:
		return GenerateStockLevel(warehouseID, districtID)
	default:
		return GenerateNewOrder(warehouseID, self.warehouseCount)
	}
}
