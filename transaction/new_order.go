package transaction

import (
	"time"

	g "github.com/hhkbp2/tpccbench/generator"
	"github.com/hhkbp2/tpccbench/model"
)

type NewOrderLine struct {
	ItemID            int64
	SupplyWarehouseID int64
	Quantity          int64
	homeWarehouseID   int64
}

// IsRemote reports whether the line is supplied by a warehouse other than
// the one the order is placed on.
func (self *NewOrderLine) IsRemote() bool {
	return self.SupplyWarehouseID != self.homeWarehouseID
}

type NewOrder struct {
	WarehouseID int64
	DistrictID  int64
	CustomerID  int64
	// RollbackLast marks the 1% of orders whose last line refers to an
	// unused item id, which makes the order roll back.
	RollbackLast bool
	Lines        []*NewOrderLine
}

var (
	orderLineCount = g.NewUniformIntegerGenerator(model.MinOrderLines, model.MaxOrderLines)
)

// remoteWarehouse picks a warehouse other than home, uniformly.
func remoteWarehouse(home, warehouseCount int64) int64 {
	w := g.RandomInt(1, warehouseCount-1)
	if w >= home {
		w++
	}
	return w
}

func GenerateNewOrder(warehouseID, warehouseCount int64) *NewOrder {
	rollbackLast := g.RandomBool(0.01)
	n := orderLineCount.NextInt()
	lines := make([]*NewOrderLine, 0, n)
	for i := int64(0); i < n; i++ {
		supply := warehouseID
		if g.RandomBool(0.01) && warehouseCount > 1 {
			supply = remoteWarehouse(warehouseID, warehouseCount)
		}
		lines = append(lines, &NewOrderLine{
			ItemID:            g.ItemIDNURand.NextInt(),
			SupplyWarehouseID: supply,
			Quantity:          g.RandomInt(1, 10),
			homeWarehouseID:   warehouseID,
		})
	}
	if rollbackLast {
		lines[len(lines)-1].ItemID = g.InvalidItemID
	}
	return &NewOrder{
		WarehouseID:  warehouseID,
		DistrictID:   g.RandomInt(1, model.DistrictsPerWarehouse),
		CustomerID:   g.CustomerIDNURand.NextInt(),
		RollbackLast: rollbackLast,
		Lines:        lines,
	}
}

// AllLocal reports whether every line is supplied by the home warehouse.
func (self *NewOrder) AllLocal() bool {
	for _, l := range self.Lines {
		if l.IsRemote() {
			return false
		}
	}
	return true
}

func (self *NewOrder) Kind() Kind {
	return KindNewOrder
}

const (
	newOrderTitle  = "New Order"
	newOrderHeader = " Supp_W  Item_Id  Item Name                 Qty  Stock  B/G  Price    Amount"
)

func (self *NewOrder) Screen() string {
	s := newScreen(newOrderTitle)
	s.linef("Warehouse: %-6d District: %-2d                        Date: %s",
		self.WarehouseID, self.DistrictID, formatDateTime(time.Now()))
	s.linef("Customer:  %-6d Name: ----------------   Credit: --   %%Disc: --.--",
		self.CustomerID)
	s.linef("Order Number: --------  Number of Lines: %-2d        W_tax: --.--   D_tax: --.--",
		len(self.Lines))
	s.blank()
	s.linef(newOrderHeader)
	for _, l := range self.Lines {
		s.linef(" %-6d  %-6d   ------------------------  %-2d    ---    -   $---.--  $----.--",
			l.SupplyWarehouseID, l.ItemID, l.Quantity)
	}
	s.blanksUntil(21)
	s.linef("Execution Status: ------------------------                   Total:  $-----.--")
	return s.String()
}

type NewOrderLineOut struct {
	ItemID            int64
	SupplyWarehouseID int64
	Quantity          int64
	ItemName          string
	StockQuantity     int64
	BrandGeneric      string
	Price             float64
	Amount            float64
}

type NewOrderOut struct {
	WarehouseID      int64
	DistrictID       int64
	CustomerID       int64
	Discount         float64
	Credit           string
	CustomerLastName string
	WarehouseTax     float64
	DistrictTax      float64
	OrderID          int64
	Lines            []*NewOrderLineOut
	EntryDate        time.Time
	Total            float64
}

func (self *NewOrderOut) Screen() string {
	s := newScreen(newOrderTitle)
	s.linef("Warehouse: %-6d District: %-2d                        Date: %s",
		self.WarehouseID, self.DistrictID, formatDateTime(self.EntryDate))
	s.linef("Customer:  %-6d Name: %-16s   Credit: %-2s   %%Disc: %-5.2f",
		self.CustomerID, self.CustomerLastName, self.Credit, self.Discount)
	s.linef("Order Number: %-8d  Number of Lines: %-2d        W_tax: %-5.2f   D_tax: %-5.2f",
		self.OrderID, len(self.Lines), self.WarehouseTax, self.DistrictTax)
	s.blank()
	s.linef(newOrderHeader)
	for _, l := range self.Lines {
		s.linef(" %-6d  %-6d   %-24s  %-2d    %-3d    %-1s   $%-6.2f  $%-7.2f",
			l.SupplyWarehouseID, l.ItemID, l.ItemName, l.Quantity,
			l.StockQuantity, l.BrandGeneric, l.Price, l.Amount)
	}
	s.blanksUntil(21)
	s.linef("Execution Status:                                            Total:  $%-8.2f",
		self.Total)
	return s.String()
}

// NewOrderRollbackOut is the output of a NewOrder rolled back on an invalid
// item number.
type NewOrderRollbackOut struct {
	WarehouseID      int64
	DistrictID       int64
	CustomerID       int64
	Credit           string
	CustomerLastName string
	OrderID          int64
}

func (self *NewOrderRollbackOut) Screen() string {
	s := newScreen(newOrderTitle)
	s.linef("Warehouse: %-6d District: %-2d                        Date:",
		self.WarehouseID, self.DistrictID)
	s.linef("Customer:  %-6d Name: %-16s   Credit: %-2s   %%Disc:",
		self.CustomerID, self.CustomerLastName, self.Credit)
	s.linef("Order Number: %-8d  Number of Lines:           W_tax:         D_tax:",
		self.OrderID)
	s.blank()
	s.linef(newOrderHeader)
	s.blanksUntil(21)
	s.linef("Execution Status: Item number is not valid                   Total:  $-----.--")
	return s.String()
}

// NewOrderResult is either a completed order or an order voided by the
// intentional rollback.
type NewOrderResult struct {
	out      *NewOrderOut
	rollback *NewOrderRollbackOut
}

func Completed(out *NewOrderOut) *NewOrderResult {
	return &NewOrderResult{out: out}
}

func Voided(rollback *NewOrderRollbackOut) *NewOrderResult {
	return &NewOrderResult{rollback: rollback}
}

func (self *NewOrderResult) IsVoided() bool {
	return self.rollback != nil
}

// Out returns the output of a completed order, nil if voided.
func (self *NewOrderResult) Out() *NewOrderOut {
	return self.out
}

// Rollback returns the output of a voided order, nil if completed.
func (self *NewOrderResult) Rollback() *NewOrderRollbackOut {
	return self.rollback
}

func (self *NewOrderResult) Screen() string {
	if self.IsVoided() {
		return self.rollback.Screen()
	}
	return self.out.Screen()
}
