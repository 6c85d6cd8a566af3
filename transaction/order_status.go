package transaction

import (
	"fmt"
	"time"

	g "github.com/hhkbp2/tpccbench/generator"
	"github.com/hhkbp2/tpccbench/model"
)

type OrderStatus struct {
	WarehouseID int64
	DistrictID  int64
	Customer    CustomerSelector
}

func GenerateOrderStatus(warehouseID int64) *OrderStatus {
	return &OrderStatus{
		WarehouseID: warehouseID,
		DistrictID:  g.RandomInt(1, model.DistrictsPerWarehouse),
		Customer:    GenerateCustomerSelector(),
	}
}

func (self *OrderStatus) Kind() Kind {
	return KindOrderStatus
}

const (
	orderStatusTitle  = "Order-Status"
	orderStatusHeader = "Supply-W     Item-Id    Qty     Amount      Delivery-Date"
)

func (self *OrderStatus) Screen() string {
	c, last := self.Customer.idAndName()
	s := newScreen(orderStatusTitle)
	s.linef("Warehouse: %-6d District: %-2d", self.WarehouseID, self.DistrictID)
	s.linef("Customer: %s   Name: %-16s XX XXXXXXXXXXXXXXXX", c, last)
	s.linef("Cust-Balance: $-*****.**")
	s.linef("Order-Number: 99999999   Entry-Date: DD-MM-YYYY hh:mm:ss   Carrier-Number: --")
	s.linef(orderStatusHeader)
	for i := 0; i < model.MaxOrderLines; i++ {
		s.linef("  ----       ------     --     $-----.--      DD-MM-YYYY")
	}
	return s.String()
}

type OrderStatusLineOut struct {
	ItemID            int64
	SupplyWarehouseID int64
	Quantity          int64
	Amount            float64
	DeliveryDate      time.Time
}

type OrderStatusOut struct {
	WarehouseID     int64
	DistrictID      int64
	CustomerID      int64
	CustomerLast    string
	CustomerMiddle  string
	CustomerFirst   string
	CustomerBalance float64
	// OrderID is 0 when the customer has no order.
	OrderID   int64
	CarrierID int64
	EntryDate time.Time
	Lines     []*OrderStatusLineOut
}

func optionalInt(v int64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%d", v)
}

func (self *OrderStatusOut) Screen() string {
	s := newScreen(orderStatusTitle)
	s.linef("Warehouse: %-6d District: %-2d", self.WarehouseID, self.DistrictID)
	s.linef("Customer: %-4d   Name: %-16s %-2s %-16s",
		self.CustomerID, self.CustomerLast, self.CustomerMiddle, self.CustomerFirst)
	s.linef("Cust-Balance: $%-9.2f", self.CustomerBalance)
	s.linef("Order-Number: %-8s   Entry-Date: %-19s   Carrier-Number: %-2s",
		optionalInt(self.OrderID), formatDateTime(self.EntryDate), optionalInt(self.CarrierID))
	s.linef(orderStatusHeader)
	for _, l := range self.Lines {
		s.linef("  %-6d      %-6d     %-2d     $%-7.2f      %s",
			l.SupplyWarehouseID, l.ItemID, l.Quantity, l.Amount, formatDate(l.DeliveryDate))
	}
	return s.String()
}
