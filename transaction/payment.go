package transaction

import (
	"fmt"
	"time"

	g "github.com/hhkbp2/tpccbench/generator"
	"github.com/hhkbp2/tpccbench/model"
)

// CustomerSelector picks a customer either by last name or by id.
type CustomerSelector struct {
	ByLastName bool
	LastName   string
	ID         int64
}

// GenerateCustomerSelector selects by last name 60% of the time.
func GenerateCustomerSelector() CustomerSelector {
	if g.RandomBool(0.6) {
		return CustomerSelector{ByLastName: true, LastName: g.RandLastName()}
	}
	return CustomerSelector{ID: g.CustomerIDNURand.NextInt()}
}

func (self CustomerSelector) String() string {
	if self.ByLastName {
		return "last name " + self.LastName
	}
	return fmt.Sprintf("id %d", self.ID)
}

// idAndName returns the id and name columns as keyed in.
func (self CustomerSelector) idAndName() (string, string) {
	if self.ByLastName {
		return "----", self.LastName
	}
	return fmt.Sprintf("%-4d", self.ID), ""
}

type Payment struct {
	WarehouseID     int64
	DistrictID      int64
	HomeWarehouseID int64
	Customer        CustomerSelector
	Amount          float64
}

func GeneratePayment(homeWarehouseID, warehouseCount, homeDistrictID int64) *Payment {
	w, d := homeWarehouseID, homeDistrictID
	if !g.RandomBool(0.85) {
		if g.RandomBool(0.01) && warehouseCount > 1 {
			w = remoteWarehouse(homeWarehouseID, warehouseCount)
		}
		d = g.RandomInt(1, model.DistrictsPerWarehouse)
	}
	return &Payment{
		WarehouseID:     w,
		DistrictID:      d,
		HomeWarehouseID: homeWarehouseID,
		Customer:        GenerateCustomerSelector(),
		Amount:          g.RandDouble(1, 5000, 2),
	}
}

// CustomerWarehouseID is the warehouse the paying customer belongs to.
func (self *Payment) CustomerWarehouseID() int64 {
	return self.HomeWarehouseID
}

func (self *Payment) IsRemote() bool {
	return self.WarehouseID != self.HomeWarehouseID
}

func (self *Payment) Kind() Kind {
	return KindPayment
}

const (
	paymentTitle = "Payment"
)

func (self *Payment) Screen() string {
	c, last := self.Customer.idAndName()
	s := newScreen(paymentTitle)
	s.linef("Date: %s", formatDateTime(time.Now()))
	s.linef("Warehouse: %-6d                        District: %-2d", self.WarehouseID, self.DistrictID)
	s.linef("XXXXXXXXXXXXXXXXXXXX                     XXXXXXXXXXXXXXXXXXXX")
	s.linef("XXXXXXXXXXXXXXXXXXXX                     XXXXXXXXXXXXXXXXXXXX")
	s.linef("XXXXXXXXXXXXXXXXXXXX XX XXXXX-XXXX       XXXXXXXXXXXXXXXXXXXX XX XXXXX-XXXX")
	s.linef("Customer: %s  Cust-Warehouse: %-4d  Cust-District: %-2d",
		c, self.CustomerWarehouseID(), self.DistrictID)
	s.linef("Name:   %-16s XX XXXXXXXXXXXXXXXX     Since:  **-**-****", last)
	s.linef("        XXXXXXXXXXXXXXXXXXXX                     Credit: XX")
	s.linef("        XXXXXXXXXXXXXXXXXXXX                     %%Disc:  --.--")
	s.linef("        XXXXXXXXXXXXXXXXXXXX XX XXXXX-XXXX       Phone:  XXXXXX-XXX-XXX-XXXX")
	s.linef("Amount Paid:          $%7.2f      New Cust-Balance: $-**********.**", self.Amount)
	s.linef("Credit Limit:   $----------.--")
	for i := 0; i < 4; i++ {
		prefix := "           "
		if i == 0 {
			prefix = "Cust-Data: "
		}
		s.linef("%sXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX", prefix)
	}
	return s.String()
}

type PaymentOut struct {
	WarehouseID         int64
	DistrictID          int64
	CustomerID          int64
	CustomerWarehouseID int64
	CustomerDistrictID  int64
	Amount              float64
	Date                time.Time
	Warehouse           model.Address
	District            model.Address
	CustomerFirst       string
	CustomerMiddle      string
	CustomerLast        string
	Customer            model.Address
	CustomerPhone       string
	CustomerSince       time.Time
	CustomerCredit      string
	CustomerCreditLimit float64
	CustomerDiscount    float64
	CustomerBalance     float64
	// CustomerData is only filled for bad credit customers.
	CustomerData string
}

func (self *PaymentOut) Screen() string {
	s := newScreen(paymentTitle)
	s.linef("Date: %s", formatDateTime(self.Date))
	s.linef("Warehouse: %-6d                        District: %-2d", self.WarehouseID, self.DistrictID)
	s.linef("%-20s                     %-20s", self.Warehouse.Street1, self.District.Street1)
	s.linef("%-20s                     %-20s", self.Warehouse.Street2, self.District.Street2)
	s.linef("%-20s %-2s %-10s       %-20s %-2s %-10s",
		self.Warehouse.City, self.Warehouse.State, formatZip(self.Warehouse.Zip),
		self.District.City, self.District.State, formatZip(self.District.Zip))
	s.linef("Customer: %-4d  Cust-Warehouse: %-4d  Cust-District: %-2d",
		self.CustomerID, self.CustomerWarehouseID, self.CustomerDistrictID)
	s.linef("Name:   %-16s %-2s %-16s     Since:  %s",
		self.CustomerLast, self.CustomerMiddle, self.CustomerFirst, formatDate(self.CustomerSince))
	s.linef("        %-20s                     Credit: %-2s", self.Customer.Street1, self.CustomerCredit)
	s.linef("        %-20s                     %%Disc:  %-5.2f", self.Customer.Street2, self.CustomerDiscount)
	s.linef("        %-20s %-2s %-10s       Phone:  %-19s",
		self.Customer.City, self.Customer.State, formatZip(self.Customer.Zip), formatPhone(self.CustomerPhone))
	s.linef("Amount Paid:          $%7.2f      New Cust-Balance: $%-14.2f", self.Amount, self.CustomerBalance)
	s.linef("Credit Limit:   $%-13.2f", self.CustomerCreditLimit)
	for i, data := range chunk(self.CustomerData, 50, 4) {
		prefix := "           "
		if i == 0 {
			prefix = "Cust-Data: "
		}
		s.linef("%s%-50s", prefix, data)
	}
	return s.String()
}
