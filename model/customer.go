package model

import (
	"fmt"
	"time"

	g "github.com/hhkbp2/tpccbench/generator"
)

const (
	GoodCredit = "GC"
	BadCredit  = "BC"
)

type Customer struct {
	ID          int64
	DistrictID  int64
	WarehouseID int64
	First       string
	Middle      string
	Last        string
	Address
	Phone         string
	Since         time.Time
	Credit        string
	CreditLimit   float64
	Discount      float64
	Balance       float64
	YTDPayment    float64
	PaymentCount  int64
	DeliveryCount int64
	Data          string
}

type History struct {
	CustomerID          int64
	CustomerDistrictID  int64
	CustomerWarehouseID int64
	DistrictID          int64
	WarehouseID         int64
	Date                time.Time
	Amount              float64
	Data                string
}

// CustomerGenerator yields the customers of one district, each paired with
// its initial history row.
type CustomerGenerator struct {
	districtID  int64
	warehouseID int64
	ids         *g.RangeGenerator
}

func NewCustomerGenerator(d *District) *CustomerGenerator {
	return &CustomerGenerator{
		districtID:  d.ID,
		warehouseID: d.WarehouseID,
		ids:         g.NewRangeGenerator(1, CustomersPerDistrict),
	}
}

func (self *CustomerGenerator) Len() int64 {
	return self.ids.Len()
}

func randPhone() string {
	return fmt.Sprintf("%08d%08d", g.NextInt64(100000000), g.NextInt64(100000000))
}

func randCredit() string {
	if g.RandomBool(0.1) {
		return BadCredit
	}
	return GoodCredit
}

func (self *CustomerGenerator) Next() (*Customer, *History, bool) {
	id, ok := self.ids.Next()
	if !ok {
		return nil, nil, false
	}
	now := time.Now()
	c := &Customer{
		ID:            id,
		DistrictID:    self.districtID,
		WarehouseID:   self.warehouseID,
		First:         g.RandStr(8, 16),
		Middle:        "OE",
		Last:          g.RandLastName(),
		Address:       randAddress(),
		Phone:         randPhone(),
		Since:         now,
		Credit:        randCredit(),
		CreditLimit:   50000,
		Discount:      g.RandDouble(0, 0.5, 4),
		Balance:       -10,
		YTDPayment:    10,
		PaymentCount:  1,
		DeliveryCount: 0,
		Data:          g.RandStr(300, 500),
	}
	h := &History{
		CustomerID:          id,
		CustomerDistrictID:  self.districtID,
		CustomerWarehouseID: self.warehouseID,
		DistrictID:          self.districtID,
		WarehouseID:         self.warehouseID,
		Date:                now,
		Amount:              10,
		Data:                g.RandStr(12, 24),
	}
	return c, h, true
}
