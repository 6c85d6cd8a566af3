// Package model holds the TPC-C entities and the lazy generators that
// produce the initial population of a warehouse.
package model

const (
	ItemCount             = 100000
	ItemFirstRangeEnd     = 50000
	DistrictsPerWarehouse = 10
	CustomersPerDistrict  = 3000
	OrdersPerDistrict     = 3000
	StockPerWarehouse     = 100000
	// Orders above this id are undelivered: they have no carrier and a
	// matching NewOrder row.
	DeliveredOrders      = 2100
	NewOrdersPerDistrict = OrdersPerDistrict - DeliveredOrders
	MinOrderLines        = 5
	MaxOrderLines        = 15
	MaxCarrierID         = 10

	OriginalMark = "ORIGINAL"
)
