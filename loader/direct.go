package loader

import (
	"context"

	"github.com/hhkbp2/tpccbench/log"
	"github.com/hhkbp2/tpccbench/model"
	"github.com/hhkbp2/tpccbench/sut"
	"github.com/pkg/errors"
)

var (
	ErrUnevenBatch = errors.New("batch size does not evenly divide the row count")
)

// Batches holds the number of rows per multi-row INSERT, per table.
type Batches struct {
	Item     int64
	Stock    int64
	District int64
	Customer int64
	Order    int64
}

func DefaultBatches() Batches {
	return Batches{
		Item:     100,
		Stock:    1000,
		District: 10,
		Customer: 1000,
		Order:    1000,
	}
}

// CheckBatch fails unless batch evenly divides total.
func CheckBatch(table string, total, batch int64) error {
	if batch <= 0 || total%batch != 0 {
		return errors.Wrapf(ErrUnevenBatch, "%s: %d rows in batches of %d", table, total, batch)
	}
	return nil
}

// Verify checks every batch size against the cardinality of its table.
func (self Batches) Verify() error {
	checks := []struct {
		table string
		total int64
		batch int64
	}{
		{"item", model.ItemFirstRangeEnd, self.Item},
		{"stock", model.StockPerWarehouse, self.Stock},
		{"district", model.DistrictsPerWarehouse, self.District},
		{"customer", model.CustomersPerDistrict, self.Customer},
		{"order", model.OrdersPerDistrict, self.Order},
	}
	for _, c := range checks {
		if err := CheckBatch(c.table, c.total, c.batch); err != nil {
			return err
		}
	}
	return nil
}

// Direct writes generated rows as multi-row INSERT statements through an
// Executor. It is meant to be shared by every SQL speaking Loader.
type Direct struct {
	exec    sut.Executor
	batches Batches
}

func NewDirect(exec sut.Executor, batches Batches) *Direct {
	return &Direct{
		exec:    exec,
		batches: batches,
	}
}

func (self *Direct) LoadItems(ctx context.Context, items *model.ItemGenerator) error {
	if err := CheckBatch("item", items.Len(), self.batches.Item); err != nil {
		return err
	}
	log.Infof("Loading items %d..%d (batch size=%d)",
		items.Start(), items.Start()+items.Len()-1, self.batches.Item)
	b := newBatch("item", "i_id", "i_im_id", "i_name", "i_price", "i_data")
	for {
		it, ok := items.Next()
		if !ok {
			break
		}
		b.add(integer(it.ID), integer(it.ImageID), quote(it.Name), decimal(it.Price), quote(it.Data))
		if int64(b.rows) == self.batches.Item {
			if err := b.flush(ctx, self.exec); err != nil {
				return errors.Wrap(err, "load items")
			}
		}
	}
	return nil
}

// LoadWarehouse loads one warehouse with its stock, districts, customers,
// history and orders, in foreign key order.
func (self *Direct) LoadWarehouse(ctx context.Context, w *model.Warehouse) error {
	if err := self.batches.Verify(); err != nil {
		return err
	}
	log.Infof("Loading warehouse ID=%d", w.ID)
	b := newBatch("warehouse", "w_id", "w_name", "w_street_1", "w_street_2",
		"w_city", "w_state", "w_zip", "w_tax", "w_ytd")
	b.add(integer(w.ID), quote(w.Name), quote(w.Street1), quote(w.Street2),
		quote(w.City), quote(w.State), quote(w.Zip), decimal(w.Tax), decimal(w.YTD))
	if err := b.flush(ctx, self.exec); err != nil {
		return errors.Wrapf(err, "load warehouse %d", w.ID)
	}
	if err := self.loadStocks(ctx, w); err != nil {
		return err
	}
	return self.loadDistricts(ctx, w)
}

func (self *Direct) loadStocks(ctx context.Context, w *model.Warehouse) error {
	log.Infof("Loading stocks for warehouse ID=%d (batch size=%d)", w.ID, self.batches.Stock)
	b := newBatch("stock", "s_i_id", "s_w_id", "s_quantity",
		"s_dist_01", "s_dist_02", "s_dist_03", "s_dist_04", "s_dist_05",
		"s_dist_06", "s_dist_07", "s_dist_08", "s_dist_09", "s_dist_10",
		"s_ytd", "s_order_cnt", "s_remote_cnt", "s_data")
	gen := model.NewStockGenerator(w)
	for {
		s, ok := gen.Next()
		if !ok {
			break
		}
		values := make([]string, 0, 17)
		values = append(values, integer(s.ItemID), integer(s.WarehouseID), integer(s.Quantity))
		for _, dist := range s.Dist {
			values = append(values, quote(dist))
		}
		values = append(values, integer(s.YTD), integer(s.OrderCount), integer(s.RemoteCount), quote(s.Data))
		b.add(values...)
		if int64(b.rows) == self.batches.Stock {
			if err := b.flush(ctx, self.exec); err != nil {
				return errors.Wrapf(err, "load stocks of warehouse %d", w.ID)
			}
		}
	}
	return nil
}

func (self *Direct) loadDistricts(ctx context.Context, w *model.Warehouse) error {
	log.Infof("Loading districts for warehouse ID=%d (batch size=%d)", w.ID, self.batches.District)
	b := newBatch("district", "d_id", "d_w_id", "d_name", "d_street_1", "d_street_2",
		"d_city", "d_state", "d_zip", "d_tax", "d_ytd", "d_next_o_id")
	gen := model.NewDistrictGenerator(w)
	districts := make([]*model.District, 0, gen.Len())
	for {
		d, ok := gen.Next()
		if !ok {
			break
		}
		districts = append(districts, d)
		b.add(integer(d.ID), integer(d.WarehouseID), quote(d.Name), quote(d.Street1),
			quote(d.Street2), quote(d.City), quote(d.State), quote(d.Zip),
			decimal(d.Tax), decimal(d.YTD), integer(d.NextOrderID))
		if int64(b.rows) == self.batches.District {
			if err := b.flush(ctx, self.exec); err != nil {
				return errors.Wrapf(err, "load districts of warehouse %d", w.ID)
			}
		}
	}
	for _, d := range districts {
		if err := self.loadCustomers(ctx, d); err != nil {
			return err
		}
		if err := self.loadOrders(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (self *Direct) loadCustomers(ctx context.Context, d *model.District) error {
	log.Debugf("Loading customers for district ID=%d of warehouse ID=%d (batch size=%d)",
		d.ID, d.WarehouseID, self.batches.Customer)
	customers := newBatch("customer", "c_id", "c_d_id", "c_w_id", "c_first", "c_middle",
		"c_last", "c_street_1", "c_street_2", "c_city", "c_state", "c_zip", "c_phone",
		"c_since", "c_credit", "c_credit_lim", "c_discount", "c_balance",
		"c_ytd_payment", "c_payment_cnt", "c_delivery_cnt", "c_data")
	history := newBatch("history", "h_c_id", "h_c_d_id", "h_c_w_id", "h_d_id",
		"h_w_id", "h_date", "h_amount", "h_data")
	gen := model.NewCustomerGenerator(d)
	for {
		c, h, ok := gen.Next()
		if !ok {
			break
		}
		customers.add(integer(c.ID), integer(c.DistrictID), integer(c.WarehouseID),
			quote(c.First), quote(c.Middle), quote(c.Last), quote(c.Street1),
			quote(c.Street2), quote(c.City), quote(c.State), quote(c.Zip),
			quote(c.Phone), timestamp(c.Since), quote(c.Credit),
			decimal(c.CreditLimit), decimal(c.Discount), decimal(c.Balance),
			decimal(c.YTDPayment), integer(c.PaymentCount), integer(c.DeliveryCount),
			quote(c.Data))
		history.add(integer(h.CustomerID), integer(h.CustomerDistrictID),
			integer(h.CustomerWarehouseID), integer(h.DistrictID), integer(h.WarehouseID),
			timestamp(h.Date), decimal(h.Amount), quote(h.Data))
		if int64(customers.rows) == self.batches.Customer {
			if err := customers.flush(ctx, self.exec); err != nil {
				return errors.Wrapf(err, "load customers of district %d/%d", d.WarehouseID, d.ID)
			}
			if err := history.flush(ctx, self.exec); err != nil {
				return errors.Wrapf(err, "load history of district %d/%d", d.WarehouseID, d.ID)
			}
		}
	}
	return nil
}

func (self *Direct) loadOrders(ctx context.Context, d *model.District) error {
	log.Debugf("Loading orders for district ID=%d of warehouse ID=%d (batch size=%d)",
		d.ID, d.WarehouseID, self.batches.Order)
	orders := newBatch("oorder", "o_id", "o_d_id", "o_w_id", "o_c_id", "o_entry_d",
		"o_carrier_id", "o_ol_cnt", "o_all_local")
	newOrders := newBatch("new_order", "no_o_id", "no_d_id", "no_w_id")
	gen := model.NewOrderGenerator(d)
	var pending []*model.Order
	for {
		o, no, ok := gen.Next()
		if !ok {
			break
		}
		orders.add(integer(o.ID), integer(o.DistrictID), integer(o.WarehouseID),
			integer(o.CustomerID), timestamp(o.EntryDate), nullableInt(o.CarrierID),
			integer(o.OrderLineCount), boolean(o.AllLocal))
		if no != nil {
			newOrders.add(integer(no.OrderID), integer(no.DistrictID), integer(no.WarehouseID))
		}
		pending = append(pending, o)
		if int64(orders.rows) == self.batches.Order {
			if err := orders.flush(ctx, self.exec); err != nil {
				return errors.Wrapf(err, "load orders of district %d/%d", d.WarehouseID, d.ID)
			}
			if err := newOrders.flush(ctx, self.exec); err != nil {
				return errors.Wrapf(err, "load new orders of district %d/%d", d.WarehouseID, d.ID)
			}
			for _, o := range pending {
				if err := self.loadOrderLines(ctx, o); err != nil {
					return err
				}
			}
			pending = pending[:0]
		}
	}
	return nil
}

// loadOrderLines writes the lines of one order as a single statement.
func (self *Direct) loadOrderLines(ctx context.Context, o *model.Order) error {
	b := newBatch("order_line", "ol_o_id", "ol_d_id", "ol_w_id", "ol_number", "ol_i_id",
		"ol_supply_w_id", "ol_delivery_d", "ol_quantity", "ol_amount", "ol_dist_info")
	gen := model.NewOrderLineGenerator(o)
	for {
		ol, ok := gen.Next()
		if !ok {
			break
		}
		b.add(integer(ol.OrderID), integer(ol.DistrictID), integer(ol.WarehouseID),
			integer(ol.Number), integer(ol.ItemID), integer(ol.SupplyWarehouseID),
			timestamp(ol.DeliveryDate), integer(ol.Quantity), decimal(ol.Amount),
			quote(ol.DistInfo))
	}
	if err := b.flush(ctx, self.exec); err != nil {
		return errors.Wrapf(err, "load lines of order %d/%d/%d", o.WarehouseID, o.DistrictID, o.ID)
	}
	return nil
}
