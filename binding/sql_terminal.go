package binding

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hhkbp2/tpccbench/model"
	"github.com/hhkbp2/tpccbench/sut"
	tx "github.com/hhkbp2/tpccbench/transaction"
	"github.com/pkg/errors"
)

const (
	maxCustomerData = 500
	// stock levels are checked over the lines of this many recent orders
	stockLevelOrders = 20
)

var (
	errVoided = errors.New("new order voided")
)

type sqlTerminal struct {
	id      int
	dialect *Dialect
	db      *sql.DB
}

// inTx runs fn in a transaction, committed only if fn succeeds.
func (self *sqlTerminal) inTx(ctx context.Context, fn func(t *sqlTx) error) error {
	t, err := self.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	if err := fn(&sqlTx{tx: t, dialect: self.dialect}); err != nil {
		t.Rollback()
		return err
	}
	return errors.Wrap(t.Commit(), "commit")
}

type sqlTx struct {
	tx      *sql.Tx
	dialect *Dialect
}

func (self *sqlTx) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return self.tx.QueryRowContext(ctx, self.dialect.Rebind(query), args...)
}

func (self *sqlTx) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return self.tx.QueryContext(ctx, self.dialect.Rebind(query), args...)
}

// forUpdate selects rows to be updated later in the transaction.
func (self *sqlTx) forUpdate(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return self.queryRow(ctx, query+self.dialect.ForUpdate, args...)
}

func (self *sqlTx) exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := self.tx.ExecContext(ctx, self.dialect.Rebind(query), args...)
	return err
}

func notLoaded(err error, format string, args ...interface{}) error {
	if err == sql.ErrNoRows {
		err = sut.ErrNotLoaded
	}
	return errors.Wrapf(err, format, args...)
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func (self *sqlTerminal) NewOrder(ctx context.Context, input *tx.NewOrder) (*tx.NewOrderResult, error) {
	out := &tx.NewOrderOut{
		WarehouseID: input.WarehouseID,
		DistrictID:  input.DistrictID,
		CustomerID:  input.CustomerID,
		EntryDate:   now(),
	}
	err := self.inTx(ctx, func(t *sqlTx) error {
		err := t.queryRow(ctx,
			"SELECT c_discount, c_last, c_credit FROM customer WHERE c_w_id = ? AND c_d_id = ? AND c_id = ?",
			input.WarehouseID, input.DistrictID, input.CustomerID).
			Scan(&out.Discount, &out.CustomerLastName, &out.Credit)
		if err != nil {
			return notLoaded(err, "customer %d/%d/%d", input.WarehouseID, input.DistrictID, input.CustomerID)
		}
		err = t.queryRow(ctx, "SELECT w_tax FROM warehouse WHERE w_id = ?", input.WarehouseID).
			Scan(&out.WarehouseTax)
		if err != nil {
			return notLoaded(err, "warehouse %d", input.WarehouseID)
		}
		err = t.forUpdate(ctx, "SELECT d_next_o_id, d_tax FROM district WHERE d_w_id = ? AND d_id = ?",
			input.WarehouseID, input.DistrictID).Scan(&out.OrderID, &out.DistrictTax)
		if err != nil {
			return notLoaded(err, "district %d/%d", input.WarehouseID, input.DistrictID)
		}
		err = t.exec(ctx, "UPDATE district SET d_next_o_id = d_next_o_id + 1 WHERE d_w_id = ? AND d_id = ?",
			input.WarehouseID, input.DistrictID)
		if err != nil {
			return errors.Wrap(err, "update district")
		}
		allLocal := 0
		if input.AllLocal() {
			allLocal = 1
		}
		err = t.exec(ctx, "INSERT INTO oorder (o_id, o_d_id, o_w_id, o_c_id, o_entry_d, o_ol_cnt, o_all_local) VALUES (?, ?, ?, ?, ?, ?, ?)",
			out.OrderID, input.DistrictID, input.WarehouseID, input.CustomerID,
			self.dialect.TimeArg(out.EntryDate), len(input.Lines), allLocal)
		if err != nil {
			return errors.Wrap(err, "insert order")
		}
		err = t.exec(ctx, "INSERT INTO new_order (no_o_id, no_d_id, no_w_id) VALUES (?, ?, ?)",
			out.OrderID, input.DistrictID, input.WarehouseID)
		if err != nil {
			return errors.Wrap(err, "insert new order")
		}
		distColumn := fmt.Sprintf("s_dist_%02d", input.DistrictID)
		var sum float64
		for i, line := range input.Lines {
			l := &tx.NewOrderLineOut{
				ItemID:            line.ItemID,
				SupplyWarehouseID: line.SupplyWarehouseID,
				Quantity:          line.Quantity,
			}
			var itemData string
			err = t.queryRow(ctx, "SELECT i_price, i_name, i_data FROM item WHERE i_id = ?", line.ItemID).
				Scan(&l.Price, &l.ItemName, &itemData)
			if err == sql.ErrNoRows {
				return errVoided
			} else if err != nil {
				return errors.Wrapf(err, "item %d", line.ItemID)
			}
			var stockData, distInfo string
			err = t.forUpdate(ctx,
				"SELECT s_quantity, s_data, "+distColumn+" FROM stock WHERE s_i_id = ? AND s_w_id = ?",
				line.ItemID, line.SupplyWarehouseID).Scan(&l.StockQuantity, &stockData, &distInfo)
			if err != nil {
				return notLoaded(err, "stock %d/%d", line.SupplyWarehouseID, line.ItemID)
			}
			if l.StockQuantity >= line.Quantity+10 {
				l.StockQuantity -= line.Quantity
			} else {
				l.StockQuantity = l.StockQuantity - line.Quantity + 91
			}
			remote := 0
			if line.IsRemote() {
				remote = 1
			}
			err = t.exec(ctx, "UPDATE stock SET s_quantity = ?, s_ytd = s_ytd + ?, s_order_cnt = s_order_cnt + 1, s_remote_cnt = s_remote_cnt + ? WHERE s_i_id = ? AND s_w_id = ?",
				l.StockQuantity, line.Quantity, remote, line.ItemID, line.SupplyWarehouseID)
			if err != nil {
				return errors.Wrap(err, "update stock")
			}
			l.Amount = float64(line.Quantity) * l.Price
			sum += l.Amount
			l.BrandGeneric = "G"
			if strings.Contains(itemData, model.OriginalMark) && strings.Contains(stockData, model.OriginalMark) {
				l.BrandGeneric = "B"
			}
			err = t.exec(ctx, "INSERT INTO order_line (ol_o_id, ol_d_id, ol_w_id, ol_number, ol_i_id, ol_supply_w_id, ol_quantity, ol_amount, ol_dist_info) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
				out.OrderID, input.DistrictID, input.WarehouseID, i+1, line.ItemID,
				line.SupplyWarehouseID, line.Quantity, l.Amount, distInfo)
			if err != nil {
				return errors.Wrap(err, "insert order line")
			}
			out.Lines = append(out.Lines, l)
		}
		out.Total = sum * (1 - out.Discount) * (1 + out.WarehouseTax + out.DistrictTax)
		return nil
	})
	if err == errVoided {
		return tx.Voided(&tx.NewOrderRollbackOut{
			WarehouseID:      out.WarehouseID,
			DistrictID:       out.DistrictID,
			CustomerID:       out.CustomerID,
			Credit:           out.Credit,
			CustomerLastName: out.CustomerLastName,
			OrderID:          out.OrderID,
		}), nil
	} else if err != nil {
		return nil, err
	}
	return tx.Completed(out), nil
}

// customerID resolves the selector, picking the middle of the customers with
// the last name ordered by first name.
func customerID(ctx context.Context, t *sqlTx, w, d int64, selector tx.CustomerSelector) (int64, error) {
	if !selector.ByLastName {
		return selector.ID, nil
	}
	rows, err := t.query(ctx,
		"SELECT c_id FROM customer WHERE c_w_id = ? AND c_d_id = ? AND c_last = ? ORDER BY c_first",
		w, d, selector.LastName)
	if err != nil {
		return 0, errors.Wrap(err, "select customers by last name")
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, errors.Wrapf(sut.ErrNotLoaded, "customer %d/%d with %s", w, d, selector)
	}
	return ids[(len(ids)-1)/2], nil
}

func (self *sqlTerminal) Payment(ctx context.Context, input *tx.Payment) (*tx.PaymentOut, error) {
	out := &tx.PaymentOut{
		WarehouseID:         input.WarehouseID,
		DistrictID:          input.DistrictID,
		CustomerWarehouseID: input.CustomerWarehouseID(),
		CustomerDistrictID:  input.DistrictID,
		Amount:              input.Amount,
		Date:                now(),
	}
	err := self.inTx(ctx, func(t *sqlTx) error {
		err := t.exec(ctx, "UPDATE warehouse SET w_ytd = w_ytd + ? WHERE w_id = ?", input.Amount, input.WarehouseID)
		if err != nil {
			return errors.Wrap(err, "update warehouse")
		}
		var warehouseName, districtName string
		w := &out.Warehouse
		err = t.queryRow(ctx, "SELECT w_name, w_street_1, w_street_2, w_city, w_state, w_zip FROM warehouse WHERE w_id = ?",
			input.WarehouseID).Scan(&warehouseName, &w.Street1, &w.Street2, &w.City, &w.State, &w.Zip)
		if err != nil {
			return notLoaded(err, "warehouse %d", input.WarehouseID)
		}
		err = t.exec(ctx, "UPDATE district SET d_ytd = d_ytd + ? WHERE d_w_id = ? AND d_id = ?",
			input.Amount, input.WarehouseID, input.DistrictID)
		if err != nil {
			return errors.Wrap(err, "update district")
		}
		d := &out.District
		err = t.queryRow(ctx, "SELECT d_name, d_street_1, d_street_2, d_city, d_state, d_zip FROM district WHERE d_w_id = ? AND d_id = ?",
			input.WarehouseID, input.DistrictID).Scan(&districtName, &d.Street1, &d.Street2, &d.City, &d.State, &d.Zip)
		if err != nil {
			return notLoaded(err, "district %d/%d", input.WarehouseID, input.DistrictID)
		}

		cw, cd := out.CustomerWarehouseID, out.CustomerDistrictID
		if out.CustomerID, err = customerID(ctx, t, cw, cd, input.Customer); err != nil {
			return err
		}
		var since nullTime
		var data string
		c := &out.Customer
		err = t.forUpdate(ctx, "SELECT c_first, c_middle, c_last, c_street_1, c_street_2, c_city, c_state, c_zip, c_phone, c_since, c_credit, c_credit_lim, c_discount, c_balance, c_data FROM customer WHERE c_w_id = ? AND c_d_id = ? AND c_id = ?",
			cw, cd, out.CustomerID).Scan(&out.CustomerFirst, &out.CustomerMiddle, &out.CustomerLast,
			&c.Street1, &c.Street2, &c.City, &c.State, &c.Zip, &out.CustomerPhone, &since,
			&out.CustomerCredit, &out.CustomerCreditLimit, &out.CustomerDiscount,
			&out.CustomerBalance, &data)
		if err != nil {
			return notLoaded(err, "customer %d/%d/%d", cw, cd, out.CustomerID)
		}
		out.CustomerSince = since.Time
		out.CustomerBalance -= input.Amount
		if out.CustomerCredit == model.BadCredit {
			data = fmt.Sprintf("%d %d %d %d %d %.2f|%s", out.CustomerID, cd, cw,
				input.DistrictID, input.WarehouseID, input.Amount, data)
			if len(data) > maxCustomerData {
				data = data[:maxCustomerData]
			}
			out.CustomerData = data
		}
		err = t.exec(ctx, "UPDATE customer SET c_balance = ?, c_ytd_payment = c_ytd_payment + ?, c_payment_cnt = c_payment_cnt + 1, c_data = ? WHERE c_w_id = ? AND c_d_id = ? AND c_id = ?",
			out.CustomerBalance, input.Amount, data, cw, cd, out.CustomerID)
		if err != nil {
			return errors.Wrap(err, "update customer")
		}
		err = t.exec(ctx, "INSERT INTO history (h_c_id, h_c_d_id, h_c_w_id, h_d_id, h_w_id, h_date, h_amount, h_data) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			out.CustomerID, cd, cw, input.DistrictID, input.WarehouseID,
			self.dialect.TimeArg(out.Date), input.Amount, warehouseName+"    "+districtName)
		return errors.Wrap(err, "insert history")
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (self *sqlTerminal) OrderStatus(ctx context.Context, input *tx.OrderStatus) (*tx.OrderStatusOut, error) {
	out := &tx.OrderStatusOut{
		WarehouseID: input.WarehouseID,
		DistrictID:  input.DistrictID,
	}
	err := self.inTx(ctx, func(t *sqlTx) error {
		var err error
		if out.CustomerID, err = customerID(ctx, t, input.WarehouseID, input.DistrictID, input.Customer); err != nil {
			return err
		}
		err = t.queryRow(ctx, "SELECT c_balance, c_first, c_middle, c_last FROM customer WHERE c_w_id = ? AND c_d_id = ? AND c_id = ?",
			input.WarehouseID, input.DistrictID, out.CustomerID).
			Scan(&out.CustomerBalance, &out.CustomerFirst, &out.CustomerMiddle, &out.CustomerLast)
		if err != nil {
			return notLoaded(err, "customer %d/%d/%d", input.WarehouseID, input.DistrictID, out.CustomerID)
		}
		var carrier sql.NullInt64
		var entry nullTime
		err = t.queryRow(ctx, "SELECT o_id, o_carrier_id, o_entry_d FROM oorder WHERE o_w_id = ? AND o_d_id = ? AND o_c_id = ? ORDER BY o_id DESC LIMIT 1",
			input.WarehouseID, input.DistrictID, out.CustomerID).Scan(&out.OrderID, &carrier, &entry)
		if err == sql.ErrNoRows {
			return nil
		} else if err != nil {
			return errors.Wrap(err, "select last order")
		}
		out.CarrierID = carrier.Int64
		out.EntryDate = entry.Time
		rows, err := t.query(ctx, "SELECT ol_i_id, ol_supply_w_id, ol_quantity, ol_amount, ol_delivery_d FROM order_line WHERE ol_w_id = ? AND ol_d_id = ? AND ol_o_id = ? ORDER BY ol_number",
			input.WarehouseID, input.DistrictID, out.OrderID)
		if err != nil {
			return errors.Wrap(err, "select order lines")
		}
		defer rows.Close()
		for rows.Next() {
			l := &tx.OrderStatusLineOut{}
			var delivery nullTime
			if err := rows.Scan(&l.ItemID, &l.SupplyWarehouseID, &l.Quantity, &l.Amount, &delivery); err != nil {
				return err
			}
			l.DeliveryDate = delivery.Time
			out.Lines = append(out.Lines, l)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (self *sqlTerminal) Delivery(ctx context.Context, input *tx.Delivery) (*tx.DeliveryOut, error) {
	out := &tx.DeliveryOut{
		WarehouseID: input.WarehouseID,
		CarrierID:   input.CarrierID,
	}
	date := self.dialect.TimeArg(now())
	err := self.inTx(ctx, func(t *sqlTx) error {
		w := input.WarehouseID
		for d := int64(1); d <= model.DistrictsPerWarehouse; d++ {
			var orderID sql.NullInt64
			err := t.queryRow(ctx, "SELECT MIN(no_o_id) FROM new_order WHERE no_w_id = ? AND no_d_id = ?", w, d).
				Scan(&orderID)
			if err != nil {
				return errors.Wrap(err, "select oldest new order")
			}
			if !orderID.Valid {
				continue
			}
			o := orderID.Int64
			if err = t.exec(ctx, "DELETE FROM new_order WHERE no_w_id = ? AND no_d_id = ? AND no_o_id = ?", w, d, o); err != nil {
				return errors.Wrap(err, "delete new order")
			}
			var customer int64
			err = t.queryRow(ctx, "SELECT o_c_id FROM oorder WHERE o_w_id = ? AND o_d_id = ? AND o_id = ?", w, d, o).
				Scan(&customer)
			if err != nil {
				return notLoaded(err, "order %d/%d/%d", w, d, o)
			}
			if err = t.exec(ctx, "UPDATE oorder SET o_carrier_id = ? WHERE o_w_id = ? AND o_d_id = ? AND o_id = ?",
				input.CarrierID, w, d, o); err != nil {
				return errors.Wrap(err, "update order")
			}
			if err = t.exec(ctx, "UPDATE order_line SET ol_delivery_d = ? WHERE ol_w_id = ? AND ol_d_id = ? AND ol_o_id = ?",
				date, w, d, o); err != nil {
				return errors.Wrap(err, "update order lines")
			}
			var amount sql.NullFloat64
			err = t.queryRow(ctx, "SELECT SUM(ol_amount) FROM order_line WHERE ol_w_id = ? AND ol_d_id = ? AND ol_o_id = ?",
				w, d, o).Scan(&amount)
			if err != nil {
				return errors.Wrap(err, "sum order lines")
			}
			if err = t.exec(ctx, "UPDATE customer SET c_balance = c_balance + ?, c_delivery_cnt = c_delivery_cnt + 1 WHERE c_w_id = ? AND c_d_id = ? AND c_id = ?",
				amount.Float64, w, d, customer); err != nil {
				return errors.Wrap(err, "update customer")
			}
			out.Delivered++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (self *sqlTerminal) StockLevel(ctx context.Context, input *tx.StockLevel) (*tx.StockLevelOut, error) {
	out := &tx.StockLevelOut{
		WarehouseID: input.WarehouseID,
		DistrictID:  input.DistrictID,
		Threshold:   input.Threshold,
	}
	err := self.inTx(ctx, func(t *sqlTx) error {
		var next int64
		err := t.queryRow(ctx, "SELECT d_next_o_id FROM district WHERE d_w_id = ? AND d_id = ?",
			input.WarehouseID, input.DistrictID).Scan(&next)
		if err != nil {
			return notLoaded(err, "district %d/%d", input.WarehouseID, input.DistrictID)
		}
		err = t.queryRow(ctx, "SELECT COUNT(DISTINCT s_i_id) FROM order_line, stock WHERE ol_w_id = ? AND ol_d_id = ? AND ol_o_id < ? AND ol_o_id >= ? AND s_w_id = ? AND s_i_id = ol_i_id AND s_quantity < ?",
			input.WarehouseID, input.DistrictID, next, next-stockLevelOrders, input.WarehouseID, input.Threshold).
			Scan(&out.LowStock)
		return errors.Wrap(err, "count low stock")
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (self *sqlTerminal) Close() error {
	return nil
}
