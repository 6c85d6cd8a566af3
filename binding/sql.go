package binding

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/hhkbp2/tpccbench/loader"
	"github.com/hhkbp2/tpccbench/log"
	"github.com/hhkbp2/tpccbench/model"
	"github.com/hhkbp2/tpccbench/sut"
	"github.com/pkg/errors"
)

var (
	tableNames = []string{
		"warehouse", "district", "customer", "history", "item",
		"stock", "oorder", "new_order", "order_line",
	}

	createTables = []string{
		`CREATE TABLE warehouse (
  w_id INT NOT NULL,
  w_ytd DECIMAL(12, 2),
  w_tax DECIMAL(4, 4),
  w_name VARCHAR(10),
  w_street_1 VARCHAR(20),
  w_street_2 VARCHAR(20),
  w_city VARCHAR(20),
  w_state CHAR(2),
  w_zip CHAR(9),
  PRIMARY KEY (w_id)
)`,
		`CREATE TABLE district (
  d_id INT NOT NULL,
  d_w_id INT NOT NULL,
  d_ytd DECIMAL(12, 2),
  d_tax DECIMAL(4, 4),
  d_next_o_id INT,
  d_name VARCHAR(10),
  d_street_1 VARCHAR(20),
  d_street_2 VARCHAR(20),
  d_city VARCHAR(20),
  d_state CHAR(2),
  d_zip CHAR(9),
  PRIMARY KEY (d_w_id, d_id)
)`,
		`CREATE TABLE customer (
  c_id INT NOT NULL,
  c_d_id INT NOT NULL,
  c_w_id INT NOT NULL,
  c_first VARCHAR(16),
  c_middle CHAR(2),
  c_last VARCHAR(16),
  c_street_1 VARCHAR(20),
  c_street_2 VARCHAR(20),
  c_city VARCHAR(20),
  c_state CHAR(2),
  c_zip CHAR(9),
  c_phone CHAR(16),
  c_since %[1]s,
  c_credit CHAR(2),
  c_credit_lim DECIMAL(12, 2),
  c_discount DECIMAL(4, 4),
  c_balance DECIMAL(12, 2),
  c_ytd_payment DECIMAL(12, 2),
  c_payment_cnt INT,
  c_delivery_cnt INT,
  c_data VARCHAR(500),
  PRIMARY KEY (c_w_id, c_d_id, c_id)
)`,
		`CREATE TABLE history (
  h_c_id INT,
  h_c_d_id INT,
  h_c_w_id INT,
  h_d_id INT,
  h_w_id INT,
  h_date %[1]s,
  h_amount DECIMAL(6, 2),
  h_data VARCHAR(24)
)`,
		`CREATE TABLE item (
  i_id INT NOT NULL,
  i_im_id INT,
  i_name VARCHAR(24),
  i_price DECIMAL(5, 2),
  i_data VARCHAR(50),
  PRIMARY KEY (i_id)
)`,
		`CREATE TABLE stock (
  s_i_id INT NOT NULL,
  s_w_id INT NOT NULL,
  s_quantity INT,
  s_dist_01 CHAR(24),
  s_dist_02 CHAR(24),
  s_dist_03 CHAR(24),
  s_dist_04 CHAR(24),
  s_dist_05 CHAR(24),
  s_dist_06 CHAR(24),
  s_dist_07 CHAR(24),
  s_dist_08 CHAR(24),
  s_dist_09 CHAR(24),
  s_dist_10 CHAR(24),
  s_ytd BIGINT,
  s_order_cnt INT,
  s_remote_cnt INT,
  s_data VARCHAR(50),
  PRIMARY KEY (s_w_id, s_i_id)
)`,
		`CREATE TABLE oorder (
  o_id INT NOT NULL,
  o_w_id INT NOT NULL,
  o_d_id INT NOT NULL,
  o_c_id INT,
  o_carrier_id INT,
  o_ol_cnt INT,
  o_all_local INT,
  o_entry_d %[1]s,
  PRIMARY KEY (o_w_id, o_d_id, o_id)
)`,
		`CREATE TABLE new_order (
  no_w_id INT NOT NULL,
  no_d_id INT NOT NULL,
  no_o_id INT NOT NULL,
  PRIMARY KEY (no_w_id, no_d_id, no_o_id)
)`,
		`CREATE TABLE order_line (
  ol_w_id INT NOT NULL,
  ol_d_id INT NOT NULL,
  ol_o_id INT NOT NULL,
  ol_number INT NOT NULL,
  ol_i_id INT,
  ol_delivery_d %[1]s,
  ol_amount DECIMAL(6, 2),
  ol_supply_w_id INT,
  ol_quantity INT,
  ol_dist_info CHAR(24),
  PRIMARY KEY (ol_w_id, ol_d_id, ol_o_id, ol_number)
)`,
	}

	createIndexes = []string{
		"CREATE INDEX idx_customer_name ON customer (c_w_id, c_d_id, c_last, c_first)",
		"CREATE INDEX idx_order_customer ON oorder (o_w_id, o_d_id, o_c_id, o_id)",
	}

	addForeignKeys = []string{
		"ALTER TABLE district ADD CONSTRAINT fk_district_warehouse FOREIGN KEY (d_w_id) REFERENCES warehouse (w_id)",
		"ALTER TABLE customer ADD CONSTRAINT fk_customer_district FOREIGN KEY (c_w_id, c_d_id) REFERENCES district (d_w_id, d_id)",
		"ALTER TABLE history ADD CONSTRAINT fk_history_customer FOREIGN KEY (h_c_w_id, h_c_d_id, h_c_id) REFERENCES customer (c_w_id, c_d_id, c_id)",
		"ALTER TABLE history ADD CONSTRAINT fk_history_district FOREIGN KEY (h_w_id, h_d_id) REFERENCES district (d_w_id, d_id)",
		"ALTER TABLE stock ADD CONSTRAINT fk_stock_warehouse FOREIGN KEY (s_w_id) REFERENCES warehouse (w_id)",
		"ALTER TABLE stock ADD CONSTRAINT fk_stock_item FOREIGN KEY (s_i_id) REFERENCES item (i_id)",
		"ALTER TABLE oorder ADD CONSTRAINT fk_order_customer FOREIGN KEY (o_w_id, o_d_id, o_c_id) REFERENCES customer (c_w_id, c_d_id, c_id)",
		"ALTER TABLE new_order ADD CONSTRAINT fk_new_order_order FOREIGN KEY (no_w_id, no_d_id, no_o_id) REFERENCES oorder (o_w_id, o_d_id, o_id)",
		"ALTER TABLE order_line ADD CONSTRAINT fk_order_line_order FOREIGN KEY (ol_w_id, ol_d_id, ol_o_id) REFERENCES oorder (o_w_id, o_d_id, o_id)",
		"ALTER TABLE order_line ADD CONSTRAINT fk_order_line_stock FOREIGN KEY (ol_supply_w_id, ol_i_id) REFERENCES stock (s_w_id, s_i_id)",
	}
)

// SQLSut drives a relational database through database/sql. There is one
// pool per connection role, opened on first use.
type SQLSut struct {
	dialect *Dialect
	conn    *Connection
	lock    sync.Mutex
	pools   map[Role]*sql.DB
}

func NewSQLSut(dialect *Dialect, conn *Connection) (*SQLSut, error) {
	if conn.DataSource(RoleBenchmark) == "" {
		return nil, errors.Errorf("no data source for %s", dialect.Name)
	}
	return &SQLSut{
		dialect: dialect,
		conn:    conn,
		pools:   make(map[Role]*sql.DB),
	}, nil
}

func (self *SQLSut) Dialect() *Dialect {
	return self.dialect
}

func (self *SQLSut) pool(role Role) (*sql.DB, error) {
	self.lock.Lock()
	defer self.lock.Unlock()
	if db, ok := self.pools[role]; ok {
		return db, nil
	}
	dsn, err := self.dialect.DataSource(self.conn.DataSource(role), self.conn)
	if err != nil {
		return nil, err
	}
	db, err := self.dialect.Open(dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", self.dialect.Name)
	}
	if self.dialect.MaxOpenConns > 0 {
		db.SetMaxOpenConns(self.dialect.MaxOpenConns)
	}
	self.pools[role] = db
	return db, nil
}

func (self *SQLSut) execAll(ctx context.Context, statements []string) error {
	db, err := self.pool(RoleSchema)
	if err != nil {
		return err
	}
	for _, statement := range statements {
		log.Debugf("%s", statement)
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return errors.Wrapf(err, "execute %q", statement)
		}
	}
	return nil
}

func (self *SQLSut) BuildSchema(ctx context.Context) error {
	statements := make([]string, 0, len(createTables))
	for _, s := range createTables {
		statements = append(statements, fmt.Sprintf(s, self.dialect.TimestampType))
	}
	return self.execAll(ctx, statements)
}

func (self *SQLSut) AfterLoaded(ctx context.Context) error {
	statements := append([]string{}, createIndexes...)
	if self.dialect.ForeignKeys {
		statements = append(statements, addForeignKeys...)
	}
	return self.execAll(ctx, statements)
}

func (self *SQLSut) DestroySchema(ctx context.Context) error {
	statements := make([]string, 0, len(tableNames))
	for i := len(tableNames) - 1; i >= 0; i-- {
		statements = append(statements, "DROP TABLE IF EXISTS "+tableNames[i])
	}
	return self.execAll(ctx, statements)
}

func (self *SQLSut) Terminal(ctx context.Context, id int) (sut.Terminal, error) {
	db, err := self.pool(RoleBenchmark)
	if err != nil {
		return nil, err
	}
	return &sqlTerminal{
		id:      id,
		dialect: self.dialect,
		db:      db,
	}, nil
}

// Loader pins one connection for the lifetime of the loader.
func (self *SQLSut) Loader(ctx context.Context) (sut.Loader, error) {
	db, err := self.pool(RoleLoader)
	if err != nil {
		return nil, err
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "open loader connection")
	}
	return &sqlLoader{conn: conn}, nil
}

func (self *SQLSut) Close() error {
	self.lock.Lock()
	defer self.lock.Unlock()
	var first error
	for role, db := range self.pools {
		if err := db.Close(); err != nil && first == nil {
			first = err
		}
		delete(self.pools, role)
	}
	return first
}

type txExecutor struct {
	tx *sql.Tx
}

func (self txExecutor) Execute(ctx context.Context, statement string) error {
	_, err := self.tx.ExecContext(ctx, statement)
	return err
}

// sqlLoader loads every unit of work in its own transaction so a failed
// warehouse leaves nothing behind.
type sqlLoader struct {
	conn *sql.Conn
}

func (self *sqlLoader) inTx(ctx context.Context, fn func(d *loader.Direct) error) error {
	tx, err := self.conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin load")
	}
	if err := fn(loader.NewDirect(txExecutor{tx}, loader.DefaultBatches())); err != nil {
		tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "commit load")
}

func (self *sqlLoader) LoadItems(ctx context.Context, items *model.ItemGenerator) error {
	return self.inTx(ctx, func(d *loader.Direct) error {
		return d.LoadItems(ctx, items)
	})
}

func (self *sqlLoader) LoadWarehouses(ctx context.Context, warehouses <-chan *model.Warehouse) error {
	return loader.Drain(ctx, warehouses, func(ctx context.Context, w *model.Warehouse) error {
		return self.inTx(ctx, func(d *loader.Direct) error {
			return d.LoadWarehouse(ctx, w)
		})
	})
}

func (self *sqlLoader) Close() error {
	return self.conn.Close()
}
