package loader

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hhkbp2/go-strftime"
	"github.com/hhkbp2/tpccbench/sut"
)

const (
	SQLTimestampFormat = "%Y-%m-%d %H:%M:%S"
)

// batch accumulates the rows of a multi-row INSERT statement.
type batch struct {
	prefix string
	buf    bytes.Buffer
	rows   int
}

func newBatch(table string, columns ...string) *batch {
	return &batch{
		prefix: fmt.Sprintf("INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", ")),
	}
}

func (self *batch) add(values ...string) {
	if self.rows == 0 {
		self.buf.WriteString(self.prefix)
	} else {
		self.buf.WriteByte(',')
	}
	self.buf.WriteByte('(')
	self.buf.WriteString(strings.Join(values, ", "))
	self.buf.WriteByte(')')
	self.rows++
}

// flush executes the pending rows, if any.
func (self *batch) flush(ctx context.Context, exec sut.Executor) error {
	if self.rows == 0 {
		return nil
	}
	err := exec.Execute(ctx, self.buf.String())
	self.buf.Reset()
	self.rows = 0
	return err
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func integer(v int64) string {
	return fmt.Sprintf("%d", v)
}

func decimal(v float64) string {
	return fmt.Sprintf("%.4f", v)
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return "NULL"
	}
	return quote(strftime.Format(SQLTimestampFormat, t))
}

func boolean(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// nullableInt renders 0 as NULL.
func nullableInt(v int64) string {
	if v == 0 {
		return "NULL"
	}
	return integer(v)
}
