package binding

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hhkbp2/go-strftime"
	"github.com/pkg/errors"
)

const (
	sqlTimeFormat = "%Y-%m-%d %H:%M:%S"
)

// Dialect holds what differs between the SQL databases we speak to.
type Dialect struct {
	Name string
	// TimestampType is the column type of dates.
	TimestampType string
	// ForUpdate is appended to the selects of rows about to be updated.
	ForUpdate          string
	DollarPlaceholders bool
	ForeignKeys        bool
	// MaxOpenConns caps every pool when positive.
	MaxOpenConns int
	// TextTimes passes dates as formatted text rather than time.Time.
	TextTimes bool
	// DataSource turns a configured data source into one the driver takes.
	DataSource func(dsn string, conn *Connection) (string, error)
	Open       func(dsn string) (*sql.DB, error)
}

// Rebind rewrites ? placeholders for the dialect.
func (self *Dialect) Rebind(query string) string {
	if !self.DollarPlaceholders {
		return query
	}
	var buf strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&buf, "$%d", n)
		} else {
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

func (self *Dialect) TimeArg(t time.Time) interface{} {
	if self.TextTimes {
		return strftime.Format(sqlTimeFormat, t)
	}
	return t
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// nullTime scans a date whatever the driver hands over.
type nullTime struct {
	Time time.Time
}

func (self *nullTime) Scan(v interface{}) error {
	switch x := v.(type) {
	case nil:
		self.Time = time.Time{}
	case time.Time:
		self.Time = x
	case []byte:
		return self.parse(string(x))
	case string:
		return self.parse(x)
	default:
		return errors.Errorf("unsupported date value %T", v)
	}
	return nil
}

func (self *nullTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			self.Time = t
			return nil
		}
	}
	return errors.Errorf("unsupported date format %q", s)
}
