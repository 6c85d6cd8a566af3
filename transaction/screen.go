package transaction

import (
	"fmt"
	"strings"
	"time"

	"github.com/hhkbp2/go-strftime"
)

const (
	TerminalWidth  = 80
	TerminalHeight = 24

	DateTimeFormat = "%d-%m-%Y %H:%M:%S"
	DateFormat     = "%d-%m-%Y"
)

// screen accumulates the lines of an 80x24 terminal screen. Every line is
// padded or cut to the terminal width on rendering and the screen is filled
// up with blank lines.
type screen struct {
	lines []string
}

func newScreen(title string) *screen {
	pad := (TerminalWidth - len(title)) / 2
	return &screen{
		lines: []string{strings.Repeat(" ", pad) + title},
	}
}

func (self *screen) linef(format string, args ...interface{}) {
	self.lines = append(self.lines, fmt.Sprintf(format, args...))
}

func (self *screen) blank() {
	self.lines = append(self.lines, "")
}

// blanksUntil appends blank lines until the screen holds n lines.
func (self *screen) blanksUntil(n int) {
	for len(self.lines) < n {
		self.blank()
	}
}

func fitLine(line string) string {
	if len(line) > TerminalWidth {
		return line[:TerminalWidth]
	}
	return line + strings.Repeat(" ", TerminalWidth-len(line))
}

func (self *screen) String() string {
	lines := make([]string, TerminalHeight)
	for i := range lines {
		if i < len(self.lines) {
			lines[i] = fitLine(self.lines[i])
		} else {
			lines[i] = fitLine("")
		}
	}
	return strings.Join(lines, "\n")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strftime.Format(DateTimeFormat, t)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strftime.Format(DateFormat, t)
}

// formatZip renders a 9 digit zip as XXXXX-XXXX.
func formatZip(zip string) string {
	if len(zip) < 5 {
		return zip
	}
	return zip[:5] + "-" + zip[5:]
}

// formatPhone renders a 16 digit phone as XXXXXX-XXX-XXX-XXXX.
func formatPhone(phone string) string {
	if len(phone) < 12 {
		return phone
	}
	return phone[:6] + "-" + phone[6:9] + "-" + phone[9:12] + "-" + phone[12:]
}

// chunk cuts s in at most n pieces of the given width.
func chunk(s string, width, n int) []string {
	ret := make([]string, n)
	for i := 0; i < n; i++ {
		start := i * width
		if start >= len(s) {
			break
		}
		end := start + width
		if end > len(s) {
			end = len(s)
		}
		ret[i] = s[start:end]
	}
	return ret
}
