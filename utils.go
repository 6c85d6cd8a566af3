package tpccbench

import (
	"fmt"
	"strings"
)

// Properties are the -p name=value overrides of the command line.
type Properties map[string]string

func NewProperties() Properties {
	return make(map[string]string)
}

func (self Properties) Get(key string) string {
	v, _ := self[key]
	return v
}

func (self Properties) GetDefault(key string, defaultValue string) string {
	if v, ok := self[key]; ok {
		return v
	}
	return defaultValue
}

func (self Properties) Add(key, value string) {
	self[key] = value
}

func (self Properties) Merge(other map[string]string) {
	for k, v := range other {
		self[k] = v
	}
}

// ParseProperty splits a name=value pair. The value may contain '='.
func ParseProperty(s string) (string, string, bool) {
	i := strings.Index(s, "=")
	if i <= 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

func Printf(format string, args ...interface{}) {
	fmt.Fprintf(OutputDest, format, args...)
}

func Println(format string, args ...interface{}) {
	fmt.Fprintf(OutputDest, format, args...)
	fmt.Fprintln(OutputDest)
}
