// Package measurement keeps per transaction latency histograms and exports
// them once a run is over.
package measurement

import (
	"fmt"
	"sort"
	"sync"

	"github.com/HdrHistogram/hdrhistogram-go"
)

type Config struct {
	// Percentiles to export, e.g. 90 and 99.
	Percentiles []int64 `yaml:"percentiles" toml:"percentiles"`
	// MaxLatency is the highest trackable latency in microseconds.
	MaxLatency         int64  `yaml:"max_latency_us" toml:"max_latency_us"`
	SignificantFigures int    `yaml:"significant_figures" toml:"significant_figures"`
	Exporter           string `yaml:"exporter" toml:"exporter"`
	// ExportFile is written instead of stdout when set.
	ExportFile string `yaml:"export_file" toml:"export_file"`
}

func DefaultConfig() Config {
	return Config{
		Percentiles:        []int64{90, 95, 99},
		MaxLatency:         60 * 1000 * 1000,
		SignificantFigures: 3,
		Exporter:           "text",
	}
}

// A single measured metric (such as NEW_ORDER latency)
type OneMeasurement interface {
	Measure(latency int64)
	GetName() string
	GetSummary() string
	// Report a return code.
	ReportStatus(status StatusType)
	// Exports the current measurements to a suitable format.
	ExportMeasurements(exporter MeasurementExporter) error
}

type OneMeasurementBase struct {
	Name            string
	MeasureLock     *sync.Mutex
	ReturnCodes     map[StatusType]uint32
	ReturnCodesLock *sync.Mutex
}

func NewOneMeasurementBase(name string) *OneMeasurementBase {
	return &OneMeasurementBase{
		Name:            name,
		MeasureLock:     &sync.Mutex{},
		ReturnCodes:     make(map[StatusType]uint32),
		ReturnCodesLock: &sync.Mutex{},
	}
}

func (self *OneMeasurementBase) GetName() string {
	return self.Name
}

func (self *OneMeasurementBase) ReportStatus(status StatusType) {
	self.ReturnCodesLock.Lock()
	defer self.ReturnCodesLock.Unlock()
	self.ReturnCodes[status]++
}

func (self *OneMeasurementBase) StatusCount(status StatusType) uint32 {
	self.ReturnCodesLock.Lock()
	defer self.ReturnCodesLock.Unlock()
	return self.ReturnCodes[status]
}

func (self *OneMeasurementBase) ExportStatusCounts(exporter MeasurementExporter) error {
	self.ReturnCodesLock.Lock()
	defer self.ReturnCodesLock.Unlock()
	statuses := make([]int, 0, len(self.ReturnCodes))
	for status := range self.ReturnCodes {
		statuses = append(statuses, int(status))
	}
	sort.Ints(statuses)
	for _, s := range statuses {
		status := StatusType(s)
		err := exporter.Write(self.GetName(), fmt.Sprintf("Return=%s", status), self.ReturnCodes[status])
		if err != nil {
			return err
		}
	}
	return nil
}

// Take measurements and maintain a HdrHistogram of a given metric.
type OneMeasurementHdrHistogram struct {
	*OneMeasurementBase
	histogram   *hdrhistogram.Histogram
	percentiles []int64
}

func NewOneMeasurementHdrHistogram(name string, config Config) *OneMeasurementHdrHistogram {
	return &OneMeasurementHdrHistogram{
		OneMeasurementBase: NewOneMeasurementBase(name),
		histogram:          hdrhistogram.New(0, config.MaxLatency, config.SignificantFigures),
		percentiles:        config.Percentiles,
	}
}

// Latency is reported in micros. Values over the trackable maximum are
// clamped to it.
func (self *OneMeasurementHdrHistogram) Measure(latency int64) {
	self.MeasureLock.Lock()
	defer self.MeasureLock.Unlock()

	if self.histogram.RecordValue(latency) != nil {
		self.histogram.RecordValue(self.histogram.HighestTrackableValue())
	}
}

func (self *OneMeasurementHdrHistogram) Count() int64 {
	self.MeasureLock.Lock()
	defer self.MeasureLock.Unlock()
	return self.histogram.TotalCount()
}

func (self *OneMeasurementHdrHistogram) GetSummary() string {
	self.MeasureLock.Lock()
	defer self.MeasureLock.Unlock()
	format := "[%s: Count=%d, Max=%d, Min=%d, Avg=%.2f, 90=%d, 99=%d, 99.9=%d]"
	return fmt.Sprintf(format,
		self.GetName(),
		self.histogram.TotalCount(),
		self.histogram.Max(),
		self.histogram.Min(),
		self.histogram.Mean(),
		self.histogram.ValueAtQuantile(90),
		self.histogram.ValueAtQuantile(99),
		self.histogram.ValueAtQuantile(99.9))
}

var (
	Suffixes = []string{"th", "st", "nd", "rd", "th", "th", "th", "th", "th", "th"}
)

func ordinal(p int64) string {
	switch p % 100 {
	case 11, 12, 13:
		return fmt.Sprintf("%dth", p)
	default:
		return fmt.Sprintf("%d%s", p, Suffixes[p%10])
	}
}

func try(err error) {
	if err != nil {
		panic(err)
	}
}

func catch(err *error) {
	if p := recover(); p != nil {
		if e, ok := p.(error); ok {
			*err = e
			return
		}
		panic(p)
	}
}

func (self *OneMeasurementHdrHistogram) ExportMeasurements(exporter MeasurementExporter) (err error) {
	defer catch(&err)

	self.MeasureLock.Lock()
	defer self.MeasureLock.Unlock()
	name := self.GetName()
	try(exporter.Write(name, "Operations", self.histogram.TotalCount()))
	try(exporter.Write(name, "AverageLatency(us)", self.histogram.Mean()))
	try(exporter.Write(name, "MinLatency(us)", self.histogram.Min()))
	try(exporter.Write(name, "MaxLatency(us)", self.histogram.Max()))

	for _, p := range self.percentiles {
		try(exporter.Write(name, ordinal(p)+"PercentileLatency(us)", self.histogram.ValueAtQuantile(float64(p))))
	}
	try(self.ExportStatusCounts(exporter))
	return
}

// Collects latency measurements per operation, and reports them when
// requested.
type Measurements struct {
	config             Config
	opToMeasurementMap map[string]*OneMeasurementHdrHistogram
	lock               *sync.RWMutex
}

func NewMeasurements(config Config) *Measurements {
	return &Measurements{
		config:             config,
		opToMeasurementMap: make(map[string]*OneMeasurementHdrHistogram),
		lock:               &sync.RWMutex{},
	}
}

// Measure records a single latency, in micros, of the given operation.
func (self *Measurements) Measure(operation string, latency int64) {
	self.getOpMeasurement(operation).Measure(latency)
}

func (self *Measurements) ReportStatus(operation string, status StatusType) {
	self.getOpMeasurement(operation).ReportStatus(status)
}

func (self *Measurements) operations() []string {
	self.lock.RLock()
	defer self.lock.RUnlock()
	ret := make([]string, 0, len(self.opToMeasurementMap))
	for op := range self.opToMeasurementMap {
		ret = append(ret, op)
	}
	sort.Strings(ret)
	return ret
}

func (self *Measurements) GetSummary() string {
	var ret string
	for _, op := range self.operations() {
		ret += self.getOpMeasurement(op).GetSummary()
	}
	return ret
}

func (self *Measurements) ExportMeasurements(exporter MeasurementExporter) (err error) {
	defer catch(&err)
	for _, op := range self.operations() {
		try(self.getOpMeasurement(op).ExportMeasurements(exporter))
	}
	return
}

// Get returns the measurement of an operation, nil if never measured.
func (self *Measurements) Get(operation string) *OneMeasurementHdrHistogram {
	self.lock.RLock()
	defer self.lock.RUnlock()
	return self.opToMeasurementMap[operation]
}

func (self *Measurements) getOpMeasurement(operation string) *OneMeasurementHdrHistogram {
	self.lock.RLock()
	m, ok := self.opToMeasurementMap[operation]
	self.lock.RUnlock()
	if !ok {
		self.lock.Lock()
		defer self.lock.Unlock()
		if m, ok = self.opToMeasurementMap[operation]; !ok {
			m = NewOneMeasurementHdrHistogram(operation, self.config)
			self.opToMeasurementMap[operation] = m
		}
	}
	return m
}
