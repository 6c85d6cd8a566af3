// Package monitor exposes the progress of a run as prometheus metrics.
package monitor

import (
	"context"
	"io"
	"net/http"

	"github.com/hhkbp2/tpccbench/benchmark"
	"github.com/hhkbp2/tpccbench/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

const (
	DefaultPath = "/prometheus"
)

type Config struct {
	Enable     bool   `yaml:"enable" toml:"enable"`
	ListenAddr string `yaml:"listen_addr" toml:"listen_addr"`
	Path       string `yaml:"path" toml:"path"`
}

type Monitor struct {
	registry *prometheus.Registry
	tpmC     prometheus.Gauge
	tpmTotal prometheus.Gauge
	server   *http.Server
}

// NewMonitor registers the transaction counters and the per minute rates.
// The counters are read on every scrape.
func NewMonitor(counters *benchmark.Counters) *Monitor {
	registry := prometheus.NewRegistry()
	tpmC := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tpmc_new_order",
		Help: "New orders committed per minute in the current phase.",
	})
	tpmTotal := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tpmc_total",
		Help: "Transactions committed per minute in the current phase.",
	})
	registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "tx_new_order",
			Help: "New orders committed since the start of the run.",
		}, func() float64 {
			return float64(counters.NewOrders())
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "tx_total",
			Help: "Transactions committed since the start of the run.",
		}, func() float64 {
			return float64(counters.Total())
		}),
		tpmC,
		tpmTotal,
	)
	return &Monitor{
		registry: registry,
		tpmC:     tpmC,
		tpmTotal: tpmTotal,
	}
}

func (self *Monitor) Interim(phase benchmark.Phase, minute int, rate benchmark.Rate) {
	self.tpmC.Set(rate.TpmC)
	self.tpmTotal.Set(rate.TpmTotal)
}

func (self *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(self.registry, promhttp.HandlerOpts{})
}

// Serve starts the metrics endpoint in the background.
func (self *Monitor) Serve(config Config) {
	path := config.Path
	if path == "" {
		path = DefaultPath
	}
	mux := http.NewServeMux()
	mux.Handle(path, self.Handler())
	self.server = &http.Server{
		Addr:    config.ListenAddr,
		Handler: mux,
	}
	go func() {
		log.Infof("Serving metrics on %s%s", config.ListenAddr, path)
		if err := self.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("metrics server: %s", err)
		}
	}()
}

func (self *Monitor) Shutdown(ctx context.Context) error {
	if self.server == nil {
		return nil
	}
	return self.server.Shutdown(ctx)
}

// Dump writes every metric in the text exposition format.
func (self *Monitor) Dump(w io.Writer) error {
	families, err := self.registry.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return errors.Wrap(err, "dump metrics")
		}
	}
	return nil
}
