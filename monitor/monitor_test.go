package monitor

import (
	"bytes"
	"github.com/hhkbp2/testify/require"
	"github.com/hhkbp2/tpccbench/benchmark"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMonitorMetrics(t *testing.T) {
	counters := benchmark.NewCounters()
	counters.AddTotal()
	counters.AddTotal()
	counters.AddNewOrder()
	m := NewMonitor(counters)
	m.Interim(benchmark.PhaseBaking, 1, benchmark.Rate{TpmC: 12, TpmTotal: 30})

	var buf bytes.Buffer
	require.Nil(t, m.Dump(&buf))
	out := buf.String()
	require.True(t, strings.Contains(out, "tx_new_order 1\n"))
	require.True(t, strings.Contains(out, "tx_total 2\n"))
	require.True(t, strings.Contains(out, "tpmc_new_order 12\n"))
	require.True(t, strings.Contains(out, "tpmc_total 30\n"))
}

func TestMonitorHandler(t *testing.T) {
	counters := benchmark.NewCounters()
	m := NewMonitor(counters)
	server := httptest.NewServer(m.Handler())
	defer server.Close()

	counters.AddTotal()
	resp, err := server.Client().Get(server.URL + DefaultPath)
	require.Nil(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.Nil(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.True(t, strings.Contains(string(body), "tx_total 1"))
}
