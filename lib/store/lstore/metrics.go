package lstore

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"
)

// write modes used as metric label
const (
	modeApply  = "apply"
	modeCommit = "commit"
)

// pendingWrites holds one counter per store name. The counter outlives the store
// handle, because a registered gauge cannot be removed from the global metrics set.
var pendingWrites = xsync.NewMapOf[string, *atomic.Int64]()

// storeMetrics bundles the VictoriaMetrics instruments of one store
type storeMetrics struct {
	writes   map[string]*metrics.Counter // by mode
	errors   map[string]*metrics.Counter // by mode
	duration *metrics.Histogram
	pending  *atomic.Int64
}

func newStoreMetrics(name string) *storeMetrics {
	m := &storeMetrics{
		writes: make(map[string]*metrics.Counter, 2),
		errors: make(map[string]*metrics.Counter, 2),
		duration: metrics.GetOrCreateHistogram(
			fmt.Sprintf(`prefkv_write_duration_seconds{store=%q}`, name)),
	}
	for _, mode := range []string{modeApply, modeCommit} {
		m.writes[mode] = metrics.GetOrCreateCounter(
			fmt.Sprintf(`prefkv_writes_total{store=%q,mode=%q}`, name, mode))
		m.errors[mode] = metrics.GetOrCreateCounter(
			fmt.Sprintf(`prefkv_write_errors_total{store=%q,mode=%q}`, name, mode))
	}

	m.pending, _ = pendingWrites.LoadOrCompute(name, func() *atomic.Int64 {
		c := &atomic.Int64{}
		metrics.GetOrCreateGauge(fmt.Sprintf(`prefkv_pending_writes{store=%q}`, name), func() float64 {
			return float64(c.Load())
		})
		return c
	})

	return m
}

// WritePrometheus writes all store metrics in Prometheus text format to w.
func WritePrometheus(w io.Writer) {
	metrics.WritePrometheus(w, false)
}
