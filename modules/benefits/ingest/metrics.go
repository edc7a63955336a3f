package ingest

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	rowsTotal    *prometheus.CounterVec
	batchesTotal *prometheus.CounterVec
}

// Metrics returns the process-wide ingestion counters. promauto panics
// on double registration, hence the singleton.
var Metrics = sync.OnceValue(func() *metrics {
	return &metrics{
		rowsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "benefits",
			Subsystem: "ingest",
			Name:      "rows_total",
			Help:      "Processed upload rows by flow, action and outcome.",
		}, []string{"flow", "action", "outcome"}),
		batchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "benefits",
			Subsystem: "ingest",
			Name:      "batches_total",
			Help:      "Finished batches by flow and terminal status.",
		}, []string{"flow", "status"}),
	}
})

func (m *metrics) observeRow(flow, action string, o Outcome) {
	m.rowsTotal.WithLabelValues(flow, action, string(o.Kind)).Inc()
}

func (m *metrics) observeBatch(flow, status string) {
	m.batchesTotal.WithLabelValues(flow, status).Inc()
}
