// Package metrics records decode results as Prometheus metrics and exports
// them in the node exporter textfile format.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"rhctview/internal/rhct"
)

const (
	resultOK                = "ok"
	resultInvalidNodeLength = "invalid_node_length"
	resultTruncated         = "truncated"
	resultError             = "error"
)

// Metrics holds the decode metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	tablesTotal    *prometheus.CounterVec
	nodesTotal     *prometheus.CounterVec
	errorsTotal    prometheus.Counter
	decodeDuration prometheus.Histogram
	tableBytes     *prometheus.GaugeVec
	timeBase       *prometheus.GaugeVec
}

// New creates and registers all decode metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		tablesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rhctview",
				Name:      "tables_decoded_total",
				Help:      "Tables decoded, by result.",
			},
			[]string{"result"},
		),

		nodesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rhctview",
				Name:      "nodes_decoded_total",
				Help:      "Nodes decoded, by node type.",
			},
			[]string{"type"},
		),

		errorsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "rhctview",
				Name:      "table_errors_total",
				Help:      "Errors counted while checking and decoding tables.",
			},
		),

		decodeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "rhctview",
				Name:      "decode_duration_seconds",
				Help:      "Time spent decoding a table.",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
		),

		tableBytes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "rhctview",
				Name:      "table_length_bytes",
				Help:      "Declared length of each decoded table.",
			},
			[]string{"path"},
		),

		timeBase: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "rhctview",
				Name:      "time_base_frequency_hertz",
				Help:      "Time base frequency advertised by each decoded table.",
			},
			[]string{"path"},
		),
	}
}

// Registry returns the registry the metrics live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveDecode records one call to rhct.Decoder.Decode for the table read
// from path. tbl may be nil when the decode failed before the walk.
func (m *Metrics) ObserveDecode(path string, tbl *rhct.Table, err error, elapsed time.Duration) {
	m.tablesTotal.WithLabelValues(result(err)).Inc()
	m.decodeDuration.Observe(elapsed.Seconds())
	if tbl == nil {
		return
	}
	m.tableBytes.WithLabelValues(path).Set(float64(tbl.Header.Length))
	m.timeBase.WithLabelValues(path).Set(float64(tbl.Header.TimeBaseFrequency))
	for _, n := range tbl.Nodes {
		m.nodesTotal.WithLabelValues(n.Type.String()).Inc()
	}
}

// AddErrors adds n counted table errors.
func (m *Metrics) AddErrors(n uint64) {
	m.errorsTotal.Add(float64(n))
}

// WriteTextfile writes every metric to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

func result(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, rhct.ErrInvalidNodeLength):
		return resultInvalidNodeLength
	case errors.Is(err, rhct.ErrTableTruncated):
		return resultTruncated
	default:
		return resultError
	}
}
