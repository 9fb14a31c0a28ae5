// Package metrics holds the Prometheus collectors for collection access.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wunderkammer_lookups_total",
		Help: "oEmbed lookups by lookup kind (direct, indirect) and result (hit, miss, error)",
	}, []string{"kind", "result"})
	QueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wunderkammer_queries_total",
		Help: "Queries issued against unit databases",
	}, []string{"unit", "query"})
	RandomTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wunderkammer_random_total",
		Help: "Random object selections by unit",
	}, []string{"unit"})
	IteratorSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wunderkammer_iterator_skipped_total",
		Help: "Unit databases skipped by enumeration because their cursor failed",
	}, []string{"unit"})
	UnitsRegistered = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wunderkammer_units_registered",
		Help: "Unit databases currently registered",
	})
)

func init() {
	prometheus.MustRegister(LookupsTotal)
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(RandomTotal)
	prometheus.MustRegister(IteratorSkippedTotal)
	prometheus.MustRegister(UnitsRegistered)
}

// Handler serves the registered collectors
func Handler() http.Handler { return promhttp.Handler() }
