package server

import (
	"net/http"
	"time"

	"github.com/alfredjeanlab/trackline/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "trackline"

// trackline_routes_total result labels.
const (
	resultCreated        = "created"
	resultInvalid        = "invalid"
	resultUnknownStation = "unknown_station"
	resultNoPath         = "no_path"
	resultError          = "error"
)

// Metrics holds the Prometheus collectors for route planning and statistics.
type Metrics struct {
	registry *prometheus.Registry

	routesTotal      *prometheus.CounterVec
	searchDuration   prometheus.Histogram
	graphLinks       prometheus.Gauge
	statsQueryTotals *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		routesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "routes_total",
			Help:      "Route requests by outcome",
		}, []string{"result"}),
		searchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "shortest_path_duration_seconds",
			Help:      "Time spent in shortest-path search",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		graphLinks: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "graph_links",
			Help:      "Links in the most recent graph snapshot",
		}),
		statsQueryTotals: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stats_queries_total",
			Help:      "Distance statistics queries by grouping",
		}, []string{"group_by"}),
	}
}

// ObserveSearch records one shortest-path search over a graph of links edges.
func (m *Metrics) ObserveSearch(links int, elapsed time.Duration) {
	m.graphLinks.Set(float64(links))
	m.searchDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) countRoute(result string) {
	m.routesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) countStatsQuery(groupBy model.GroupBy) {
	m.statsQueryTotals.WithLabelValues(groupBy.String()).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
