// Package metrics records per-run statistics in Prometheus form.
//
// edgeshift is a batch tool, so instead of serving /metrics the counters are
// written to a textfile for the node_exporter textfile collector.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/edgeshift/edgeshift/internal/store"
)

// RunStats accumulates counters over one scan.
type RunStats struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	fetchErrors *prometheus.CounterVec

	properties   prometheus.Gauge
	hostnames    prometheus.Gauge
	apexes       prometheus.Gauge
	enrollments  prometheus.Gauge
	scanDuration prometheus.Gauge
}

// New creates a RunStats with its own registry.
func New() *RunStats {
	s := &RunStats{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edgeshift",
			Name:      "api_requests_total",
			Help:      "Signed API requests issued, by service.",
		}, []string{"service"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edgeshift",
			Name:      "fetch_errors_total",
			Help:      "Degraded resource fetches, by resource.",
		}, []string{"resource"}),
		properties: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "edgeshift",
			Name:      "properties_total",
			Help:      "Properties discovered in the last run.",
		}),
		hostnames: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "edgeshift",
			Name:      "hostnames_total",
			Help:      "Hostnames discovered in the last run.",
		}),
		apexes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "edgeshift",
			Name:      "apex_domains_total",
			Help:      "Distinct apex domains in the last run.",
		}),
		enrollments: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "edgeshift",
			Name:      "cert_enrollments_total",
			Help:      "CPS enrollments discovered in the last run.",
		}),
		scanDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "edgeshift",
			Name:      "scan_duration_seconds",
			Help:      "Duration of the last scan in seconds.",
		}),
	}

	s.registry.MustRegister(s.apiRequests, s.fetchErrors,
		s.properties, s.hostnames, s.apexes, s.enrollments, s.scanDuration)
	return s
}

// CountRequest records one outbound API request, labeled by the service
// prefix of its path ("papi", "cps", "gtm", ...).
func (s *RunStats) CountRequest(path string) {
	service := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(service, '/'); i > 0 {
		service = service[:i]
	}
	s.apiRequests.WithLabelValues(service).Inc()
}

// ObserveInventory sets the result gauges from a completed inventory.
func (s *RunStats) ObserveInventory(inv *store.Inventory, propertyCount int, duration time.Duration) {
	s.properties.Set(float64(propertyCount))
	s.hostnames.Set(float64(len(inv.Hostnames)))
	s.enrollments.Set(float64(len(inv.Enrollments)))
	s.apexes.Set(float64(len(inv.HostnamesByApex())))
	s.scanDuration.Set(duration.Seconds())

	for resource := range inv.Errors {
		s.fetchErrors.WithLabelValues(resource).Inc()
	}
}

// WriteTextfile writes the current values in Prometheus text format.
func (s *RunStats) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, s.registry)
}
