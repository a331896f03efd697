package poller

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the service's Prometheus instruments. They stay unregistered
// until the caller wires a Registerer, so tests can run many Services without
// duplicate-registration panics.
type metrics struct {
	cycles            prometheus.Counter
	cycleDuration     prometheus.Gauge
	probeFailures     prometheus.Counter
	serversConfigured prometheus.Gauge
	serversOnline     prometheus.Gauge
}

func newMetrics() *metrics {
	return &metrics{
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mcserverlist_poll_cycles_total",
			Help: "Completed poll cycles.",
		}),
		cycleDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mcserverlist_poll_cycle_duration_seconds",
			Help: "Wall-clock duration of the last poll cycle.",
		}),
		probeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mcserverlist_probe_failures_total",
			Help: "Probes that ended in an error and were classified offline.",
		}),
		serversConfigured: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mcserverlist_servers_configured",
			Help: "Servers in the list at the last completed cycle.",
		}),
		serversOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mcserverlist_servers_online",
			Help: "Servers that answered their probe in the last cycle.",
		}),
	}
}

func (m *metrics) cycleDone(configured, online int, took time.Duration) {
	m.cycles.Inc()
	m.cycleDuration.Set(took.Seconds())
	m.serversConfigured.Set(float64(configured))
	m.serversOnline.Set(float64(online))
}

func (m *metrics) probeFailed() {
	m.probeFailures.Inc()
}

// Register attaches the service's collectors to reg.
func (s *Service) Register(reg prometheus.Registerer) {
	reg.MustRegister(
		s.metrics.cycles,
		s.metrics.cycleDuration,
		s.metrics.probeFailures,
		s.metrics.serversConfigured,
		s.metrics.serversOnline,
	)
}
