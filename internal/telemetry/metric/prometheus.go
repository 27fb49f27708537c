package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reactorkv"

// Connection close reasons used as the "reason" label.
const (
	ReasonClientClosed  = "client_closed"
	ReasonReadError     = "read_error"
	ReasonProtocolError = "protocol_error"
	ReasonQuit          = "quit"
	ReasonHangup        = "hangup"
	ReasonWriteError    = "write_error"
	ReasonShutdown      = "shutdown"
)

// Registry holds all application metrics.
//
// Every method is safe to call on a nil *Registry.
type Registry struct {
	registry *prometheus.Registry

	// Connection metrics
	ConnectionsAccepted prometheus.Counter
	ConnectionsActive   prometheus.Gauge
	ConnectionsClosed   *prometheus.CounterVec

	// Command metrics
	CommandsTotal  *prometheus.CounterVec
	ProtocolErrors prometheus.Counter

	// Keyspace metrics
	Keys        prometheus.Gauge
	KeysExpired prometheus.Counter

	// Event loop metrics
	ReplyBytesDropped prometheus.Counter
	LoopIterations    prometheus.Counter
}

// NewRegistry creates a registry with the server metrics plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		ConnectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_accepted_total",
			Help:      "Total number of accepted client connections.",
		}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of currently open client connections.",
		}),
		ConnectionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_closed_total",
			Help:      "Total number of closed client connections by reason.",
		}, []string{"reason"}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total number of dispatched commands by name.",
		}, []string{"command"}),
		ProtocolErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_errors_total",
			Help:      "Total number of connections closed for malformed requests.",
		}),
		Keys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "keys",
			Help:      "Number of keys held in the store, including expired keys not yet reclaimed.",
		}),
		KeysExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_expired_total",
			Help:      "Total number of keys removed on access after their deadline.",
		}),
		ReplyBytesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reply_bytes_dropped_total",
			Help:      "Total number of reply bytes the socket did not accept.",
		}),
		LoopIterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loop_iterations_total",
			Help:      "Total number of event loop wake-ups.",
		}),
	}

	reg.MustRegister(
		r.ConnectionsAccepted,
		r.ConnectionsActive,
		r.ConnectionsClosed,
		r.CommandsTotal,
		r.ProtocolErrors,
		r.Keys,
		r.KeysExpired,
		r.ReplyBytesDropped,
		r.LoopIterations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// Handler returns an HTTP handler for the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler exposing this registry.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		Registry: r.registry,
	})
}

// MustRegister adds extra collectors to the registry.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	if r == nil {
		return
	}
	r.registry.MustRegister(cs...)
}

// Gatherer exposes the underlying registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// ConnectionOpened records an accepted connection.
func (r *Registry) ConnectionOpened() {
	if r == nil {
		return
	}
	r.ConnectionsAccepted.Inc()
	r.ConnectionsActive.Inc()
}

// ConnectionClosed records a closed connection.
func (r *Registry) ConnectionClosed(reason string) {
	if r == nil {
		return
	}
	r.ConnectionsActive.Dec()
	r.ConnectionsClosed.WithLabelValues(reason).Inc()
}

// RecordCommand counts one dispatched command.
func (r *Registry) RecordCommand(name string) {
	if r == nil {
		return
	}
	r.CommandsTotal.WithLabelValues(name).Inc()
}

// IncProtocolErrors counts a connection dropped for a protocol error.
func (r *Registry) IncProtocolErrors() {
	if r == nil {
		return
	}
	r.ProtocolErrors.Inc()
}

// SetKeys records the current key count.
func (r *Registry) SetKeys(n int) {
	if r == nil {
		return
	}
	r.Keys.Set(float64(n))
}

// IncKeysExpired counts a key reclaimed on access.
func (r *Registry) IncKeysExpired() {
	if r == nil {
		return
	}
	r.KeysExpired.Inc()
}

// AddReplyBytesDropped counts reply bytes lost to a short write.
func (r *Registry) AddReplyBytesDropped(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.ReplyBytesDropped.Add(float64(n))
}

// IncLoopIterations counts one event loop wake-up.
func (r *Registry) IncLoopIterations() {
	if r == nil {
		return
	}
	r.LoopIterations.Inc()
}
