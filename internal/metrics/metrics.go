// Package metrics exposes Prometheus instruments for sessions, the solver
// and the SSH gateway. Everything registers on the default registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lattice"

var (
	// sessionsStarted counts controllers created.
	sessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "started_total",
		Help:      "Total player sessions started",
	})

	// sessionsActive tracks connections currently served by the gateway.
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "active",
		Help:      "Player sessions currently connected",
	})

	// presses counts indicator presses across all sessions.
	presses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "puzzle",
		Name:      "presses_total",
		Help:      "Total indicator presses",
	})

	// hints counts hint requests that produced a button.
	hints = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "puzzle",
		Name:      "hints_total",
		Help:      "Total hints handed out",
	})

	// solved counts solved puzzles.
	// Labels: method (pressed, debug)
	solved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "puzzle",
		Name:      "solved_total",
		Help:      "Total puzzles solved",
	}, []string{"method"})

	// submissions counts confirm attempts on the email form.
	// Labels: result (ok, invalid, error)
	submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "email",
		Name:      "submissions_total",
		Help:      "Email confirm attempts by result",
	}, []string{"result"})

	solveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "solver",
		Name:      "latency_seconds",
		Help:      "Shortest-path search latency in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	})

	solveNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "solver",
		Name:      "expanded_nodes",
		Help:      "Edges expanded per search",
		Buckets:   prometheus.ExponentialBuckets(6, 4, 8),
	})

	// gatewayRejected counts connections turned away before a session starts.
	// Labels: reason (rate, capacity, handshake)
	gatewayRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "rejected_total",
		Help:      "Connections rejected by the SSH gateway",
	}, []string{"reason"})
)

func SessionStarted() { sessionsStarted.Inc() }

func ConnectionOpened() { sessionsActive.Inc() }

func ConnectionClosed() { sessionsActive.Dec() }

func Press() { presses.Inc() }

func Hint() { hints.Inc() }

// Solved records a finished puzzle; method is "pressed" or "debug".
func Solved(method string) { solved.WithLabelValues(method).Inc() }

// Submission records a confirm attempt; result is "ok", "invalid" or "error".
func Submission(result string) { submissions.WithLabelValues(result).Inc() }

func ObserveSolve(d time.Duration, nodes int) {
	solveLatency.Observe(d.Seconds())
	solveNodes.Observe(float64(nodes))
}

// GatewayRejected records a refused connection; reason is "rate",
// "capacity" or "handshake".
func GatewayRejected(reason string) { gatewayRejected.WithLabelValues(reason).Inc() }
