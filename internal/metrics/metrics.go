// Package metrics exposes Prometheus counters for the engine's hot paths.
// A nil *Metrics is valid and records nothing, so library users who do not
// run a metrics endpoint pay no wiring cost.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "whisper"

// Metrics counts protocol-level events.
type Metrics struct {
	sealed         prometheus.Counter
	opened         prometheus.Counter
	replayRejected prometheus.Counter
	staleRejected  prometheus.Counter
	authFailures   prometheus.Counter
	rotations      prometheus.Counter
}

// New registers the engine counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sealed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "envelopes_sealed_total",
			Help: "Envelopes produced by encryption.",
		}),
		opened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "envelopes_opened_total",
			Help: "Envelopes decrypted successfully.",
		}),
		replayRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "replays_rejected_total",
			Help: "Envelopes rejected as replays.",
		}),
		staleRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "stale_rejected_total",
			Help: "Envelopes rejected for timestamps outside the freshness window.",
		}),
		authFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "auth_failures_total",
			Help: "AEAD authentication failures on decrypt.",
		}),
		rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "identity_rotations_total",
			Help: "Completed identity key rotations.",
		}),
	}
	reg.MustRegister(m.sealed, m.opened, m.replayRejected, m.staleRejected, m.authFailures, m.rotations)
	return m
}

func (m *Metrics) IncSealed() {
	if m != nil {
		m.sealed.Inc()
	}
}

func (m *Metrics) IncOpened() {
	if m != nil {
		m.opened.Inc()
	}
}

func (m *Metrics) IncReplayRejected() {
	if m != nil {
		m.replayRejected.Inc()
	}
}

func (m *Metrics) IncStaleRejected() {
	if m != nil {
		m.staleRejected.Inc()
	}
}

func (m *Metrics) IncAuthFailure() {
	if m != nil {
		m.authFailures.Inc()
	}
}

func (m *Metrics) IncRotation() {
	if m != nil {
		m.rotations.Inc()
	}
}
