package metrics_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"whisper/internal/metrics"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *metrics.Metrics
	m.IncSealed()
	m.IncOpened()
	m.IncReplayRejected()
	m.IncStaleRejected()
	m.IncAuthFailure()
	m.IncRotation()
}

func TestCountersRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.IncSealed()
	m.IncSealed()
	m.IncReplayRejected()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	got := map[string]float64{}
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			got[f.GetName()] = metric.GetCounter().GetValue()
		}
	}

	if got["whisper_envelopes_sealed_total"] != 2 {
		t.Errorf("sealed = %v, want 2", got["whisper_envelopes_sealed_total"])
	}
	if got["whisper_replays_rejected_total"] != 1 {
		t.Errorf("replays = %v, want 1", got["whisper_replays_rejected_total"])
	}
	for name := range got {
		if !strings.HasPrefix(name, "whisper_") {
			t.Errorf("counter %s missing namespace", name)
		}
	}
}
