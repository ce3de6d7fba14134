package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_IndependentRegistries(t *testing.T) {
	// Two collectors on separate registries must not collide
	first := New(prometheus.NewRegistry())
	second := New(prometheus.NewRegistry())

	first.LookupsTotal.WithLabelValues("query", "success").Inc()

	if got := testutil.ToFloat64(first.LookupsTotal.WithLabelValues("query", "success")); got != 1 {
		t.Errorf("expected 1 lookup on first registry, got %v", got)
	}
	if got := testutil.ToFloat64(second.LookupsTotal.WithLabelValues("query", "success")); got != 0 {
		t.Errorf("expected 0 lookups on second registry, got %v", got)
	}
}

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.LookupsInFlight.Inc()
	m.HTTPRateLimited.Inc()

	count, err := testutil.GatherAndCount(reg, "tracker_lookups_in_flight", "http_rate_limited_total")
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 series, got %d", count)
	}
}
