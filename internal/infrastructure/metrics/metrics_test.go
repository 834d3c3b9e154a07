package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/bankcore/internal/infrastructure/metrics"
)

func TestNewRegistersCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.AccountsOpened.Inc()
	m.EntriesAppended.WithLabelValues("DEPOSIT").Inc()
	m.EntriesAppended.WithLabelValues("DEPOSIT").Inc()
	m.TransfersRolledBack.Inc()

	if got := testutil.ToFloat64(m.AccountsOpened); got != 1 {
		t.Errorf("accounts opened = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.EntriesAppended.WithLabelValues("DEPOSIT")); got != 2 {
		t.Errorf("deposit entries = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.TransfersRolledBack); got != 1 {
		t.Errorf("rollbacks = %v, want 1", got)
	}
}

func TestSeparateRegistries(t *testing.T) {
	// Two instances on private registries must not collide.
	a := metrics.New(prometheus.NewRegistry())
	b := metrics.New(prometheus.NewRegistry())

	a.SnapshotWrites.Inc()
	if got := testutil.ToFloat64(b.SnapshotWrites); got != 0 {
		t.Errorf("expected isolated registries, got %v", got)
	}
}
