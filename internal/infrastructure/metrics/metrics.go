package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	AccountsOpened      prometheus.Counter
	EntriesAppended     *prometheus.CounterVec
	CorruptLinesSkipped prometheus.Counter

	// Transfer metrics
	TransfersCreated    prometheus.Counter
	TransfersRolledBack prometheus.Counter

	// Snapshot metrics
	SnapshotWrites prometheus.Counter
	SnapshotErrors prometheus.Counter

	// Authentication metrics
	AuthAttempts    *prometheus.CounterVec
	AccountLockouts prometheus.Counter
}

// New creates and registers all metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AccountsOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_accounts_opened_total",
			Help: "Total number of accounts opened",
		}),
		EntriesAppended: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankcore_journal_entries_total",
				Help: "Total journal entries appended by kind",
			},
			[]string{"kind"},
		),
		CorruptLinesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_corrupt_lines_skipped_total",
			Help: "Total corrupted journal lines skipped during replay",
		}),
		TransfersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_transfers_created_total",
			Help: "Total number of committed transfers",
		}),
		TransfersRolledBack: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_transfers_rolled_back_total",
			Help: "Total number of transfers rolled back",
		}),
		SnapshotWrites: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_snapshot_writes_total",
			Help: "Total atomic snapshot writes",
		}),
		SnapshotErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_snapshot_errors_total",
			Help: "Total failed snapshot writes",
		}),
		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankcore_auth_attempts_total",
				Help: "Total authentication attempts by status",
			},
			[]string{"status"},
		),
		AccountLockouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_account_lockouts_total",
			Help: "Total accounts locked after repeated failed attempts",
		}),
	}
}
