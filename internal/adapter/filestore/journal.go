package filestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/infrastructure/metrics"
)

// JournalStore keeps one append-only file of ledger entry lines per
// account. Lines are never rewritten; replay tolerates and skips
// corrupted lines so a crash-time partial write cannot block startup.
type JournalStore struct {
	dir     string
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewJournalStore creates a JournalStore rooted at dir.
func NewJournalStore(dir string, log zerolog.Logger, m *metrics.Metrics) *JournalStore {
	return &JournalStore{dir: dir, log: log, metrics: m}
}

func (s *JournalStore) path(accountNo int64) string {
	return filepath.Join(s.dir, "transactions_"+strconv.FormatInt(accountNo, 10)+".txt")
}

// Append writes one entry line and flushes it to disk before returning.
// The durability contract depends on this completing inside the same
// call that mutated the balance.
func (s *JournalStore) Append(accountNo int64, entry domain.Entry) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating journal directory: %v", domain.ErrDataIntegrity, err)
	}

	file, err := os.OpenFile(s.path(accountNo), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("%w: opening journal for account %d: %v", domain.ErrDataIntegrity, accountNo, err)
	}
	defer file.Close()

	if _, err := file.WriteString(entry.Line() + "\n"); err != nil {
		return fmt.Errorf("%w: appending to journal for account %d: %v", domain.ErrDataIntegrity, accountNo, err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("%w: flushing journal for account %d: %v", domain.ErrDataIntegrity, accountNo, err)
	}

	if s.metrics != nil {
		s.metrics.EntriesAppended.WithLabelValues(string(entry.Kind)).Inc()
	}

	return nil
}

// Replay reads every valid entry for the account in original order.
// A missing journal means a new account: empty result, no error.
func (s *JournalStore) Replay(accountNo int64) ([]domain.Entry, error) {
	var entries []domain.Entry

	err := readLines(s.path(accountNo), s.log, func(line string) error {
		entry, err := domain.ParseEntryLine(line)
		if err != nil {
			if s.metrics != nil {
				s.metrics.CorruptLinesSkipped.Inc()
			}
			return err
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}
