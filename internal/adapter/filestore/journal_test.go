package filestore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankcore/internal/domain"
)

func testEntry(id string, kind domain.EntryKind, amount, after domain.Money) domain.Entry {
	return domain.Entry{
		ID:           id,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: after,
		Timestamp:    time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		Memo:         "test entry",
	}
}

func TestJournalAppendReplayRoundTrip(t *testing.T) {
	store := NewJournalStore(t.TempDir(), zerolog.Nop(), nil)

	first := testEntry("01A", domain.EntryDeposit, 5_000, 15_000)
	second := testEntry("01B", domain.EntryWithdrawal, 2_000, 13_000)
	require.NoError(t, store.Append(100001, first))
	require.NoError(t, store.Append(100001, second))

	entries, err := store.Replay(100001)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first, entries[0])
	assert.Equal(t, second, entries[1])
}

func TestJournalReplayMissingFile(t *testing.T) {
	store := NewJournalStore(t.TempDir(), zerolog.Nop(), nil)

	entries, err := store.Replay(999999)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestJournalReplaySkipsCorruptLines(t *testing.T) {
	dir := t.TempDir()
	store := NewJournalStore(dir, zerolog.Nop(), nil)

	require.NoError(t, store.Append(100001, testEntry("01A", domain.EntryDeposit, 5_000, 5_000)))

	// Simulate a crash-time partial write in the middle of the file.
	path := filepath.Join(dir, "transactions_100001.txt")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("garbage|not|a\nvalid|entry\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, store.Append(100001, testEntry("01B", domain.EntryDeposit, 1_000, 6_000)))

	entries, err := store.Replay(100001)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "01A", entries[0].ID)
	assert.Equal(t, "01B", entries[1].ID)
}

func TestJournalIsolatesAccounts(t *testing.T) {
	store := NewJournalStore(t.TempDir(), zerolog.Nop(), nil)

	require.NoError(t, store.Append(100001, testEntry("01A", domain.EntryDeposit, 1_000, 1_000)))
	require.NoError(t, store.Append(100002, testEntry("01B", domain.EntryDeposit, 2_000, 2_000)))

	a, err := store.Replay(100001)
	require.NoError(t, err)
	b, err := store.Replay(100002)
	require.NoError(t, err)
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, domain.Money(1_000), a[0].Amount)
	assert.Equal(t, domain.Money(2_000), b[0].Amount)
}
