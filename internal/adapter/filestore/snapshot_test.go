package filestore

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeString(s string) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	}
}

func TestAtomicWriteCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.dat")

	require.NoError(t, atomicWrite(path, writeString("first\n")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(got))

	// No backup until a second write replaces the first.
	_, err = os.Stat(path + BackupSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestAtomicWriteKeepsBackupOfPreviousContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.dat")

	require.NoError(t, atomicWrite(path, writeString("first\n")))
	require.NoError(t, atomicWrite(path, writeString("second\n")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(got))

	backup, err := os.ReadFile(path + BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(backup))
}

func TestAtomicWriteFailureLeavesTargetIntact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "accounts.dat")
	require.NoError(t, atomicWrite(path, writeString("first\n")))

	boom := errors.New("serialization failed")
	err := atomicWrite(path, func(io.Writer) error { return boom })
	require.Error(t, err)

	// Original content untouched, temp file cleaned up.
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(got))

	_, err = os.Stat(path + tempSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestReadLinesMissingFile(t *testing.T) {
	called := false
	err := readLines(filepath.Join(t.TempDir(), "nope.dat"), zerolog.Nop(), func(string) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestReadLinesSkipsEmptyAndBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.dat")
	require.NoError(t, os.WriteFile(path, []byte("good\n\nbad\ngood\n"), 0o644))

	var kept []string
	err := readLines(path, zerolog.Nop(), func(line string) error {
		if line == "bad" {
			return errors.New("malformed")
		}
		kept = append(kept, line)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"good", "good"}, kept)
}
