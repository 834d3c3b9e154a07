// Package filestore persists the ledger to flat files: append-only
// per-account journals plus whole-file snapshots of the account, user and
// PIN collections. Snapshots are written atomically (temp file, backup of
// the previous content, rename), so the target path always holds either
// the old complete content or the new complete content.
package filestore

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/iho/bankcore/internal/domain"
)

// BackupSuffix is appended to the prior snapshot when a new one replaces it.
const BackupSuffix = ".backup"

const tempSuffix = ".tmp"

// atomicWrite writes via a temp file, renames any existing target to
// path+".backup" (replacing an older backup), then renames temp onto the
// target. On failure the temp file is removed and the prior target is
// left untouched.
func atomicWrite(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: creating directory for %s: %v", domain.ErrDataIntegrity, path, err)
	}

	tempPath := path + tempSuffix
	temp, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: cannot create temporary file %s: %v", domain.ErrDataIntegrity, tempPath, err)
	}

	if err := write(temp); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("%w: writing %s: %v", domain.ErrDataIntegrity, tempPath, err)
	}

	if err := temp.Sync(); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("%w: syncing %s: %v", domain.ErrDataIntegrity, tempPath, err)
	}

	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("%w: closing %s: %v", domain.ErrDataIntegrity, tempPath, err)
	}

	if _, err := os.Stat(path); err == nil {
		backupPath := path + BackupSuffix
		os.Remove(backupPath)
		if err := os.Rename(path, backupPath); err != nil {
			os.Remove(tempPath)
			return fmt.Errorf("%w: backing up %s: %v", domain.ErrDataIntegrity, path, err)
		}
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("%w: renaming %s into place: %v", domain.ErrDataIntegrity, tempPath, err)
	}

	return nil
}

// readLines feeds each non-empty line of the file to parse. A missing
// file yields no lines and no error; a malformed line is skipped with a
// warning, never a failure.
func readLines(path string, log zerolog.Logger, parse func(line string) error) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := parse(line); err != nil {
			log.Warn().Str("file", path).Str("line", line).Err(err).
				Msg("skipped corrupted record")
		}
	}

	return scanner.Err()
}
