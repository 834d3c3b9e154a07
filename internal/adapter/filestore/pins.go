package filestore

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iho/bankcore/internal/infrastructure/auth"
)

// PinsFile is the snapshot file holding per-account PIN credentials.
const PinsFile = "pins_secure.dat"

// PinStore persists PIN credentials atomically, one acc|hash|salt line
// each. Implements auth.CredentialStore.
type PinStore struct {
	path string
	log  zerolog.Logger
}

// NewPinStore creates a PinStore under dir.
func NewPinStore(dir string, log zerolog.Logger) *PinStore {
	return &PinStore{path: filepath.Join(dir, PinsFile), log: log}
}

// SaveAll rewrites the PIN snapshot atomically.
func (s *PinStore) SaveAll(records []auth.Credential) error {
	return atomicWrite(s.path, func(w io.Writer) error {
		for _, r := range records {
			line := strings.Join([]string{
				strconv.FormatInt(r.AccountNo, 10), r.Hash, r.Salt,
			}, "|")
			if _, err := io.WriteString(w, line+"\n"); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadAll reads the PIN snapshot, skipping malformed lines with a warning.
func (s *PinStore) LoadAll() ([]auth.Credential, error) {
	var records []auth.Credential

	err := readLines(s.path, s.log, func(line string) error {
		fields := strings.Split(line, "|")
		if len(fields) != 3 {
			return fmt.Errorf("pin line has %d fields, want 3", len(fields))
		}
		accountNo, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad account number %q: %w", fields[0], err)
		}
		records = append(records, auth.Credential{AccountNo: accountNo, Hash: fields[1], Salt: fields[2]})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}
