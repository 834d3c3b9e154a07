package filestore

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/bankcore/internal/domain"
)

// UsersFile is the snapshot file holding user credentials and ownership.
const UsersFile = "users_secure.dat"

// UserStore persists the user collection atomically, one line per user:
// username|password_hash|salt|role_int|created|last_login[|account]*
type UserStore struct {
	path string
	log  zerolog.Logger
}

// NewUserStore creates a UserStore under dir.
func NewUserStore(dir string, log zerolog.Logger) *UserStore {
	return &UserStore{path: filepath.Join(dir, UsersFile), log: log}
}

// SaveAll rewrites the snapshot with every user, atomically.
func (s *UserStore) SaveAll(users []*domain.User) error {
	return atomicWrite(s.path, func(w io.Writer) error {
		for _, u := range users {
			if _, err := io.WriteString(w, serializeUser(u)+"\n"); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadAll reads the snapshot, skipping malformed lines with a warning.
func (s *UserStore) LoadAll() ([]*domain.User, error) {
	var users []*domain.User

	err := readLines(s.path, s.log, func(line string) error {
		u, err := parseUserLine(line)
		if err != nil {
			return err
		}
		users = append(users, u)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("count", len(users)).Msg("loaded users from snapshot")
	return users, nil
}

func serializeUser(u *domain.User) string {
	fields := []string{
		u.Username,
		u.HashedPassword,
		u.Salt,
		strconv.Itoa(int(u.Role)),
		strconv.FormatInt(u.CreatedAt.Unix(), 10),
		strconv.FormatInt(u.LastLogin.Unix(), 10),
	}
	for _, acc := range u.Accounts {
		fields = append(fields, strconv.FormatInt(acc, 10))
	}
	return strings.Join(fields, "|")
}

func parseUserLine(line string) (*domain.User, error) {
	fields := strings.Split(line, "|")
	if len(fields) < 6 {
		return nil, fmt.Errorf("user line has %d fields, want at least 6", len(fields))
	}

	role, err := strconv.Atoi(fields[3])
	if err != nil || !domain.Role(role).IsValid() {
		return nil, fmt.Errorf("bad role %q", fields[3])
	}

	created, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad created timestamp %q: %w", fields[4], err)
	}

	lastLogin, err := strconv.ParseInt(fields[5], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad last login timestamp %q: %w", fields[5], err)
	}

	u := &domain.User{
		Username:       fields[0],
		HashedPassword: fields[1],
		Salt:           fields[2],
		Role:           domain.Role(role),
		CreatedAt:      time.Unix(created, 0).UTC(),
		LastLogin:      time.Unix(lastLogin, 0).UTC(),
	}

	for _, f := range fields[6:] {
		accountNo, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad owned account %q: %w", f, err)
		}
		u.Accounts = append(u.Accounts, accountNo)
	}

	return u, nil
}
