package usecase

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/infrastructure/auth"
)

// UserUseCase owns the user registry: registration, password
// authentication and user-to-account ownership.
type UserUseCase struct {
	mu    sync.Mutex
	users map[string]*domain.User

	store             UserStore
	clock             domain.Clock
	log               zerolog.Logger
	minPasswordLength int
}

// NewUserUseCase creates a UserUseCase. Call Load before first use.
func NewUserUseCase(store UserStore, clock domain.Clock, log zerolog.Logger, minPasswordLength int) *UserUseCase {
	return &UserUseCase{
		users:             make(map[string]*domain.User),
		store:             store,
		clock:             clock,
		log:               log,
		minPasswordLength: minPasswordLength,
	}
}

// Load restores the registry from the user snapshot.
func (uc *UserUseCase) Load() error {
	users, err := uc.store.LoadAll()
	if err != nil {
		return err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	for _, u := range users {
		uc.users[u.Username] = u
	}
	uc.log.Info().Int("users", len(users)).Msg("users loaded")
	return nil
}

// EnsureAdmin bootstraps a default administrator when no admin exists
// yet, so a fresh data directory is operable. The default credentials
// are logged loudly and must be changed.
func (uc *UserUseCase) EnsureAdmin() error {
	uc.mu.Lock()
	for _, u := range uc.users {
		if u.Role == domain.RoleAdmin {
			uc.mu.Unlock()
			return nil
		}
	}
	uc.mu.Unlock()

	if _, err := uc.register("admin", "admin123", domain.RoleAdmin); err != nil {
		return err
	}
	uc.log.Warn().Msg("default admin created (admin/admin123), change the password immediately")
	return nil
}

// Register creates a regular user with the given credentials.
func (uc *UserUseCase) Register(username, password string) (*domain.User, error) {
	return uc.register(username, password, domain.RoleUser)
}

func (uc *UserUseCase) register(username, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.ContainsRune(username, '|') {
		return nil, fmt.Errorf("%w: username cannot be blank or contain '|'", domain.ErrInvalidName)
	}
	if err := domain.ValidatePassword(password, uc.minPasswordLength); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if _, exists := uc.users[username]; exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserExists, username)
	}

	salt, err := auth.RandomSalt(16)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(salt+password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Username:       username,
		HashedPassword: string(hash),
		Salt:           salt,
		Role:           role,
		CreatedAt:      uc.clock.Now(),
	}
	uc.users[username] = u

	if err := uc.persistLocked(); err != nil {
		delete(uc.users, username)
		return nil, err
	}

	uc.log.Info().Str("username", username).Stringer("role", role).Msg("user registered")
	return u, nil
}

// Authenticate verifies the password and stamps the last login time.
func (uc *UserUseCase) Authenticate(username, password string) (*domain.User, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	u, ok := uc.users[username]
	if !ok {
		// Burn a comparison so a missing user costs the same as a
		// wrong password.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(password))
		return nil, domain.ErrUnauthorized
	}

	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(u.Salt+password)) != nil {
		uc.log.Warn().Str("username", username).Msg("failed login attempt")
		return nil, domain.ErrUnauthorized
	}

	u.LastLogin = uc.clock.Now()
	if err := uc.persistLocked(); err != nil {
		return nil, err
	}

	uc.log.Info().Str("username", username).Msg("user authenticated")
	return u, nil
}

// AttachAccount records account ownership for the user.
func (uc *UserUseCase) AttachAccount(username string, accountNo int64) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	u, ok := uc.users[username]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, username)
	}

	u.AddAccount(accountNo)
	return uc.persistLocked()
}

// User returns the user with the given username.
func (uc *UserUseCase) User(username string) (*domain.User, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	u, ok := uc.users[username]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, username)
	}
	return u, nil
}

// Users returns every user ordered by username.
func (uc *UserUseCase) Users() []*domain.User {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	names := make([]string, 0, len(uc.users))
	for name := range uc.users {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*domain.User, 0, len(names))
	for _, name := range names {
		out = append(out, uc.users[name])
	}
	return out
}

func (uc *UserUseCase) persistLocked() error {
	users := make([]*domain.User, 0, len(uc.users))
	for _, u := range uc.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return uc.store.SaveAll(users)
}
