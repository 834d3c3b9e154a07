package usecase

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase/mocks"
)

func newUserFixture(t *testing.T) (*UserUseCase, *mocks.UserStore) {
	t.Helper()
	store := mocks.NewUserStore()
	clock := mocks.NewClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	return NewUserUseCase(store, clock, zerolog.Nop(), 8), store
}

func TestRegisterAndAuthenticate(t *testing.T) {
	uc, store := newUserFixture(t)

	u, err := uc.Register("asha", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.NotEmpty(t, u.Salt)
	assert.NotEqual(t, "correct-horse", u.HashedPassword)
	require.Len(t, store.Saved, 1)

	got, err := uc.Authenticate("asha", "correct-horse")
	require.NoError(t, err)
	assert.False(t, got.LastLogin.IsZero())

	_, err = uc.Authenticate("asha", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Authenticate("nobody", "correct-horse")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	uc, _ := newUserFixture(t)

	_, err := uc.Register("", "correct-horse")
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = uc.Register("bad|name", "correct-horse")
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = uc.Register("asha", "short")
	assert.ErrorIs(t, err, domain.ErrPasswordTooWeak)

	_, err = uc.Register("asha", "correct-horse")
	require.NoError(t, err)
	_, err = uc.Register("asha", "another-pass")
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestEnsureAdminBootstrapsOnce(t *testing.T) {
	uc, store := newUserFixture(t)

	require.NoError(t, uc.EnsureAdmin())
	admin, err := uc.User("admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	// Second call is a no-op.
	require.NoError(t, uc.EnsureAdmin())
	assert.Len(t, store.Saved, 1)

	_, err = uc.Authenticate("admin", "admin123")
	assert.NoError(t, err)
}

func TestAttachAccountOwnership(t *testing.T) {
	uc, _ := newUserFixture(t)

	_, err := uc.Register("asha", "correct-horse")
	require.NoError(t, err)

	require.NoError(t, uc.AttachAccount("asha", 100001))
	require.NoError(t, uc.AttachAccount("asha", 100001)) // idempotent

	u, err := uc.User("asha")
	require.NoError(t, err)
	assert.Equal(t, []int64{100001}, u.Accounts)
	assert.True(t, u.CanAccess(100001))
	assert.False(t, u.CanAccess(100002))

	assert.ErrorIs(t, uc.AttachAccount("nobody", 100001), domain.ErrUserNotFound)
}

func TestLoadRestoresUsers(t *testing.T) {
	uc, store := newUserFixture(t)
	_, err := uc.Register("asha", "correct-horse")
	require.NoError(t, err)

	clock := mocks.NewClock(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	reloaded := NewUserUseCase(store, clock, zerolog.Nop(), 8)
	require.NoError(t, reloaded.Load())

	_, err = reloaded.Authenticate("asha", "correct-horse")
	assert.NoError(t, err)
}
