package service

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/Petrenko-Anton/HW-13-REST/internal/config"
	domainErrors "github.com/Petrenko-Anton/HW-13-REST/internal/domain/errors"
	"github.com/Petrenko-Anton/HW-13-REST/internal/domain/models"
	"github.com/Petrenko-Anton/HW-13-REST/internal/utils/rate"
)

type MockPasswordService struct {
	mock.Mock
}

func (m *MockPasswordService) HashPassword(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordService) CheckPasswordHash(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, key string, rule config.RateLimitRule) (rate.Decision, error) {
	args := m.Called(ctx, key, rule)
	return args.Get(0).(rate.Decision), args.Error(1)
}

// fakeUserStore is an in-memory UserRepository with real compare-and-swap
// semantics, used where the tests exercise rotation races instead of stubbing
// call-by-call expectations.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.Email]; ok {
		return domainErrors.ErrEmailExists
	}
	clone := *user
	f.users[user.Email] = &clone
	return nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return nil, domainErrors.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserStore) ConfirmEmail(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return domainErrors.ErrUserNotFound
	}
	user.Confirmed = true
	return nil
}

func (f *fakeUserStore) UpdatePasswordHash(_ context.Context, email, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return domainErrors.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserStore) SetRefreshTokenHash(_ context.Context, email, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return domainErrors.ErrUserNotFound
	}
	user.RefreshTokenHash = hash
	return nil
}

func (f *fakeUserStore) SwapRefreshTokenHash(_ context.Context, email, oldHash, newHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return domainErrors.ErrUserNotFound
	}
	if user.RefreshTokenHash != oldHash {
		return domainErrors.ErrRevokedToken
	}
	user.RefreshTokenHash = newHash
	return nil
}
