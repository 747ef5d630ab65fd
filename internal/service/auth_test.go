package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/eventgate/backend/internal/domain"
	"github.com/eventgate/backend/internal/repository"
)

type fakeUserRepo struct {
	byEmail map[string]domain.User

	updatedID   string
	updatedHash string
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{byEmail: make(map[string]domain.User)}
	for _, u := range users {
		repo.byEmail[u.Email] = u
	}
	return repo
}

func (f *fakeUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	if _, ok := f.byEmail[user.Email]; ok {
		return domain.User{}, repository.ErrUserEmailExists
	}
	user.ID = "generated-id"
	f.byEmail[user.Email] = user
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, hashedPassword string) error {
	f.updatedID = id
	f.updatedHash = hashedPassword
	return nil
}

type fakeAuthCache struct {
	available bool
	attempts  map[string]int64
	codes     map[string]string
}

func newFakeAuthCache() *fakeAuthCache {
	return &fakeAuthCache{
		available: true,
		attempts:  make(map[string]int64),
		codes:     make(map[string]string),
	}
}

func (f *fakeAuthCache) Available() bool { return f.available }

func (f *fakeAuthCache) IncrLoginAttempts(_ context.Context, email string, _ time.Duration) (int64, error) {
	f.attempts[email]++
	return f.attempts[email], nil
}

func (f *fakeAuthCache) ResetLoginAttempts(_ context.Context, email string) error {
	delete(f.attempts, email)
	return nil
}

func (f *fakeAuthCache) StoreResetCode(_ context.Context, email, code string, _ time.Duration) error {
	f.codes[email] = code
	return nil
}

func (f *fakeAuthCache) GetResetCode(_ context.Context, email string) (string, error) {
	return f.codes[email], nil
}

func (f *fakeAuthCache) DeleteResetCode(_ context.Context, email string) error {
	delete(f.codes, email)
	return nil
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthService_Login(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		repo := newFakeUserRepo(domain.User{
			ID:       "u1",
			Email:    "alice@example.com",
			Password: mustHash(t, "password1"),
		})
		svc := NewAuthService(repo, newFakeAuthCache())

		user, err := svc.Login(context.Background(), "alice@example.com", "password1")

		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo(), newFakeAuthCache())

		_, err := svc.Login(context.Background(), "ghost@example.com", "password1")

		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := newFakeUserRepo(domain.User{
			Email:    "alice@example.com",
			Password: mustHash(t, "password1"),
		})
		svc := NewAuthService(repo, newFakeAuthCache())

		_, err := svc.Login(context.Background(), "alice@example.com", "wrong")

		require.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("blocked user with correct password", func(t *testing.T) {
		repo := newFakeUserRepo(domain.User{
			Email:    "alice@example.com",
			Password: mustHash(t, "password1"),
			Blocked:  true,
		})
		svc := NewAuthService(repo, newFakeAuthCache())

		_, err := svc.Login(context.Background(), "alice@example.com", "password1")

		require.ErrorIs(t, err, ErrUserBlocked)
	})

	t.Run("rate limited after too many attempts", func(t *testing.T) {
		repo := newFakeUserRepo(domain.User{
			Email:    "alice@example.com",
			Password: mustHash(t, "password1"),
		})
		cache := newFakeAuthCache()
		svc := NewAuthService(repo, cache)

		for i := 0; i < maxLoginAttempts; i++ {
			_, err := svc.Login(context.Background(), "alice@example.com", "wrong")
			require.ErrorIs(t, err, ErrWrongPassword)
		}

		_, err := svc.Login(context.Background(), "alice@example.com", "password1")
		require.ErrorIs(t, err, ErrTooManyAttempts)
	})

	t.Run("successful login resets the attempt counter", func(t *testing.T) {
		repo := newFakeUserRepo(domain.User{
			Email:    "alice@example.com",
			Password: mustHash(t, "password1"),
		})
		cache := newFakeAuthCache()
		svc := NewAuthService(repo, cache)

		_, err := svc.Login(context.Background(), "alice@example.com", "wrong")
		require.ErrorIs(t, err, ErrWrongPassword)

		_, err = svc.Login(context.Background(), "alice@example.com", "password1")
		require.NoError(t, err)

		assert.Zero(t, cache.attempts["alice@example.com"])
	})

	t.Run("login works without a cache", func(t *testing.T) {
		repo := newFakeUserRepo(domain.User{
			Email:    "alice@example.com",
			Password: mustHash(t, "password1"),
		})
		svc := NewAuthService(repo, nil)

		_, err := svc.Login(context.Background(), "alice@example.com", "password1")

		require.NoError(t, err)
	})
}

func TestAuthService_Signup(t *testing.T) {
	t.Run("hashes the password", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewAuthService(repo, nil)

		created, err := svc.Signup(context.Background(), domain.User{
			Email:    "alice@example.com",
			Password: "password1",
		})

		require.NoError(t, err)
		assert.NotEqual(t, "password1", created.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("password1")))
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := newFakeUserRepo(domain.User{Email: "alice@example.com"})
		svc := NewAuthService(repo, nil)

		_, err := svc.Signup(context.Background(), domain.User{
			Email:    "alice@example.com",
			Password: "password1",
		})

		require.ErrorIs(t, err, ErrUserEmailExists)
	})
}

func TestAuthService_PasswordReset(t *testing.T) {
	t.Run("full flow", func(t *testing.T) {
		repo := newFakeUserRepo(domain.User{
			ID:       "u1",
			Email:    "alice@example.com",
			Password: mustHash(t, "password1"),
		})
		cache := newFakeAuthCache()
		svc := NewAuthService(repo, cache)

		require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))
		code := cache.codes["alice@example.com"]
		require.NotEmpty(t, code)

		err := svc.ResetPassword(context.Background(), "alice@example.com", code, "newpassword2")
		require.NoError(t, err)

		assert.Equal(t, "u1", repo.updatedID)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.updatedHash), []byte("newpassword2")))
		assert.Empty(t, cache.codes["alice@example.com"], "code is single use")
	})

	t.Run("forgot password is quiet for unknown emails", func(t *testing.T) {
		cache := newFakeAuthCache()
		svc := NewAuthService(newFakeUserRepo(), cache)

		err := svc.ForgotPassword(context.Background(), "ghost@example.com")

		require.NoError(t, err)
		assert.Empty(t, cache.codes)
	})

	t.Run("wrong code", func(t *testing.T) {
		repo := newFakeUserRepo(domain.User{Email: "alice@example.com"})
		cache := newFakeAuthCache()
		cache.codes["alice@example.com"] = "real-code"
		svc := NewAuthService(repo, cache)

		err := svc.ResetPassword(context.Background(), "alice@example.com", "guess", "newpassword2")

		require.ErrorIs(t, err, ErrInvalidResetCode)
	})

	t.Run("unavailable cache", func(t *testing.T) {
		cache := newFakeAuthCache()
		cache.available = false
		svc := NewAuthService(newFakeUserRepo(), cache)

		err := svc.ForgotPassword(context.Background(), "alice@example.com")

		require.ErrorIs(t, err, repository.ErrAuthCacheUnavailable)
	})
}
