package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/eventgate/backend/internal/domain"
	"github.com/eventgate/backend/internal/repository"
)

var (
	ErrUserEmailExists  = repository.ErrUserEmailExists
	ErrWrongPassword    = errors.New("wrong password")
	ErrUserBlocked      = errors.New("this user is blocked")
	ErrTooManyAttempts  = errors.New("too many login attempts")
	ErrInvalidResetCode = errors.New("invalid or expired reset code")
)

const (
	maxLoginAttempts   = 5
	loginAttemptWindow = 15 * time.Minute
	resetCodeTTL       = 15 * time.Minute
)

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	UpdatePassword(ctx context.Context, id, hashedPassword string) error
}

// AuthCache holds login attempt counters and pending reset codes. A nil or
// unavailable cache disables rate limiting and password reset, not login.
type AuthCache interface {
	Available() bool
	IncrLoginAttempts(ctx context.Context, email string, window time.Duration) (int64, error)
	ResetLoginAttempts(ctx context.Context, email string) error
	StoreResetCode(ctx context.Context, email, code string, ttl time.Duration) error
	GetResetCode(ctx context.Context, email string) (string, error)
	DeleteResetCode(ctx context.Context, email string) error
}

type AuthService struct {
	repo  AuthUserRepository
	cache AuthCache
}

func NewAuthService(repo AuthUserRepository, cache AuthCache) *AuthService {
	return &AuthService{
		repo:  repo,
		cache: cache,
	}
}

func (s *AuthService) Signup(ctx context.Context, user domain.User) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	user.Password = string(hash)

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrUserEmailExists) {
			return domain.User{}, ErrUserEmailExists
		}

		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	if err := s.checkLoginAttempts(ctx, email); err != nil {
		return domain.User{}, err
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrUserNotFound
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, ErrWrongPassword
	}

	if user.Blocked {
		return domain.User{}, ErrUserBlocked
	}

	if s.cache != nil && s.cache.Available() {
		if err = s.cache.ResetLoginAttempts(ctx, email); err != nil {
			zap.L().Warn("failed to reset login attempts", zap.Error(err))
		}
	}

	return user, nil
}

// ForgotPassword issues a one-time reset code. It succeeds quietly for
// unknown emails so the endpoint cannot be used to probe accounts; delivery
// of the code is a separate concern outside this service.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if s.cache == nil || !s.cache.Available() {
		return repository.ErrAuthCacheUnavailable
	}

	if _, err := s.repo.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}

		return fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	code := uuid.NewString()
	if err := s.cache.StoreResetCode(ctx, email, code, resetCodeTTL); err != nil {
		return fmt.Errorf("s.cache.StoreResetCode -> %w", err)
	}

	zap.L().Info("password reset code issued", zap.String("email", email))

	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if s.cache == nil || !s.cache.Available() {
		return repository.ErrAuthCacheUnavailable
	}

	stored, err := s.cache.GetResetCode(ctx, email)
	if err != nil {
		return fmt.Errorf("s.cache.GetResetCode -> %w", err)
	}
	if stored == "" || stored != code {
		return ErrInvalidResetCode
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}

		return fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err = s.repo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("s.repo.UpdatePassword -> %w", err)
	}

	if err = s.cache.DeleteResetCode(ctx, email); err != nil {
		zap.L().Warn("failed to delete reset code", zap.Error(err))
	}

	return nil
}

func (s *AuthService) checkLoginAttempts(ctx context.Context, email string) error {
	if s.cache == nil || !s.cache.Available() {
		return nil
	}

	count, err := s.cache.IncrLoginAttempts(ctx, email, loginAttemptWindow)
	if err != nil {
		zap.L().Warn("failed to count login attempts", zap.Error(err))
		return nil
	}

	if count > maxLoginAttempts {
		return ErrTooManyAttempts
	}

	return nil
}
