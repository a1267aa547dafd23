package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"seungpyo.lee/SurveyBuilder/internal/cache"
	"seungpyo.lee/SurveyBuilder/internal/domain"
	"seungpyo.lee/SurveyBuilder/internal/util"
	"seungpyo.lee/SurveyBuilder/pkg/jwt"
	"seungpyo.lee/SurveyBuilder/pkg/logger"
)

const (
	tokenName  = "main"
	emailTaken = "The email has already been taken."
)

// TokenCache is the subset of cache.TokenCache the auth service relies on.
type TokenCache interface {
	Set(ctx context.Context, tokenID string, token cache.CachedToken, ttl time.Duration) error
	Get(ctx context.Context, tokenID string) (*cache.CachedToken, error)
	Delete(ctx context.Context, tokenID string) error
}

// authService implements domain.AuthService.
type authService struct {
	users        domain.UserRepository
	tokens       domain.TokenRepository
	cache        TokenCache
	tokenManager jwt.TokenManager
	tokenTTL     time.Duration
	now          func() time.Time
}

// NewAuthService creates a new AuthService. Tokens live for tokenTTL.
func NewAuthService(users domain.UserRepository, tokens domain.TokenRepository, tokenCache TokenCache, tokenManager jwt.TokenManager, tokenTTL time.Duration) domain.AuthService {
	return &authService{
		users:        users,
		tokens:       tokens,
		cache:        tokenCache,
		tokenManager: tokenManager,
		tokenTTL:     tokenTTL,
		now:          time.Now,
	}
}

// Signup creates an account and logs it in.
func (s *authService) Signup(ctx context.Context, name, email, password string) (*domain.AuthResult, error) {
	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.NewValidationError("email", emailTaken)
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &domain.User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.NewValidationError("email", emailTaken)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}
	logger.AppLogger.Info("user signed up", zap.Uint("user_id", user.ID))
	return &domain.AuthResult{User: user, Token: token}, nil
}

// Login authenticates a user by email and password.
func (s *authService) Login(ctx context.Context, email, password string, remember bool) (*domain.AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := util.CheckPassword(user.Password, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}
	logger.AppLogger.Info("user logged in", zap.Uint("user_id", user.ID), zap.Bool("remember", remember))
	return &domain.AuthResult{User: user, Token: token}, nil
}

// Logout revokes only the token of the current request. A cached token
// authenticates without the database, so a failed eviction fails the logout
// and the client can retry with the same token.
func (s *authService) Logout(ctx context.Context, token *domain.AccessToken) error {
	if token == nil {
		return domain.ErrUnauthenticated
	}
	if err := s.tokens.Delete(ctx, token.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err := s.cache.Delete(ctx, token.ID); err != nil {
		return fmt.Errorf("failed to evict access token: %w", err)
	}
	logger.AppLogger.Info("user logged out", zap.Uint("user_id", token.UserID))
	return nil
}

// Authenticate resolves a bearer token to its user. The cache is consulted
// first; on a miss the stored token row is checked and cached again.
func (s *authService) Authenticate(ctx context.Context, bearer string) (*domain.User, *domain.AccessToken, error) {
	claims, err := s.tokenManager.ValidateAccessToken(bearer)
	if err != nil {
		return nil, nil, domain.ErrUnauthenticated
	}
	hash := hashToken(bearer)

	token, err := s.lookupToken(ctx, claims.ID, hash)
	if err != nil {
		return nil, nil, err
	}
	if token.UserID != claims.UserID {
		return nil, nil, domain.ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrUnauthenticated
		}
		return nil, nil, err
	}
	return user, token, nil
}

func (s *authService) lookupToken(ctx context.Context, tokenID, hash string) (*domain.AccessToken, error) {
	cached, err := s.cache.Get(ctx, tokenID)
	if err == nil {
		if !sameHash(cached.Hash, hash) {
			return nil, domain.ErrUnauthenticated
		}
		return &domain.AccessToken{ID: tokenID, UserID: cached.UserID, Name: tokenName}, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logger.ErrorLogger.Error("token cache unavailable", zap.Error(err))
	}

	token, err := s.tokens.GetByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}
	now := s.now()
	if !sameHash(token.Token, hash) || !token.ExpiresAt.After(now) {
		return nil, domain.ErrUnauthenticated
	}

	if err := s.tokens.Touch(ctx, token.ID, now); err != nil {
		logger.ErrorLogger.Error("failed to touch access token", zap.String("token_id", token.ID), zap.Error(err))
	}
	token.LastUsedAt = &now
	if err := s.cache.Set(ctx, token.ID, cache.CachedToken{UserID: token.UserID, Hash: token.Token}, token.ExpiresAt.Sub(now)); err != nil {
		logger.ErrorLogger.Error("failed to cache access token", zap.String("token_id", token.ID), zap.Error(err))
	}
	return token, nil
}

// issueToken persists a new access token for user and returns the bearer string.
func (s *authService) issueToken(ctx context.Context, user *domain.User) (string, error) {
	id := uuid.New().String()
	signed, expiresAt, err := s.tokenManager.GenerateToken(user.ID, id, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	row := &domain.AccessToken{
		ID:        id,
		UserID:    user.ID,
		Name:      tokenName,
		Token:     hashToken(signed),
		ExpiresAt: expiresAt,
	}
	if err := s.tokens.Create(ctx, row); err != nil {
		return "", err
	}
	if err := s.cache.Set(ctx, id, cache.CachedToken{UserID: user.ID, Hash: row.Token}, s.tokenTTL); err != nil {
		logger.ErrorLogger.Error("failed to cache access token", zap.String("token_id", id), zap.Error(err))
	}
	return signed, nil
}

func hashToken(bearer string) string {
	sum := sha256.Sum256([]byte(bearer))
	return hex.EncodeToString(sum[:])
}

func sameHash(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
