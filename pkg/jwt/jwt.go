package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired is returned when a token has expired.
var ErrTokenExpired = errors.New("token is expired")

// ErrInvalidToken is returned for malformed tokens, bad signatures and missing claims.
var ErrInvalidToken = errors.New("invalid token")

// Claims defines the custom JWT claims structure. RegisteredClaims.ID carries
// the id of the persisted access token.
type Claims struct {
	UserID uint `json:"user_id"`
	jwtlib.RegisteredClaims
}

// TokenManager signs and parses bearer access tokens.
type TokenManager interface {
	// GenerateToken returns the signed token and its expiry.
	GenerateToken(userID uint, tokenID string, ttl time.Duration) (string, time.Time, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
}

// NewTokenManager creates a new TokenManager with the given secret key.
func NewTokenManager(secretKey string) TokenManager {
	return &tokenManager{secretKey: []byte(secretKey), now: time.Now}
}

type tokenManager struct {
	secretKey []byte
	now       func() time.Time
}

func (j *tokenManager) GenerateToken(userID uint, tokenID string, ttl time.Duration) (string, time.Time, error) {
	issuedAt := j.now()
	expiresAt := issuedAt.Add(ttl)
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        tokenID,
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			IssuedAt:  jwtlib.NewNumericDate(issuedAt),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (j *tokenManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	token, err := jwtlib.ParseWithClaims(tokenString, &Claims{}, func(token *jwtlib.Token) (interface{}, error) {
		return j.secretKey, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}), jwtlib.WithTimeFunc(j.now))
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
