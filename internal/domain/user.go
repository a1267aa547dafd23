package domain

import (
	"context"
	"time"
)

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"` // Hidden in JSON responses
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccessToken is one authenticated session. ID is also the jti of the
// issued bearer token; Token holds its sha256 so the plain value is never stored.
type AccessToken struct {
	ID         string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID     uint       `json:"user_id" gorm:"index;not null"`
	Name       string     `json:"name" gorm:"type:varchar(255);not null"`
	Token      string     `json:"-" gorm:"type:varchar(64);uniqueIndex;not null"`
	LastUsedAt *time.Time `json:"last_used_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uint) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type TokenRepository interface {
	Create(ctx context.Context, token *AccessToken) error
	GetByID(ctx context.Context, id string) (*AccessToken, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string, remember bool) (*AuthResult, error)
	Logout(ctx context.Context, token *AccessToken) error
	Authenticate(ctx context.Context, bearer string) (*User, *AccessToken, error)
}
