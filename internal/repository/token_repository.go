package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"seungpyo.lee/SurveyBuilder/internal/domain"
)

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a TokenRepository backed by the access_tokens table.
func NewTokenRepository(db *gorm.DB) domain.TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *domain.AccessToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("failed to create access token: %w", err)
	}
	return nil
}

func (r *tokenRepository) GetByID(ctx context.Context, id string) (*domain.AccessToken, error) {
	var token domain.AccessToken
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	return &token, nil
}

// Touch records when the token was last used.
func (r *tokenRepository) Touch(ctx context.Context, id string, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&domain.AccessToken{}).Where("id = ?", id).Update("last_used_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to touch access token: %w", err)
	}
	return nil
}

// Delete revokes a single token. Deleting an unknown token is reported as not found.
func (r *tokenRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.AccessToken{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete access token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
