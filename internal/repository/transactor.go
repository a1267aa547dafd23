package repository

import (
	"context"

	"gorm.io/gorm"
	"seungpyo.lee/SurveyBuilder/internal/domain"
)

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor runs units of work in GORM transactions.
func NewTransactor(db *gorm.DB) domain.Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(domain.SurveyRepository, domain.QuestionRepository) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewSurveyRepository(tx), NewQuestionRepository(tx))
	})
}
