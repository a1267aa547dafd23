package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"seungpyo.lee/SurveyBuilder/internal/domain"
)

type surveyRepository struct {
	db *gorm.DB
}

// NewSurveyRepository creates a new SurveyRepository with the given GORM DB instance.
func NewSurveyRepository(db *gorm.DB) domain.SurveyRepository {
	return &surveyRepository{db: db}
}

func orderQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func withQuestions(db *gorm.DB) *gorm.DB {
	return db.Preload("Questions", orderQuestions)
}

// Create inserts the survey row only. Questions are written by the synchronizer.
func (r *surveyRepository) Create(ctx context.Context, survey *domain.Survey) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(survey).Error; err != nil {
		return fmt.Errorf("failed to create survey: %w", err)
	}
	return nil
}

// GetByID retrieves a survey with its questions.
func (r *surveyRepository) GetByID(ctx context.Context, id uint) (*domain.Survey, error) {
	var survey domain.Survey
	if err := r.db.WithContext(ctx).Preload("Questions", orderQuestions).First(&survey, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	return &survey, nil
}

// ListByUser returns one page of the user's surveys, newest first.
func (r *surveyRepository) ListByUser(ctx context.Context, userID uint, page, perPage int) (*domain.Page[*domain.Survey], error) {
	query := r.db.WithContext(ctx).
		Model(&domain.Survey{}).
		Where("user_id = ?", userID)
	result, err := paginate[*domain.Survey](query, page, perPage, "created_at DESC, id DESC", withQuestions)
	if err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}
	return result, nil
}

// Update writes the editable columns of the survey.
func (r *surveyRepository) Update(ctx context.Context, survey *domain.Survey) error {
	survey.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).Model(&domain.Survey{}).Where("id = ?", survey.ID).Updates(map[string]interface{}{
		"title":       survey.Title,
		"slug":        survey.Slug,
		"status":      survey.Status,
		"image":       survey.Image,
		"description": survey.Description,
		"expire_date": survey.ExpireDate,
		"updated_at":  survey.UpdatedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update survey: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a survey by its ID. Questions go with it through the FK cascade.
func (r *surveyRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Survey{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete survey: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SlugExists reports whether another survey (id != exceptID) uses slug.
func (r *surveyRepository) SlugExists(ctx context.Context, slug string, exceptID uint) (bool, error) {
	query := r.db.WithContext(ctx).Model(&domain.Survey{}).Where("slug = ?", slug)
	if exceptID > 0 {
		query = query.Where("id <> ?", exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return count > 0, nil
}
