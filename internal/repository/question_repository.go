package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"seungpyo.lee/SurveyBuilder/internal/domain"
)

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository creates a QuestionRepository backed by survey_questions.
func NewQuestionRepository(db *gorm.DB) domain.QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) ListBySurvey(ctx context.Context, surveyID uint) ([]*domain.Question, error) {
	var questions []*domain.Question
	if err := r.db.WithContext(ctx).Where("survey_id = ?", surveyID).Order("id ASC").Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

func (r *questionRepository) Create(ctx context.Context, question *domain.Question) error {
	if err := r.db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

// Update writes the editable fields. survey_id never changes.
func (r *questionRepository) Update(ctx context.Context, question *domain.Question) error {
	question.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).Model(&domain.Question{}).
		Where("id = ? AND survey_id = ?", question.ID, question.SurveyID).
		Updates(map[string]interface{}{
			"question":    question.Question,
			"type":        question.Type,
			"data":        question.Data,
			"description": question.Description,
			"updated_at":  question.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update question: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByIDs removes the given questions of one survey in a single statement.
func (r *questionRepository) DeleteByIDs(ctx context.Context, surveyID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Where("survey_id = ? AND id IN ?", surveyID, ids).Delete(&domain.Question{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete questions: %w", err)
	}
	return nil
}

func (r *questionRepository) DeleteBySurvey(ctx context.Context, surveyID uint) error {
	if err := r.db.WithContext(ctx).Where("survey_id = ?", surveyID).Delete(&domain.Question{}).Error; err != nil {
		return fmt.Errorf("failed to delete survey questions: %w", err)
	}
	return nil
}
