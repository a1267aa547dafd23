package domain

import (
	"context"
	"fmt"
	"time"
)

// QuestionType is the closed set of question kinds a survey can hold.
type QuestionType string

const (
	QuestionTypeText     QuestionType = "text"
	QuestionTypeRadio    QuestionType = "radio"
	QuestionTypeCheckbox QuestionType = "checkbox"
	QuestionTypeSelect   QuestionType = "select"
	QuestionTypeTextarea QuestionType = "textarea"
)

func ParseQuestionType(s string) (QuestionType, error) {
	t := QuestionType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown question type %q", s)
	}
	return t, nil
}

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeText, QuestionTypeRadio, QuestionTypeCheckbox, QuestionTypeSelect, QuestionTypeTextarea:
		return true
	}
	return false
}

type Question struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	SurveyID    uint         `json:"survey_id" gorm:"index;not null"`
	Question    string       `json:"question" gorm:"type:varchar(2000);not null"`
	Type        QuestionType `json:"type" gorm:"type:varchar(45);not null"`
	Description *string      `json:"description" gorm:"type:text"`
	// Data is stored in serialized form: option lists are compact JSON.
	Data      string    `json:"data" gorm:"type:text;not null;default:''"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "survey_questions"
}

type QuestionRepository interface {
	ListBySurvey(ctx context.Context, surveyID uint) ([]*Question, error)
	Create(ctx context.Context, question *Question) error
	Update(ctx context.Context, question *Question) error
	DeleteByIDs(ctx context.Context, surveyID uint, ids []uint) error
	DeleteBySurvey(ctx context.Context, surveyID uint) error
}
