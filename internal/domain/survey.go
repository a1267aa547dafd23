package domain

import (
	"context"
	"encoding/json"
	"time"
)

type Survey struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      uint       `json:"user_id" gorm:"index;not null"`
	Title       string     `json:"title" gorm:"type:varchar(1000);not null"`
	Slug        string     `json:"slug" gorm:"type:varchar(1000);uniqueIndex;not null"`
	Status      bool       `json:"status" gorm:"not null;default:false"`
	Image       *string    `json:"image" gorm:"type:varchar(255)"`
	Description *string    `json:"description" gorm:"type:text"`
	ExpireDate  *time.Time `json:"expire_date" gorm:"type:date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	User      *User       `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Questions []*Question `json:"questions" gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE"`
}

// QuestionInput is one submitted question before validation. Data is kept
// raw so "key missing" (nil) can be told apart from an explicit null.
type QuestionInput struct {
	ID          QuestionRef
	Question    string
	Type        string
	Data        json.RawMessage
	Description *string
}

// Field is a value that remembers whether it was supplied at all.
type Field[T any] struct {
	Set   bool
	Value *T
}

type SurveyInput struct {
	Title       string
	Status      bool
	Image       *string // data URI; nil or empty keeps the current image
	Description Field[string]
	ExpireDate  Field[time.Time]
	Questions   []QuestionInput
}

// SurveysPerPage is the page size of survey listings.
const SurveysPerPage = 10

// Page is one page of a listing.
type Page[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
}

// LastPage returns the number of the last page (at least 1).
func (p Page[T]) LastPage() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

type SurveyRepository interface {
	Create(ctx context.Context, survey *Survey) error
	GetByID(ctx context.Context, id uint) (*Survey, error)
	ListByUser(ctx context.Context, userID uint, page, perPage int) (*Page[*Survey], error)
	Update(ctx context.Context, survey *Survey) error
	Delete(ctx context.Context, id uint) error
	SlugExists(ctx context.Context, slug string, exceptID uint) (bool, error)
}

// Transactor runs fn with repositories bound to one database transaction.
// A non-nil error from fn rolls everything back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(surveys SurveyRepository, questions QuestionRepository) error) error
}

type SurveyService interface {
	List(ctx context.Context, user *User, page int) (*Page[*Survey], error)
	Create(ctx context.Context, user *User, input SurveyInput) (*Survey, error)
	Show(ctx context.Context, user *User, id uint) (*Survey, error)
	Update(ctx context.Context, user *User, id uint, input SurveyInput) (*Survey, error)
	Destroy(ctx context.Context, user *User, id uint) error
}
