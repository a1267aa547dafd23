package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"seungpyo.lee/SurveyBuilder/internal/domain"
)

// SignupRequest represents the signup request payload
type SignupRequest struct {
	Name                 string `json:"name" binding:"required,max=55"`
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"eqfield=Password"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Remember bool   `json:"remember"`
}

// Optional is a JSON field that remembers whether its key was present,
// so an explicit null can clear a value while a missing key keeps it.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// QuestionPayload is one question inside a survey request. Its rules are
// checked by the question synchronizer, which reports them per index.
type QuestionPayload struct {
	ID          domain.QuestionRef `json:"id"`
	Question    string             `json:"question"`
	Type        string             `json:"type"`
	Data        json.RawMessage    `json:"data"`
	Description *string            `json:"description"`
}

// SurveyRequest is the body of POST /surveys and PUT /surveys/:id.
type SurveyRequest struct {
	Title       string            `json:"title" binding:"required,max=1000"`
	Status      *bool             `json:"status" binding:"required"`
	Image       *string           `json:"image"`
	Description Optional[string]  `json:"description"`
	ExpireDate  Optional[string]  `json:"expire_date"`
	Questions   []QuestionPayload `json:"questions"`
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// ToInput converts the request into service input, checking the fields
// binding tags cannot express.
func (r SurveyRequest) ToInput() (domain.SurveyInput, error) {
	in := domain.SurveyInput{
		Title:       strings.TrimSpace(r.Title),
		Image:       r.Image,
		Description: domain.Field[string]{Set: r.Description.Set, Value: r.Description.Value},
		ExpireDate:  domain.Field[time.Time]{Set: r.ExpireDate.Set},
		Questions:   make([]domain.QuestionInput, 0, len(r.Questions)),
	}
	if in.Title == "" {
		return domain.SurveyInput{}, domain.NewValidationError("title", "The title field is required.")
	}
	if r.Status != nil {
		in.Status = *r.Status
	}
	if r.ExpireDate.Value != nil && strings.TrimSpace(*r.ExpireDate.Value) != "" {
		t, ok := parseDate(*r.ExpireDate.Value)
		if !ok {
			return domain.SurveyInput{}, domain.NewValidationError("expire_date", "The expire date is not a valid date.")
		}
		if !t.After(today()) {
			return domain.SurveyInput{}, domain.NewValidationError("expire_date", "The expire date must be a date after today.")
		}
		in.ExpireDate.Value = &t
	}
	for _, q := range r.Questions {
		in.Questions = append(in.Questions, domain.QuestionInput{
			ID:          q.ID,
			Question:    q.Question,
			Type:        q.Type,
			Data:        q.Data,
			Description: q.Description,
		})
	}
	return in, nil
}

// today is swapped in tests.
var today = func() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
