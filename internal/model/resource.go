package model

import (
	"encoding/json"
	"time"

	"seungpyo.lee/SurveyBuilder/internal/domain"
	"seungpyo.lee/SurveyBuilder/internal/service"
)

const (
	dateTimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
)

// UserResource is the public view of an account.
type UserResource struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	User  UserResource `json:"user"`
	Token string       `json:"token"`
}

type QuestionResource struct {
	ID          uint            `json:"id"`
	Type        string          `json:"type"`
	Question    string          `json:"question"`
	Description *string         `json:"description"`
	Data        json.RawMessage `json:"data"`
}

type SurveyResource struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Slug        string             `json:"slug"`
	Status      bool               `json:"status"`
	Image       *string            `json:"image"`
	Description *string            `json:"description"`
	CreatedAt   string             `json:"created_at"`
	UpdatedAt   string             `json:"updated_at"`
	ExpireDate  *string            `json:"expire_date"`
	Questions   []QuestionResource `json:"questions"`
}

type PageMeta struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

type SurveyPage struct {
	Data []SurveyResource `json:"data"`
	Meta PageMeta         `json:"meta"`
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateTimeLayout)
}

func NewUserResource(u *domain.User) UserResource {
	return UserResource{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: formatDateTime(u.CreatedAt),
		UpdatedAt: formatDateTime(u.UpdatedAt),
	}
}

func NewAuthResponse(r *domain.AuthResult) AuthResponse {
	return AuthResponse{User: NewUserResource(r.User), Token: r.Token}
}

// NewSurveyResource renders a survey. imageURL turns the stored relative
// path into the address clients load it from.
func NewSurveyResource(s *domain.Survey, imageURL func(string) string) SurveyResource {
	res := SurveyResource{
		ID:          s.ID,
		Title:       s.Title,
		Slug:        s.Slug,
		Status:      s.Status,
		Description: s.Description,
		CreatedAt:   formatDateTime(s.CreatedAt),
		UpdatedAt:   formatDateTime(s.UpdatedAt),
		Questions:   make([]QuestionResource, 0, len(s.Questions)),
	}
	if s.Image != nil && *s.Image != "" {
		url := imageURL(*s.Image)
		res.Image = &url
	}
	if s.ExpireDate != nil {
		d := s.ExpireDate.Format(dateLayout)
		res.ExpireDate = &d
	}
	for _, q := range s.Questions {
		res.Questions = append(res.Questions, QuestionResource{
			ID:          q.ID,
			Type:        string(q.Type),
			Question:    q.Question,
			Description: q.Description,
			Data:        service.RenderData(q.Data),
		})
	}
	return res
}

func NewSurveyPage(p *domain.Page[*domain.Survey], imageURL func(string) string) SurveyPage {
	page := SurveyPage{
		Data: make([]SurveyResource, 0, len(p.Items)),
		Meta: PageMeta{
			CurrentPage: p.Page,
			LastPage:    p.LastPage(),
			PerPage:     p.PerPage,
			Total:       p.Total,
		},
	}
	for _, s := range p.Items {
		page.Data = append(page.Data, NewSurveyResource(s, imageURL))
	}
	return page
}
