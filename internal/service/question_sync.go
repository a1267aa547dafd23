package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"seungpyo.lee/SurveyBuilder/internal/domain"
	"seungpyo.lee/SurveyBuilder/internal/validation"
)

// createQuestionSchema is the rule set for a question that will be inserted.
type createQuestionSchema struct {
	Question    string          `json:"question" validate:"required"`
	Type        string          `json:"type" validate:"required,question_type"`
	Data        json.RawMessage `json:"data" validate:"present"`
	Description *string         `json:"description"`
}

// updateQuestionSchema applies to a question that matches a stored one.
type updateQuestionSchema struct {
	ID          uint            `json:"id" validate:"required"`
	Question    string          `json:"question" validate:"required"`
	Type        string          `json:"type" validate:"required,question_type"`
	Data        json.RawMessage `json:"data" validate:"present"`
	Description *string         `json:"description"`
}

// preparedQuestion is a validated submission ready to be written.
type preparedQuestion struct {
	ref      domain.QuestionRef
	question domain.Question
}

// QuestionSynchronizer reconciles submitted questions with stored ones.
type QuestionSynchronizer struct{}

func NewQuestionSynchronizer() *QuestionSynchronizer {
	return &QuestionSynchronizer{}
}

// Prepare validates every submitted question before anything is written.
// existing holds the stored questions of the survey (nil on create) and
// decides which schema a submission is checked against.
func (s *QuestionSynchronizer) Prepare(inputs []domain.QuestionInput, existing []*domain.Question) ([]preparedQuestion, error) {
	stored := indexQuestions(existing)
	verr := &domain.ValidationError{}
	prepared := make([]preparedQuestion, 0, len(inputs))

	for i, in := range inputs {
		prefix := fmt.Sprintf("questions.%d.", i)
		base := createQuestionSchema{
			Question:    strings.TrimSpace(in.Question),
			Type:        strings.TrimSpace(in.Type),
			Data:        in.Data,
			Description: in.Description,
		}
		var schema any = base
		if id, ok := in.ID.ID(); ok && stored[id] != nil {
			schema = updateQuestionSchema{
				ID:          id,
				Question:    base.Question,
				Type:        base.Type,
				Data:        base.Data,
				Description: base.Description,
			}
		}
		if fieldErrs := validation.Struct(schema, prefix); fieldErrs != nil {
			verr.Merge(fieldErrs)
			continue
		}

		qtype, err := domain.ParseQuestionType(base.Type)
		if err != nil {
			verr.Add(prefix+"type", "The selected type is invalid.")
			continue
		}
		data, err := canonicalizeData(in.Data)
		if err != nil {
			verr.Add(prefix+"data", "The data field must be valid JSON.")
			continue
		}
		prepared = append(prepared, preparedQuestion{
			ref: in.ID,
			question: domain.Question{
				Question:    base.Question,
				Type:        qtype,
				Description: in.Description,
				Data:        data,
			},
		})
	}
	if !verr.Empty() {
		return nil, verr
	}
	return prepared, nil
}

// Create inserts every prepared question for a new survey.
func (s *QuestionSynchronizer) Create(ctx context.Context, repo domain.QuestionRepository, surveyID uint, prepared []preparedQuestion) ([]*domain.Question, error) {
	created := make([]*domain.Question, 0, len(prepared))
	for _, p := range prepared {
		q := p.question
		q.SurveyID = surveyID
		if err := repo.Create(ctx, &q); err != nil {
			return nil, err
		}
		created = append(created, &q)
	}
	return created, nil
}

// Sync makes the stored questions of a survey match the submission:
// stored ids missing from it are deleted, unmatched submissions are created
// and matched ones updated, in that order.
func (s *QuestionSynchronizer) Sync(ctx context.Context, repo domain.QuestionRepository, surveyID uint, existing []*domain.Question, prepared []preparedQuestion) error {
	stored := indexQuestions(existing)

	submitted := make(map[uint]bool, len(prepared))
	updates := make(map[uint]domain.Question, len(prepared))
	var additions []domain.Question
	for _, p := range prepared {
		if id, ok := p.ref.ID(); ok {
			submitted[id] = true
			if stored[id] != nil {
				// A repeated id keeps its last occurrence.
				updates[id] = p.question
				continue
			}
		}
		additions = append(additions, p.question)
	}

	var toDelete []uint
	for _, q := range existing {
		if !submitted[q.ID] {
			toDelete = append(toDelete, q.ID)
		}
	}
	if err := repo.DeleteByIDs(ctx, surveyID, toDelete); err != nil {
		return err
	}

	for i := range additions {
		q := additions[i]
		q.SurveyID = surveyID
		if err := repo.Create(ctx, &q); err != nil {
			return err
		}
	}

	for _, current := range existing {
		next, ok := updates[current.ID]
		if !ok {
			continue
		}
		next.ID = current.ID
		next.SurveyID = surveyID
		if err := repo.Update(ctx, &next); err != nil {
			return err
		}
	}
	return nil
}

func indexQuestions(questions []*domain.Question) map[uint]*domain.Question {
	index := make(map[uint]*domain.Question, len(questions))
	for _, q := range questions {
		index[q.ID] = q
	}
	return index
}

// canonicalizeData turns the submitted data value into its stored text.
// Strings are kept as they are, null becomes empty and anything else is
// stored as compact JSON with sorted keys.
func canonicalizeData(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// RenderData is the inverse used by responses: stored JSON is emitted
// decoded, other text as a string and empty text as null.
func RenderData(stored string) json.RawMessage {
	if stored == "" {
		return json.RawMessage("null")
	}
	trimmed := strings.TrimSpace(stored)
	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	encoded, err := json.Marshal(stored)
	if err != nil {
		return json.RawMessage("null")
	}
	return encoded
}
