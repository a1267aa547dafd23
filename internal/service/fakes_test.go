package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"seungpyo.lee/SurveyBuilder/internal/cache"
	"seungpyo.lee/SurveyBuilder/internal/domain"
)

// memoryStore is an in-memory survey/question store with snapshot
// transactions, enough to observe what the services write.
type memoryStore struct {
	mu        sync.Mutex
	surveys   map[uint]*domain.Survey
	questions map[uint]*domain.Question
	nextID    uint
	nextQID   uint

	failQuestionCreate bool
	creates            int
	updates            int
	deletes            int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		surveys:   map[uint]*domain.Survey{},
		questions: map[uint]*domain.Question{},
	}
}

func (m *memoryStore) seedSurvey(s *domain.Survey, questions ...*domain.Question) {
	if s.Slug == "" {
		s.Slug = "seed"
	}
	m.surveys[s.ID] = s
	if s.ID > m.nextID {
		m.nextID = s.ID
	}
	for _, q := range questions {
		q.SurveyID = s.ID
		m.questions[q.ID] = q
		if q.ID > m.nextQID {
			m.nextQID = q.ID
		}
	}
}

func (m *memoryStore) questionsOf(surveyID uint) []*domain.Question {
	var out []*domain.Question
	for _, q := range m.questions {
		if q.SurveyID == surveyID {
			cp := *q
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memoryStore) resetCounters() {
	m.creates, m.updates, m.deletes = 0, 0, 0
}

// SurveyRepository

func (m *memoryStore) Create(_ context.Context, survey *domain.Survey) error {
	m.nextID++
	survey.ID = m.nextID
	survey.CreatedAt = time.Now()
	survey.UpdatedAt = survey.CreatedAt
	cp := *survey
	cp.Questions = nil
	m.surveys[survey.ID] = &cp
	return nil
}

func (m *memoryStore) GetByID(_ context.Context, id uint) (*domain.Survey, error) {
	s, ok := m.surveys[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	cp.Questions = m.questionsOf(id)
	return &cp, nil
}

func (m *memoryStore) ListByUser(_ context.Context, userID uint, page, perPage int) (*domain.Page[*domain.Survey], error) {
	var all []*domain.Survey
	for _, s := range m.surveys {
		if s.UserID == userID {
			cp := *s
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	start := (page - 1) * perPage
	items := []*domain.Survey{}
	if start < len(all) {
		end := start + perPage
		if end > len(all) {
			end = len(all)
		}
		items = all[start:end]
	}
	return &domain.Page[*domain.Survey]{Items: items, Total: int64(len(all)), Page: page, PerPage: perPage}, nil
}

func (m *memoryStore) Update(_ context.Context, survey *domain.Survey) error {
	if _, ok := m.surveys[survey.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *survey
	cp.Questions = nil
	m.surveys[survey.ID] = &cp
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id uint) error {
	if _, ok := m.surveys[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.surveys, id)
	return nil
}

func (m *memoryStore) SlugExists(_ context.Context, slug string, exceptID uint) (bool, error) {
	for _, s := range m.surveys {
		if s.Slug == slug && s.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

// questionRepo exposes the question side of memoryStore.
type questionRepo struct{ m *memoryStore }

func (r questionRepo) ListBySurvey(_ context.Context, surveyID uint) ([]*domain.Question, error) {
	return r.m.questionsOf(surveyID), nil
}

func (r questionRepo) Create(_ context.Context, q *domain.Question) error {
	if r.m.failQuestionCreate {
		return errors.New("insert failed")
	}
	r.m.creates++
	r.m.nextQID++
	q.ID = r.m.nextQID
	cp := *q
	r.m.questions[q.ID] = &cp
	return nil
}

func (r questionRepo) Update(_ context.Context, q *domain.Question) error {
	current, ok := r.m.questions[q.ID]
	if !ok || current.SurveyID != q.SurveyID {
		return domain.ErrNotFound
	}
	r.m.updates++
	cp := *q
	r.m.questions[q.ID] = &cp
	return nil
}

func (r questionRepo) DeleteByIDs(_ context.Context, surveyID uint, ids []uint) error {
	for _, id := range ids {
		if q, ok := r.m.questions[id]; ok && q.SurveyID == surveyID {
			r.m.deletes++
			delete(r.m.questions, id)
		}
	}
	return nil
}

func (r questionRepo) DeleteBySurvey(_ context.Context, surveyID uint) error {
	for id, q := range r.m.questions {
		if q.SurveyID == surveyID {
			delete(r.m.questions, id)
		}
	}
	return nil
}

// Transactor: restore a snapshot when fn fails.
func (m *memoryStore) WithinTransaction(ctx context.Context, fn func(domain.SurveyRepository, domain.QuestionRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	surveys := make(map[uint]*domain.Survey, len(m.surveys))
	for k, v := range m.surveys {
		surveys[k] = v
	}
	questions := make(map[uint]*domain.Question, len(m.questions))
	for k, v := range m.questions {
		questions[k] = v
	}
	nextID, nextQID := m.nextID, m.nextQID

	if err := fn(m, questionRepo{m}); err != nil {
		m.surveys, m.questions = surveys, questions
		m.nextID, m.nextQID = nextID, nextQID
		return err
	}
	return nil
}

// fakeImages records saved and deleted paths without touching disk.
type fakeImages struct {
	saved   []string
	deleted []string
	saveErr error
}

func (f *fakeImages) Save(payload string) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	path := "images/new-" + string(rune('a'+len(f.saved))) + ".png"
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeImages) Delete(path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeImages) URL(path string) string {
	return "/" + path
}

// memoryCache is a TokenCache kept in a map.
type memoryCache struct {
	entries   map[string]cache.CachedToken
	deleted   []string
	deleteErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]cache.CachedToken{}}
}

func (c *memoryCache) Set(_ context.Context, id string, token cache.CachedToken, _ time.Duration) error {
	c.entries[id] = token
	return nil
}

func (c *memoryCache) Get(_ context.Context, id string) (*cache.CachedToken, error) {
	token, ok := c.entries[id]
	if !ok {
		return nil, cache.ErrMiss
	}
	return &token, nil
}

func (c *memoryCache) Delete(_ context.Context, id string) error {
	if c.deleteErr != nil {
		return c.deleteErr
	}
	c.deleted = append(c.deleted, id)
	delete(c.entries, id)
	return nil
}
