package service

import (
	"context"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"seungpyo.lee/SurveyBuilder/internal/domain"
	"seungpyo.lee/SurveyBuilder/pkg/logger"
)

// surveyService implements domain.SurveyService.
type surveyService struct {
	surveys   domain.SurveyRepository
	tx        domain.Transactor
	images    domain.ImageStore
	questions *QuestionSynchronizer
	policy    *bluemonday.Policy

	// enforceUpdateOwnership rejects updates by anyone but the owner.
	// When false any authenticated user may update any survey.
	enforceUpdateOwnership bool
}

// NewSurveyService creates a SurveyService. Reads go through surveys;
// writes run inside tx.
func NewSurveyService(surveys domain.SurveyRepository, tx domain.Transactor, images domain.ImageStore, enforceUpdateOwnership bool) domain.SurveyService {
	return &surveyService{
		surveys:                surveys,
		tx:                     tx,
		images:                 images,
		questions:              NewQuestionSynchronizer(),
		policy:                 bluemonday.UGCPolicy(),
		enforceUpdateOwnership: enforceUpdateOwnership,
	}
}

// List returns one page of the caller's surveys, newest first.
func (s *surveyService) List(ctx context.Context, user *domain.User, page int) (*domain.Page[*domain.Survey], error) {
	if page < 1 {
		page = 1
	}
	return s.surveys.ListByUser(ctx, user.ID, page, domain.SurveysPerPage)
}

// Create stores a new survey owned by the caller together with its questions.
func (s *surveyService) Create(ctx context.Context, user *domain.User, input domain.SurveyInput) (*domain.Survey, error) {
	prepared, err := s.questions.Prepare(input.Questions, nil)
	if err != nil {
		return nil, err
	}

	survey := &domain.Survey{
		UserID: user.ID,
		Title:  input.Title,
		Status: input.Status,
	}
	s.applyOptional(survey, input)

	newImage, err := s.saveImage(input.Image)
	if err != nil {
		return nil, err
	}
	if newImage != "" {
		survey.Image = &newImage
	}

	err = s.tx.WithinTransaction(ctx, func(surveys domain.SurveyRepository, questions domain.QuestionRepository) error {
		sl, err := uniqueSlug(ctx, surveys, survey.Title, 0)
		if err != nil {
			return err
		}
		survey.Slug = sl
		if err := surveys.Create(ctx, survey); err != nil {
			return err
		}
		created, err := s.questions.Create(ctx, questions, survey.ID, prepared)
		if err != nil {
			return err
		}
		survey.Questions = created
		return nil
	})
	if err != nil {
		s.discardImage(newImage)
		return nil, err
	}

	logger.AppLogger.Info("survey created",
		zap.Uint("survey_id", survey.ID),
		zap.Uint("user_id", user.ID),
		zap.Int("questions", len(survey.Questions)))
	return survey, nil
}

// Show returns a survey the caller owns.
func (s *surveyService) Show(ctx context.Context, user *domain.User, id uint) (*domain.Survey, error) {
	survey, err := s.surveys.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if survey.UserID != user.ID {
		return nil, domain.ErrForbidden
	}
	return survey, nil
}

// Update replaces the survey fields and reconciles its questions. A new
// image replaces the old one, which is removed only after the commit.
func (s *surveyService) Update(ctx context.Context, user *domain.User, id uint, input domain.SurveyInput) (*domain.Survey, error) {
	survey, err := s.surveys.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if survey.UserID != user.ID {
		if s.enforceUpdateOwnership {
			return nil, domain.ErrForbidden
		}
		logger.AppLogger.Warn("survey updated by non-owner",
			zap.Uint("survey_id", survey.ID),
			zap.Uint("owner_id", survey.UserID),
			zap.Uint("user_id", user.ID))
	}

	prepared, err := s.questions.Prepare(input.Questions, survey.Questions)
	if err != nil {
		return nil, err
	}

	oldImage := survey.Image
	newImage, err := s.saveImage(input.Image)
	if err != nil {
		return nil, err
	}

	survey.Title = input.Title
	survey.Status = input.Status
	s.applyOptional(survey, input)
	if newImage != "" {
		survey.Image = &newImage
	}

	err = s.tx.WithinTransaction(ctx, func(surveys domain.SurveyRepository, questions domain.QuestionRepository) error {
		sl, err := uniqueSlug(ctx, surveys, survey.Title, survey.ID)
		if err != nil {
			return err
		}
		survey.Slug = sl
		if err := surveys.Update(ctx, survey); err != nil {
			return err
		}
		existing, err := questions.ListBySurvey(ctx, survey.ID)
		if err != nil {
			return err
		}
		if err := s.questions.Sync(ctx, questions, survey.ID, existing, prepared); err != nil {
			return err
		}
		survey.Questions, err = questions.ListBySurvey(ctx, survey.ID)
		return err
	})
	if err != nil {
		s.discardImage(newImage)
		return nil, err
	}

	if newImage != "" && oldImage != nil {
		s.discardImage(*oldImage)
	}
	logger.AppLogger.Info("survey updated",
		zap.Uint("survey_id", survey.ID),
		zap.Uint("user_id", user.ID),
		zap.Int("questions", len(survey.Questions)))
	return survey, nil
}

// Destroy deletes a survey the caller owns, its questions and its image.
func (s *surveyService) Destroy(ctx context.Context, user *domain.User, id uint) error {
	survey, err := s.Show(ctx, user, id)
	if err != nil {
		return err
	}
	err = s.tx.WithinTransaction(ctx, func(surveys domain.SurveyRepository, questions domain.QuestionRepository) error {
		if err := questions.DeleteBySurvey(ctx, survey.ID); err != nil {
			return err
		}
		return surveys.Delete(ctx, survey.ID)
	})
	if err != nil {
		return err
	}
	if survey.Image != nil {
		s.discardImage(*survey.Image)
	}
	logger.AppLogger.Info("survey deleted", zap.Uint("survey_id", survey.ID), zap.Uint("user_id", user.ID))
	return nil
}

// applyOptional copies description and expire_date when they were submitted.
func (s *surveyService) applyOptional(survey *domain.Survey, input domain.SurveyInput) {
	if input.Description.Set {
		survey.Description = nil
		if input.Description.Value != nil {
			clean := s.policy.Sanitize(*input.Description.Value)
			survey.Description = &clean
		}
	}
	if input.ExpireDate.Set {
		survey.ExpireDate = input.ExpireDate.Value
	}
}

func (s *surveyService) saveImage(payload *string) (string, error) {
	if payload == nil || *payload == "" {
		return "", nil
	}
	path, err := s.images.Save(*payload)
	if err != nil {
		return "", fmt.Errorf("failed to save survey image: %w", err)
	}
	return path, nil
}

// discardImage removes a file that is no longer referenced. Failures are
// logged; the request has already succeeded or failed on its own.
func (s *surveyService) discardImage(path string) {
	if path == "" {
		return
	}
	if err := s.images.Delete(path); err != nil {
		logger.ErrorLogger.Error("failed to delete survey image", zap.String("path", path), zap.Error(err))
	}
}

// uniqueSlug derives a slug from title, appending -1, -2, ... while another
// survey already uses it.
func uniqueSlug(ctx context.Context, surveys domain.SurveyRepository, title string, exceptID uint) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "survey"
	}
	candidate := base
	for i := 1; ; i++ {
		taken, err := surveys.SlugExists(ctx, candidate, exceptID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
