package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/volleyball-bot/internal/domain/player"
	"github.com/riskibarqy/volleyball-bot/internal/domain/survey"
	"github.com/riskibarqy/volleyball-bot/internal/platform/logging"
	"github.com/riskibarqy/volleyball-bot/internal/platform/resilience"
)

// SurveyStep is the outcome of a registration action: either the question to
// show next or the completion result.
type SurveyStep struct {
	Question   survey.Question
	Position   int
	Total      int
	Completed  bool
	SkillValue int
}

type RegistrationService struct {
	playerRepo  player.Repository
	catalogRepo survey.CatalogRepository
	sessions    survey.SessionStore
	logger      *logging.Logger
	locks       resilience.KeyedMutex
	now         func() time.Time
}

func NewRegistrationService(
	playerRepo player.Repository,
	catalogRepo survey.CatalogRepository,
	sessions survey.SessionStore,
	logger *logging.Logger,
) *RegistrationService {
	if logger == nil {
		logger = logging.Default()
	}

	return &RegistrationService{
		playerRepo:  playerRepo,
		catalogRepo: catalogRepo,
		sessions:    sessions,
		logger:      logger,
		now:         time.Now,
	}
}

// Begin registers a new player and opens a survey session at the first question.
func (s *RegistrationService) Begin(ctx context.Context, identity int64, handle string) (SurveyStep, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistrationService.Begin")
	defer span.End()

	if identity <= 0 {
		return SurveyStep{}, fmt.Errorf("%w: identity must be greater than zero", ErrInvalidInput)
	}

	unlock := s.locks.Lock(identity)
	defer unlock()

	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return SurveyStep{}, err
	}

	now := s.now().UTC()
	candidate := player.Player{
		Identity:  identity,
		Handle:    strings.TrimSpace(handle),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := candidate.Validate(); err != nil {
		return SurveyStep{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.playerRepo.Create(ctx, candidate)
	if err != nil {
		if errors.Is(err, player.ErrAlreadyExists) {
			return SurveyStep{}, fmt.Errorf("%w: identity=%d", ErrAlreadyRegistered, identity)
		}
		return SurveyStep{}, dependencyError("create player", err)
	}

	step, err := s.startSession(ctx, created, catalog)
	if err != nil {
		return SurveyStep{}, s.undoRegistration(ctx, created, err)
	}

	s.logger.InfoContext(ctx, "player registered", "identity", identity, "player_id", created.ID)
	return step, nil
}

// undoRegistration removes a player whose survey could not be opened so a
// retried register starts from scratch.
func (s *RegistrationService) undoRegistration(ctx context.Context, created player.Player, cause error) error {
	if err := s.playerRepo.Delete(context.WithoutCancel(ctx), created.ID); err != nil {
		s.logger.ErrorContext(ctx, "remove player after failed registration", "identity", created.Identity, "player_id", created.ID, "error", err)
		return errors.Join(cause, dependencyError("remove player", err))
	}
	return cause
}

// SubmitAnswer records the chosen option for the pending question.
func (s *RegistrationService) SubmitAnswer(ctx context.Context, identity, optionID int64) (SurveyStep, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistrationService.SubmitAnswer")
	defer span.End()

	unlock := s.locks.Lock(identity)
	defer unlock()

	session, exists, err := s.sessions.Get(ctx, identity)
	if err != nil {
		return SurveyStep{}, dependencyError("get survey session", err)
	}
	if !exists {
		return SurveyStep{}, fmt.Errorf("%w: identity=%d", ErrNoActiveSession, identity)
	}

	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return SurveyStep{}, err
	}

	completed, err := session.Answer(catalog, optionID, s.now().UTC())
	if err != nil {
		return SurveyStep{}, err
	}

	if !completed {
		if err := s.sessions.Save(ctx, session); err != nil {
			return SurveyStep{}, dependencyError("save survey session", err)
		}
		return questionStep(catalog, session.Position), nil
	}

	registered, exists, err := s.playerRepo.GetByIdentity(ctx, identity)
	if err != nil {
		return SurveyStep{}, dependencyError("get player", err)
	}
	if !exists {
		return SurveyStep{}, fmt.Errorf("%w: identity=%d", ErrPlayerNotFound, identity)
	}

	chosen := survey.Resolve(catalog, session.Answers)
	answers := make([]player.Answer, 0, len(chosen))
	for _, c := range chosen {
		answers = append(answers, player.Answer{QuestionID: c.QuestionID, OptionID: c.OptionID})
	}
	skill := survey.Score(catalog, session.Answers)

	if err := s.playerRepo.CompleteSurvey(ctx, registered.ID, answers, skill); err != nil {
		return SurveyStep{}, dependencyError("complete survey", err)
	}
	if err := s.sessions.Delete(ctx, identity); err != nil {
		s.logger.WarnContext(ctx, "delete completed survey session failed", "identity", identity, "error", err)
		if err := s.sessions.Save(ctx, session); err != nil {
			s.logger.WarnContext(ctx, "mark survey session completed failed", "identity", identity, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "survey completed", "identity", identity, "player_id", registered.ID, "skill_value", skill)

	return SurveyStep{Total: catalog.Len(), Completed: true, SkillValue: skill}, nil
}

// CurrentQuestion re-presents the pending question of an open session.
func (s *RegistrationService) CurrentQuestion(ctx context.Context, identity int64) (SurveyStep, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistrationService.CurrentQuestion")
	defer span.End()

	session, exists, err := s.sessions.Get(ctx, identity)
	if err != nil {
		return SurveyStep{}, dependencyError("get survey session", err)
	}
	if !exists {
		return SurveyStep{}, fmt.Errorf("%w: identity=%d", ErrNoActiveSession, identity)
	}

	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return SurveyStep{}, err
	}
	if session.Completed(catalog) {
		return SurveyStep{}, fmt.Errorf("%w: identity=%d survey already answered", ErrNoActiveSession, identity)
	}

	return questionStep(catalog, session.Position), nil
}

// Retake discards any open session and restarts the survey for a registered player.
func (s *RegistrationService) Retake(ctx context.Context, identity int64) (SurveyStep, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistrationService.Retake")
	defer span.End()

	unlock := s.locks.Lock(identity)
	defer unlock()

	registered, exists, err := s.playerRepo.GetByIdentity(ctx, identity)
	if err != nil {
		return SurveyStep{}, dependencyError("get player", err)
	}
	if !exists {
		return SurveyStep{}, fmt.Errorf("%w: identity=%d", ErrPlayerNotFound, identity)
	}

	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return SurveyStep{}, err
	}

	return s.startSession(ctx, registered, catalog)
}

func (s *RegistrationService) startSession(ctx context.Context, registered player.Player, catalog *survey.Catalog) (SurveyStep, error) {
	if catalog.Len() == 0 {
		if err := s.playerRepo.CompleteSurvey(ctx, registered.ID, nil, 0); err != nil {
			return SurveyStep{}, dependencyError("complete empty survey", err)
		}
		return SurveyStep{Completed: true}, nil
	}

	session := survey.NewSession(registered.Identity, s.now().UTC())
	if err := s.sessions.Save(ctx, session); err != nil {
		return SurveyStep{}, dependencyError("save survey session", err)
	}

	return questionStep(catalog, session.Position), nil
}

func (s *RegistrationService) loadCatalog(ctx context.Context) (*survey.Catalog, error) {
	catalog, err := s.catalogRepo.LoadCatalog(ctx)
	if err != nil {
		return nil, dependencyError("load survey catalog", err)
	}
	return catalog, nil
}

func questionStep(catalog *survey.Catalog, position int) SurveyStep {
	q, _ := catalog.QuestionAt(position)
	return SurveyStep{
		Question: q,
		Position: position,
		Total:    catalog.Len(),
	}
}
