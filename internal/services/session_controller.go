package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	types "github.com/yungbote/quizgen-backend/internal/domain/quiz"
	"github.com/yungbote/quizgen-backend/internal/observability"
	"github.com/yungbote/quizgen-backend/internal/platform/apierr"
	"github.com/yungbote/quizgen-backend/internal/platform/logger"
	"github.com/yungbote/quizgen-backend/internal/session"
)

// SessionController drives one client's session through the state machine.
type SessionController interface {
	Start(ctx context.Context) (*session.Session, string, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*session.Session, error)
	Act(ctx context.Context, sessionID uuid.UUID, in session.Input) (*session.Session, error)
	History(ctx context.Context, sessionID uuid.UUID) ([]*types.QuizResult, error)
	ParseToken(tokenString string) (uuid.UUID, error)
}

type sessionController struct {
	log     *logger.Logger
	store   session.Store
	tokens  *session.TokenIssuer
	effects *sessionEffects
}

func NewSessionController(log *logger.Logger, store session.Store, tokens *session.TokenIssuer, creds CredentialStore, gen QuizGenerator) SessionController {
	serviceLog := log.With("service", "SessionController")
	return &sessionController{
		log:     serviceLog,
		store:   store,
		tokens:  tokens,
		effects: &sessionEffects{log: serviceLog, creds: creds, gen: gen},
	}
}

func sessionNotFound(err error) error {
	return apierr.New(http.StatusUnauthorized, "session_not_found", err)
}

func (sc *sessionController) Start(ctx context.Context) (*session.Session, string, error) {
	s, err := sc.store.Create(ctx)
	if err != nil {
		return nil, "", err
	}
	token, err := sc.tokens.Issue(s.ID)
	if err != nil {
		sc.store.Delete(ctx, s.ID)
		sc.log.Error("Failed to sign session token", "error", err)
		return nil, "", err
	}
	sc.log.Debug("Session started", "session_id", s.ID.String())
	return s, token, nil
}

func (sc *sessionController) ParseToken(tokenString string) (uuid.UUID, error) {
	return sc.tokens.Parse(strings.TrimSpace(tokenString))
}

func (sc *sessionController) Get(ctx context.Context, sessionID uuid.UUID) (*session.Session, error) {
	s, err := sc.store.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, sessionNotFound(err)
	}
	return s, err
}

func (sc *sessionController) Act(ctx context.Context, sessionID uuid.UUID, in session.Input) (*session.Session, error) {
	ctx, span := observability.Tracer().Start(ctx, "session.act")
	defer span.End()
	span.SetAttributes(attribute.String("session.action", string(in.Action)))

	var from session.State
	s, err := sc.store.Update(ctx, sessionID, func(s *session.Session) error {
		from = s.State
		return session.Dispatch(ctx, s, in, sc.effects)
	})
	switch {
	case errors.Is(err, session.ErrNotFound):
		return nil, sessionNotFound(err)
	case errors.Is(err, session.ErrInvalidTransition):
		observability.Current().IncSessionAction(string(from), string(in.Action), "rejected")
		return nil, apierr.New(http.StatusConflict, "invalid_transition", err)
	case err != nil:
		observability.Current().IncSessionAction(string(from), string(in.Action), "error")
		sc.log.Warn("Session action failed",
			"session_id", sessionID.String(),
			"state", string(from),
			"action", string(in.Action),
			"error", err,
		)
		return nil, err
	}
	observability.Current().IncSessionAction(string(from), string(in.Action), "ok")
	span.SetAttributes(attribute.String("session.state", string(s.State)))
	return s, nil
}

func (sc *sessionController) History(ctx context.Context, sessionID uuid.UUID) ([]*types.QuizResult, error) {
	s, err := sc.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !s.Authenticated || s.Username == "" {
		return nil, apierr.New(http.StatusForbidden, "not_authenticated", errors.New("log in to view history"))
	}
	return sc.effects.FetchHistory(ctx, s.Username)
}

// sessionEffects adapts the services to session.Effects.
type sessionEffects struct {
	log   *logger.Logger
	creds CredentialStore
	gen   QuizGenerator
}

func (e *sessionEffects) Authenticate(ctx context.Context, username, password string) (bool, error) {
	return e.creds.Authenticate(ctx, username, password)
}

func (e *sessionEffects) CreateAccount(ctx context.Context, username, password string) (bool, error) {
	return e.creds.CreateAccount(ctx, username, password)
}

func (e *sessionEffects) GenerateQuiz(ctx context.Context, sourceText string, difficulty types.Difficulty) ([]types.Question, error) {
	return e.gen.GenerateQuiz(ctx, sourceText, difficulty)
}

// RecordAttempt writes one row per displayed question, in order, sharing an
// attempt id. The batch is not atomic: a failure leaves earlier rows behind.
func (e *sessionEffects) RecordAttempt(ctx context.Context, username string, answers []types.Answer) (uuid.UUID, error) {
	attemptID := uuid.New()
	score := 0
	for i, a := range answers {
		row := &types.QuizResult{
			Username:      username,
			AttemptID:     attemptID,
			Question:      a.Question,
			CorrectAnswer: a.Correct,
		}
		if a.Selected != nil {
			row.UserAnswer = *a.Selected
			row.IsCorrect = *a.Selected == a.Correct
		}
		if row.IsCorrect {
			score++
		}
		if err := e.creds.RecordResult(ctx, row); err != nil {
			e.log.Error("Quiz attempt partially recorded",
				"attempt_id", attemptID.String(),
				"written", i,
				"total", len(answers),
				"error", err,
			)
			return uuid.Nil, err
		}
	}
	observability.Current().ObserveQuizSubmitted(score, len(answers))
	return attemptID, nil
}

func (e *sessionEffects) FetchHistory(ctx context.Context, username string) ([]*types.QuizResult, error) {
	return e.creds.FetchHistory(ctx, username)
}
