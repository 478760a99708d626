package app

import (
	"fmt"

	"github.com/yungbote/quizgen-backend/internal/platform/logger"
	"github.com/yungbote/quizgen-backend/internal/quiz"
	"github.com/yungbote/quizgen-backend/internal/services"
	"github.com/yungbote/quizgen-backend/internal/session"
)

type Services struct {
	Credentials  services.CredentialStore
	QuizGen      services.QuizGenerator
	Sessions     services.SessionController
	SessionStore *session.MemoryStore
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	tokens, err := session.NewTokenIssuer(cfg.JWTSecretKey, cfg.SessionTTL)
	if err != nil {
		return Services{}, fmt.Errorf("init session tokens: %w", err)
	}

	creds := services.NewCredentialStore(log, reposet.Account, reposet.QuizResult, cfg.BcryptCost)
	gen := services.NewQuizGenerator(log, clients.LLM, quiz.LoadPrompts(log), clients.Memo, services.QuizGeneratorConfig{
		QuestionCount: cfg.QuestionCount,
		Generation:    cfg.Generation,
	})
	store := session.NewMemoryStore(log, cfg.SessionIdleTTL)

	return Services{
		Credentials:  creds,
		QuizGen:      gen,
		Sessions:     services.NewSessionController(log, store, tokens, creds, gen),
		SessionStore: store,
	}, nil
}
