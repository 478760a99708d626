package app

import (
	"fmt"
	"strings"

	"github.com/yungbote/quizgen-backend/internal/platform/cache"
	"github.com/yungbote/quizgen-backend/internal/platform/gemini"
	"github.com/yungbote/quizgen-backend/internal/platform/llm"
	"github.com/yungbote/quizgen-backend/internal/platform/logger"
	"github.com/yungbote/quizgen-backend/internal/platform/openai"
)

type Clients struct {
	LLM   llm.Client
	Memo  cache.Store
	Redis *cache.Redis
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// LLM
	var (
		client llm.Client
		err    error
	)
	switch strings.ToLower(cfg.LLMProvider) {
	case ProviderGemini, "":
		client, err = gemini.NewClient(log, gemini.ConfigFromEnv())
	case ProviderOpenAI:
		client, err = openai.NewClient(log, openai.ConfigFromEnv())
	default:
		return Clients{}, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
	if err != nil {
		return Clients{}, fmt.Errorf("init %s client: %w", cfg.LLMProvider, err)
	}

	// Quiz memo: redis when configured, in-process LRU otherwise
	out := Clients{LLM: client}
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		r, err := cache.NewRedis(log, cfg.Redis)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis quiz cache: %w", err)
		}
		out.Redis = r
		out.Memo = r
	} else {
		out.Memo = cache.NewLRU(cfg.QuizCacheSize, cfg.QuizCacheTTL)
	}
	log.Info("Quiz memo ready", "backend", out.Memo.Name(), "llm_provider", client.Provider(), "llm_model", client.Model())
	return out, nil
}

func (c Clients) Close() {
	if c.Memo != nil {
		_ = c.Memo.Close()
	}
}
