package app

import (
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/quizgen-backend/internal/data/db"
	"github.com/yungbote/quizgen-backend/internal/platform/cache"
	"github.com/yungbote/quizgen-backend/internal/platform/envutil"
	"github.com/yungbote/quizgen-backend/internal/platform/llm"
	"github.com/yungbote/quizgen-backend/internal/platform/logger"
	"github.com/yungbote/quizgen-backend/internal/quiz"
	"github.com/yungbote/quizgen-backend/internal/session"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Port        string
	ServiceName string
	Environment string
	CORSOrigins []string

	DB db.Config

	JWTSecretKey   string
	SessionTTL     time.Duration
	SessionIdleTTL time.Duration
	BcryptCost     int

	LLMProvider   string
	Generation    llm.GenerationConfig
	QuestionCount int

	QuizCacheSize int
	QuizCacheTTL  time.Duration
	Redis         cache.RedisConfig
}

// LoadEnv reads .env when present. Variables already set win.
func LoadEnv() error {
	return godotenv.Load()
}

func LoadConfig(log *logger.Logger) Config {
	defaults := llm.DefaultGenerationConfig()
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "quizgen-backend"),
		Environment: envutil.String("APP_ENV", "development"),
		CORSOrigins: envutil.List("CORS_ALLOW_ORIGINS", nil),
		DB: db.Config{
			Driver:      envutil.String("DB_DRIVER", db.DriverSQLite),
			SQLitePath:  envutil.String("SQLITE_PATH", "quiz_app.db"),
			PostgresDSN: envutil.String("POSTGRES_DSN", ""),
		},
		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", ""),
		SessionTTL:     envutil.Seconds("SESSION_TOKEN_TTL_SECONDS", 24*time.Hour),
		SessionIdleTTL: envutil.Seconds("SESSION_IDLE_TTL_SECONDS", session.DefaultIdleTTL),
		BcryptCost:     envutil.Int("BCRYPT_COST", 0),
		LLMProvider:    envutil.String("LLM_PROVIDER", ProviderGemini),
		Generation: llm.GenerationConfig{
			Temperature:     envutil.Float("LLM_TEMPERATURE", defaults.Temperature),
			TopP:            envutil.Float("LLM_TOP_P", defaults.TopP),
			TopK:            envutil.Int("LLM_TOP_K", defaults.TopK),
			MaxOutputTokens: envutil.Int("LLM_MAX_OUTPUT_TOKENS", defaults.MaxOutputTokens),
			JSON:            true,
		},
		QuestionCount: envutil.Int("QUIZ_QUESTION_COUNT", quiz.DefaultQuestionCount),
		QuizCacheSize: envutil.Int("QUIZ_CACHE_SIZE", cache.DefaultLRUCapacity),
		QuizCacheTTL:  envutil.Seconds("QUIZ_CACHE_TTL_SECONDS", 0),
		Redis: cache.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			TTL:      envutil.Seconds("QUIZ_CACHE_TTL_SECONDS", 0),
		},
	}
	if cfg.JWTSecretKey == "" {
		cfg.JWTSecretKey = "defaultsecret"
		log.Warn("JWT_SECRET_KEY not set; using insecure default")
	}
	if cfg.QuestionCount <= 0 {
		cfg.QuestionCount = quiz.DefaultQuestionCount
	}
	return cfg
}
