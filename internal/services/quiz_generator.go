package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	types "github.com/yungbote/quizgen-backend/internal/domain/quiz"
	"github.com/yungbote/quizgen-backend/internal/observability"
	"github.com/yungbote/quizgen-backend/internal/platform/apierr"
	"github.com/yungbote/quizgen-backend/internal/platform/cache"
	"github.com/yungbote/quizgen-backend/internal/platform/llm"
	"github.com/yungbote/quizgen-backend/internal/platform/logger"
	"github.com/yungbote/quizgen-backend/internal/quiz"
)

type QuizGenerator interface {
	// GenerateQuiz returns a memoized quiz for an identical (text, difficulty)
	// pair instead of calling the model again.
	GenerateQuiz(ctx context.Context, sourceText string, difficulty types.Difficulty) ([]types.Question, error)
}

type QuizGeneratorConfig struct {
	QuestionCount int
	Generation    llm.GenerationConfig
}

type quizGenerator struct {
	log     *logger.Logger
	client  llm.Client
	prompts *quiz.Prompts
	memo    cache.Store
	cfg     QuizGeneratorConfig
	group   singleflight.Group
}

func NewQuizGenerator(log *logger.Logger, client llm.Client, prompts *quiz.Prompts, memo cache.Store, cfg QuizGeneratorConfig) QuizGenerator {
	if cfg.QuestionCount <= 0 {
		cfg.QuestionCount = quiz.DefaultQuestionCount
	}
	if memo == nil {
		memo = cache.NewLRU(cache.DefaultLRUCapacity, 0)
	}
	if prompts == nil {
		prompts = quiz.LoadPrompts(log)
	}
	return &quizGenerator{
		log:     log.With("service", "QuizGenerator"),
		client:  client,
		prompts: prompts,
		memo:    memo,
		cfg:     cfg,
	}
}

func memoKey(sourceText string, difficulty types.Difficulty, count int) string {
	sum := sha256.Sum256([]byte(sourceText))
	return fmt.Sprintf("v1:%s:%d:%s", difficulty, count, hex.EncodeToString(sum[:]))
}

func (qg *quizGenerator) GenerateQuiz(ctx context.Context, sourceText string, difficulty types.Difficulty) ([]types.Question, error) {
	ctx, span := observability.Tracer().Start(ctx, "quiz.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("quiz.difficulty", difficulty.String()),
		attribute.Int("quiz.source_len", len(sourceText)),
	)

	key := memoKey(sourceText, difficulty, qg.cfg.QuestionCount)
	if qs, ok := qg.lookup(ctx, key); ok {
		span.SetAttributes(attribute.Bool("quiz.memo_hit", true))
		observability.Current().IncQuizGeneration(difficulty.String(), "memo")
		return qs, nil
	}

	ch := qg.group.DoChan(key, func() (any, error) {
		// detach from the first caller so a canceled request does not fail
		// everyone else waiting on the same key
		callCtx := context.WithoutCancel(ctx)
		return qg.generate(callCtx, key, sourceText, difficulty)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, "generation failed")
			return nil, res.Err
		}
		return res.Val.([]types.Question), nil
	}
}

func (qg *quizGenerator) lookup(ctx context.Context, key string) ([]types.Question, bool) {
	raw, ok, err := qg.memo.Get(ctx, key)
	if err != nil {
		qg.log.Warn("Quiz memo read failed; treating as miss", "backend", qg.memo.Name(), "error", err)
		observability.Current().IncQuizCache(qg.memo.Name(), "error")
		return nil, false
	}
	if !ok {
		observability.Current().IncQuizCache(qg.memo.Name(), "miss")
		return nil, false
	}
	var qs []types.Question
	if err := json.Unmarshal(raw, &qs); err != nil || len(qs) == 0 {
		qg.log.Warn("Quiz memo entry unreadable; treating as miss", "backend", qg.memo.Name())
		observability.Current().IncQuizCache(qg.memo.Name(), "error")
		return nil, false
	}
	observability.Current().IncQuizCache(qg.memo.Name(), "hit")
	return qs, true
}

func (qg *quizGenerator) generate(ctx context.Context, key, sourceText string, difficulty types.Difficulty) ([]types.Question, error) {
	start := time.Now()
	prompt := qg.prompts.Build(sourceText, difficulty, qg.cfg.QuestionCount)

	reply, err := qg.client.Generate(ctx, qg.prompts.FewShot(), prompt, qg.cfg.Generation)
	if err != nil {
		observability.Current().IncQuizGeneration(difficulty.String(), "llm_error")
		qg.log.Error("Quiz generation call failed",
			"provider", qg.client.Provider(),
			"model", qg.client.Model(),
			"duration", time.Since(start).String(),
			"error", err,
		)
		if errors.Is(err, llm.ErrMissingAPIKey) {
			return nil, apierr.New(http.StatusServiceUnavailable, "generation_unavailable", err)
		}
		return nil, apierr.New(http.StatusBadGateway, "generation_failed", err)
	}

	questions, err := quiz.ParseReply(reply, qg.cfg.QuestionCount)
	if err != nil {
		observability.Current().IncQuizGeneration(difficulty.String(), "parse_error")
		qg.log.Warn("Quiz reply did not parse", "model", qg.client.Model(), "error", err)
		return nil, apierr.New(http.StatusBadGateway, "generation_parse_failed", err)
	}
	if len(questions) < qg.cfg.QuestionCount {
		qg.log.Warn("Model returned fewer questions than requested",
			"requested", qg.cfg.QuestionCount,
			"returned", len(questions),
		)
	}

	if raw, mErr := json.Marshal(questions); mErr == nil {
		if sErr := qg.memo.Set(ctx, key, raw); sErr != nil {
			qg.log.Warn("Quiz memo write failed", "backend", qg.memo.Name(), "error", sErr)
		}
	}
	observability.Current().IncQuizGeneration(difficulty.String(), "ok")
	qg.log.Info("Quiz generated",
		"difficulty", difficulty.String(),
		"questions", len(questions),
		"duration", time.Since(start).String(),
	)
	return questions, nil
}
