package quiz

import (
	"context"

	"gorm.io/gorm"

	types "github.com/yungbote/quizgen-backend/internal/domain/quiz"
	"github.com/yungbote/quizgen-backend/internal/platform/logger"
)

type QuizResultRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.QuizResult) ([]*types.QuizResult, error)
	ListByUsername(ctx context.Context, tx *gorm.DB, username string) ([]*types.QuizResult, error)
}

type quizResultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizResultRepo(db *gorm.DB, baseLog *logger.Logger) QuizResultRepo {
	repoLog := baseLog.With("repo", "QuizResultRepo")
	return &quizResultRepo{db: db, log: repoLog}
}

func (r *quizResultRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.QuizResult) ([]*types.QuizResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.QuizResult{}, nil
	}

	// Omit the association so gorm never tries to upsert the account row.
	if err := transaction.WithContext(ctx).Omit("Account").Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByUsername returns rows in insertion order.
func (r *quizResultRepo) ListByUsername(ctx context.Context, tx *gorm.DB, username string) ([]*types.QuizResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.QuizResult
	if err := transaction.WithContext(ctx).
		Where("username = ?", username).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
