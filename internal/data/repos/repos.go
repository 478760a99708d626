package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/quizgen-backend/internal/data/repos/account"
	"github.com/yungbote/quizgen-backend/internal/data/repos/quiz"
	"github.com/yungbote/quizgen-backend/internal/platform/logger"
)

type AccountRepo = account.AccountRepo
type QuizResultRepo = quiz.QuizResultRepo

func NewAccountRepo(db *gorm.DB, log *logger.Logger) AccountRepo {
	return account.NewAccountRepo(db, log)
}

func NewQuizResultRepo(db *gorm.DB, log *logger.Logger) QuizResultRepo {
	return quiz.NewQuizResultRepo(db, log)
}
