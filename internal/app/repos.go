package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/quizgen-backend/internal/data/repos"
	"github.com/yungbote/quizgen-backend/internal/platform/logger"
)

type Repos struct {
	Account    repos.AccountRepo
	QuizResult repos.QuizResultRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Account:    repos.NewAccountRepo(db, log),
		QuizResult: repos.NewQuizResultRepo(db, log),
	}
}
