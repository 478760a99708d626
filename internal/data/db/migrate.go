package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/quizgen-backend/internal/domain/account"
	"github.com/yungbote/quizgen-backend/internal/domain/quiz"
)

// AutoMigrateAll creates the schema if absent. The has-many on
// account.Account.Results puts the foreign key on quiz_result.username,
// referencing account.username with ON DELETE CASCADE.
func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&account.Account{},
		&quiz.QuizResult{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func (s *Service) AutoMigrateAll() error {
	return AutoMigrateAll(s.db)
}
