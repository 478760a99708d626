package account

import (
	"time"

	"github.com/yungbote/quizgen-backend/internal/domain/quiz"
)

// Account is a registered user. Username is the natural key that quiz
// results reference; deleting an account removes its results.
type Account struct {
	ID           uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string            `gorm:"uniqueIndex;not null;column:username" json:"username"`
	PasswordHash string            `gorm:"not null;column:password_hash" json:"-"`
	CreatedAt    time.Time         `gorm:"not null;autoCreateTime" json:"created_at"`
	Results      []quiz.QuizResult `gorm:"foreignKey:Username;references:Username;constraint:OnDelete:CASCADE" json:"-"`
}

func (Account) TableName() string { return "account" }
