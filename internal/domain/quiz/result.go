package quiz

import (
	"time"

	"github.com/google/uuid"
)

// QuizResult is one answered question of one attempt. Rows are append-only;
// the owning account declares the foreign key (see account.Account.Results).
type QuizResult struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username      string    `gorm:"not null;index;column:username" json:"username"`
	AttemptID     uuid.UUID `gorm:"type:uuid;index;column:attempt_id" json:"attempt_id"`
	Question      string    `gorm:"not null;type:text;column:question" json:"question"`
	UserAnswer    string    `gorm:"not null;type:text;column:user_answer" json:"user_answer"`
	CorrectAnswer string    `gorm:"not null;type:text;column:correct_answer" json:"correct_answer"`
	IsCorrect     bool      `gorm:"not null;column:is_correct" json:"is_correct"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (QuizResult) TableName() string { return "quiz_result" }
