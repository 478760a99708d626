package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/quizgen-backend/internal/domain/account"
	"github.com/yungbote/quizgen-backend/internal/domain/quiz"
	"github.com/yungbote/quizgen-backend/internal/platform/logger"
)

type foreignKeyRow struct {
	Table    string `gorm:"column:table"`
	From     string `gorm:"column:from"`
	To       string `gorm:"column:to"`
	OnDelete string `gorm:"column:on_delete"`
}

func migratedSQLite(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(Config{
		Driver:     DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "schema.db"),
		Silent:     true,
	}, logger.Nop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	if err := svc.AutoMigrateAll(); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	return svc
}

func foreignKeys(t *testing.T, svc *Service, table string) []foreignKeyRow {
	t.Helper()
	var rows []foreignKeyRow
	if err := svc.DB().Raw("SELECT * FROM pragma_foreign_key_list(?)", table).Scan(&rows).Error; err != nil {
		t.Fatalf("foreign_key_list(%s): %v", table, err)
	}
	return rows
}

func TestAutoMigrateForeignKeyOnQuizResult(t *testing.T) {
	svc := migratedSQLite(t)

	got := foreignKeys(t, svc, "quiz_result")
	if len(got) != 1 {
		t.Fatalf("expected 1 foreign key on quiz_result, got %+v", got)
	}
	fk := got[0]
	if fk.Table != "account" || fk.From != "username" || fk.To != "username" || fk.OnDelete != "CASCADE" {
		t.Fatalf("unexpected foreign key: %+v", fk)
	}
	if acc := foreignKeys(t, svc, "account"); len(acc) != 0 {
		t.Fatalf("expected no foreign keys on account, got %+v", acc)
	}
}

func TestAutoMigrateEnforcesAccountReference(t *testing.T) {
	svc := migratedSQLite(t)
	gdb := svc.DB().WithContext(context.Background())

	if err := gdb.Create(&account.Account{Username: "alice", PasswordHash: "h"}).Error; err != nil {
		t.Fatalf("account insert: %v", err)
	}
	if err := gdb.Create(&quiz.QuizResult{
		Username: "alice", AttemptID: uuid.New(), Question: "Q", UserAnswer: "a", CorrectAnswer: "a", IsCorrect: true,
	}).Error; err != nil {
		t.Fatalf("result insert for alice: %v", err)
	}

	err := gdb.Create(&quiz.QuizResult{
		Username: "ghost", AttemptID: uuid.New(), Question: "Q", UserAnswer: "a", CorrectAnswer: "b",
	}).Error
	if !IsForeignKeyViolation(err) {
		t.Fatalf("expected foreign key violation for unknown user, got %v", err)
	}

	if err := gdb.Where("username = ?", "alice").Delete(&account.Account{}).Error; err != nil {
		t.Fatalf("account delete: %v", err)
	}
	var remaining int64
	if err := gdb.Model(&quiz.QuizResult{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected cascade to remove results, %d remain", remaining)
	}
}
