package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/quizgen-backend/internal/domain/account"
)

func SeedAccount(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *account.Account {
	tb.Helper()
	a := &account.Account{
		Username:     username,
		PasswordHash: "not-a-real-hash",
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed account: %v", err)
	}
	return a
}
