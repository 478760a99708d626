package account

import (
	"context"
	"testing"

	"github.com/yungbote/quizgen-backend/internal/data/db"
	"github.com/yungbote/quizgen-backend/internal/data/repos/testutil"
	types "github.com/yungbote/quizgen-backend/internal/domain/account"
)

func TestAccountRepo(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)

	repo := NewAccountRepo(gdb, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, tx, []*types.Account{
		{Username: "alice", PasswordHash: "h1"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].ID == 0 {
		t.Fatalf("Create: unexpected result: %+v", created)
	}

	got, err := repo.GetByUsernames(ctx, tx, []string{"alice"})
	if err != nil {
		t.Fatalf("GetByUsernames: %v", err)
	}
	if len(got) != 1 || got[0].PasswordHash != "h1" {
		t.Fatalf("GetByUsernames: unexpected result: %+v", got)
	}

	exists, err := repo.UsernameExists(ctx, tx, "alice")
	if err != nil || !exists {
		t.Fatalf("UsernameExists: exists=%v err=%v", exists, err)
	}
	exists, err = repo.UsernameExists(ctx, tx, "bob")
	if err != nil || exists {
		t.Fatalf("UsernameExists (missing): exists=%v err=%v", exists, err)
	}
}

func TestAccountRepoDuplicateUsername(t *testing.T) {
	gdb := testutil.DB(t)
	repo := NewAccountRepo(gdb, testutil.Logger(t))
	ctx := context.Background()

	if _, err := repo.Create(ctx, nil, []*types.Account{{Username: "alice", PasswordHash: "h1"}}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := repo.Create(ctx, nil, []*types.Account{{Username: "alice", PasswordHash: "h2"}})
	if err == nil {
		t.Fatalf("expected duplicate error")
	}
	if !db.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}
