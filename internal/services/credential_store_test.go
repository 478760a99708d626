package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/quizgen-backend/internal/data/repos"
	"github.com/yungbote/quizgen-backend/internal/data/repos/testutil"
	accounttypes "github.com/yungbote/quizgen-backend/internal/domain/account"
	types "github.com/yungbote/quizgen-backend/internal/domain/quiz"
	"github.com/yungbote/quizgen-backend/internal/platform/apierr"
)

func newTestCredentialStore(t *testing.T) CredentialStore {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return NewCredentialStore(log, repos.NewAccountRepo(db, log), repos.NewQuizResultRepo(db, log), bcrypt.MinCost)
}

func TestCredentialStoreCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	cs := newTestCredentialStore(t)

	created, err := cs.CreateAccount(ctx, "alice", "pw1")
	if err != nil || !created {
		t.Fatalf("CreateAccount: created=%v err=%v", created, err)
	}

	ok, err := cs.Authenticate(ctx, "alice", "pw1")
	if err != nil || !ok {
		t.Fatalf("Authenticate correct password: ok=%v err=%v", ok, err)
	}
	ok, err = cs.Authenticate(ctx, "alice", "wrong")
	if err != nil || ok {
		t.Fatalf("Authenticate wrong password: ok=%v err=%v", ok, err)
	}
	ok, err = cs.Authenticate(ctx, "bob", "pw1")
	if err != nil || ok {
		t.Fatalf("Authenticate unknown user: ok=%v err=%v", ok, err)
	}
}

func TestCredentialStoreDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	cs := newTestCredentialStore(t)

	if created, err := cs.CreateAccount(ctx, "alice", "pw1"); err != nil || !created {
		t.Fatalf("first CreateAccount: created=%v err=%v", created, err)
	}
	created, err := cs.CreateAccount(ctx, "alice", "other")
	if err != nil {
		t.Fatalf("duplicate CreateAccount returned error: %v", err)
	}
	if created {
		t.Fatalf("duplicate CreateAccount: want created=false")
	}
	// the original password still works
	if ok, _ := cs.Authenticate(ctx, "alice", "pw1"); !ok {
		t.Fatalf("original password no longer authenticates")
	}
}

// racyAccountRepo reports every username free, then loses the insert to a
// concurrent signup.
type racyAccountRepo struct {
	repos.AccountRepo
}

func (racyAccountRepo) UsernameExists(context.Context, *gorm.DB, string) (bool, error) {
	return false, nil
}

func (racyAccountRepo) Create(context.Context, *gorm.DB, []*accounttypes.Account) ([]*accounttypes.Account, error) {
	return nil, gorm.ErrDuplicatedKey
}

func TestCredentialStoreDuplicateUsernameRace(t *testing.T) {
	log := testutil.Logger(t)
	cs := NewCredentialStore(log, racyAccountRepo{}, nil, bcrypt.MinCost)
	created, err := cs.CreateAccount(context.Background(), "alice", "pw1")
	if err != nil || created {
		t.Fatalf("want created=false err=nil, got created=%v err=%v", created, err)
	}
}

func TestCredentialStoreRejectsBlankInput(t *testing.T) {
	cs := newTestCredentialStore(t)
	_, err := cs.CreateAccount(context.Background(), "  ", "pw")
	status, code := apierr.From(err)
	if status != http.StatusBadRequest || code != "invalid_request" {
		t.Fatalf("blank username: status=%d code=%q", status, code)
	}
}

func TestCredentialStoreHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	cs := newTestCredentialStore(t)
	if _, err := cs.CreateAccount(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	attempt := uuid.New()
	rows := []*types.QuizResult{
		{Username: "alice", AttemptID: attempt, Question: "Q1", UserAnswer: "Blue", CorrectAnswer: "Blue", IsCorrect: true},
		{Username: "alice", AttemptID: attempt, Question: "Q2", UserAnswer: "", CorrectAnswer: "Red", IsCorrect: false},
	}
	for _, r := range rows {
		if err := cs.RecordResult(ctx, r); err != nil {
			t.Fatalf("RecordResult: %v", err)
		}
	}

	got, err := cs.FetchHistory(ctx, "alice")
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("history length: want=2 got=%d", len(got))
	}
	if got[0].Question != "Q1" || got[1].Question != "Q2" {
		t.Fatalf("history order: got %q, %q", got[0].Question, got[1].Question)
	}
	if !got[0].IsCorrect || got[1].IsCorrect || got[1].UserAnswer != "" {
		t.Fatalf("history contents mismatch: %+v %+v", got[0], got[1])
	}

	empty, err := cs.FetchHistory(ctx, "nobody")
	if err != nil || len(empty) != 0 {
		t.Fatalf("FetchHistory unknown user: len=%d err=%v", len(empty), err)
	}
}

func TestCredentialStoreRecordResultUnknownAccount(t *testing.T) {
	cs := newTestCredentialStore(t)
	err := cs.RecordResult(context.Background(), &types.QuizResult{
		Username:      "ghost",
		AttemptID:     uuid.New(),
		Question:      "Q",
		CorrectAnswer: "A",
	})
	if err == nil {
		t.Fatalf("expected foreign key failure")
	}
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Code != "storage_failed" {
		t.Fatalf("unexpected error: %v", err)
	}
}
