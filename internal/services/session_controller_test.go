package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/quizgen-backend/internal/data/repos"
	"github.com/yungbote/quizgen-backend/internal/data/repos/testutil"
	"github.com/yungbote/quizgen-backend/internal/platform/apierr"
	"github.com/yungbote/quizgen-backend/internal/session"
)

type controllerFixture struct {
	ctrl SessionController
	llm  *stubLLM
}

func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	creds := NewCredentialStore(log, repos.NewAccountRepo(db, log), repos.NewQuizResultRepo(db, log), bcrypt.MinCost)
	stub := &stubLLM{reply: mcqReply(5)}
	gen := newTestQuizGenerator(t, stub)
	tokens, err := session.NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	return &controllerFixture{
		ctrl: NewSessionController(log, session.NewMemoryStore(log, time.Hour), tokens, creds, gen),
		llm:  stub,
	}
}

func (f *controllerFixture) act(t *testing.T, id uuid.UUID, in session.Input) *session.Session {
	t.Helper()
	s, err := f.ctrl.Act(context.Background(), id, in)
	if err != nil {
		t.Fatalf("Act %s: %v", in.Action, err)
	}
	return s
}

func intPtr(i int) *int { return &i }

func TestSessionControllerFullFlow(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()

	s, token, err := f.ctrl.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.State != session.StateLogin {
		t.Fatalf("initial state: %q", s.State)
	}
	id, err := f.ctrl.ParseToken(token)
	if err != nil || id != s.ID {
		t.Fatalf("ParseToken: id=%s err=%v", id, err)
	}

	f.act(t, id, session.Input{Action: session.ActionGoSignup})
	s = f.act(t, id, session.Input{Action: session.ActionSignup, Username: "alice", Password: "pw1"})
	if s.State != session.StateLogin || s.Message != session.MsgSignupOK {
		t.Fatalf("after signup: state=%q message=%q", s.State, s.Message)
	}

	s = f.act(t, id, session.Input{Action: session.ActionLogin, Username: "alice", Password: "wrong"})
	if s.State != session.StateLogin || s.Message != session.MsgLoginFailed {
		t.Fatalf("wrong password: state=%q message=%q", s.State, s.Message)
	}
	s = f.act(t, id, session.Input{Action: session.ActionLogin, Username: "alice", Password: "pw1"})
	if s.State != session.StateHome || !s.Authenticated {
		t.Fatalf("login: state=%q auth=%v", s.State, s.Authenticated)
	}

	s = f.act(t, id, session.Input{Action: session.ActionGenerate, Text: "The sky is blue.", Difficulty: "easy"})
	if len(s.Questions) != 5 {
		t.Fatalf("generated %d questions", len(s.Questions))
	}
	// every stub question is correct on "b"; answer three right and leave one blank
	for i := 0; i < 3; i++ {
		f.act(t, id, session.Input{Action: session.ActionSelect, Question: intPtr(i), Option: "b"})
	}
	f.act(t, id, session.Input{Action: session.ActionSelect, Question: intPtr(3), Option: "a"})

	s = f.act(t, id, session.Input{Action: session.ActionSubmit})
	if s.LastResult == nil || s.LastResult.Score != 3 || s.LastResult.Total != 5 {
		t.Fatalf("submit result: %+v", s.LastResult)
	}
	if s.Message != "You scored 3 out of 5" {
		t.Fatalf("score message: %q", s.Message)
	}
	if len(s.Questions) != 0 {
		t.Fatalf("quiz should be cleared after submit")
	}

	rows, err := f.ctrl.History(ctx, id)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("history rows: want=5 got=%d", len(rows))
	}
	if rows[0].Question != "Question 1?" || rows[4].Question != "Question 5?" {
		t.Fatalf("history order: first=%q last=%q", rows[0].Question, rows[4].Question)
	}
	if rows[4].UserAnswer != "" || rows[4].IsCorrect {
		t.Fatalf("blank answer stored as %+v", rows[4])
	}
	if rows[3].UserAnswer != "A3" || rows[3].CorrectAnswer != "B3" || rows[3].IsCorrect {
		t.Fatalf("wrong answer stored as %+v", rows[3])
	}
	for _, r := range rows {
		if r.AttemptID != s.LastResult.AttemptID {
			t.Fatalf("attempt id mismatch: %s vs %s", r.AttemptID, s.LastResult.AttemptID)
		}
	}

	s = f.act(t, id, session.Input{Action: session.ActionViewHistory})
	if s.State != session.StateHistory || len(s.History) != 5 {
		t.Fatalf("view history: state=%q rows=%d", s.State, len(s.History))
	}
	f.act(t, id, session.Input{Action: session.ActionBackToHome})
	s = f.act(t, id, session.Input{Action: session.ActionLogout})
	if s.State != session.StateLogin || s.Authenticated || s.Username != "" {
		t.Fatalf("logout did not reset: %+v", s)
	}
}

func TestSessionControllerRejectsInvalidTransition(t *testing.T) {
	f := newControllerFixture(t)
	s, _, err := f.ctrl.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	_, err = f.ctrl.Act(context.Background(), s.ID, session.Input{Action: session.ActionGenerate, Text: "x"})
	if !errors.Is(err, session.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if status, code := apierr.From(err); status != http.StatusConflict || code != "invalid_transition" {
		t.Fatalf("status=%d code=%q", status, code)
	}
	if got := f.llm.calls.Load(); got != 0 {
		t.Fatalf("model called from login state: %d", got)
	}
}

func TestSessionControllerUnknownSession(t *testing.T) {
	f := newControllerFixture(t)
	_, err := f.ctrl.Act(context.Background(), uuid.New(), session.Input{Action: session.ActionLogin})
	if status, code := apierr.From(err); status != http.StatusUnauthorized || code != "session_not_found" {
		t.Fatalf("status=%d code=%q", status, code)
	}
}

func TestSessionControllerHistoryRequiresLogin(t *testing.T) {
	f := newControllerFixture(t)
	s, _, err := f.ctrl.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	_, err = f.ctrl.History(context.Background(), s.ID)
	if status, code := apierr.From(err); status != http.StatusForbidden || code != "not_authenticated" {
		t.Fatalf("status=%d code=%q", status, code)
	}
}

func TestSessionControllerGenerationFailureKeepsState(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()
	s, _, err := f.ctrl.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.act(t, s.ID, session.Input{Action: session.ActionGoSignup})
	f.act(t, s.ID, session.Input{Action: session.ActionSignup, Username: "bob", Password: "pw"})
	f.act(t, s.ID, session.Input{Action: session.ActionLogin, Username: "bob", Password: "pw"})

	f.llm.reply = "not json at all"
	if _, err := f.ctrl.Act(ctx, s.ID, session.Input{Action: session.ActionGenerate, Text: "Some text"}); err == nil {
		t.Fatalf("expected generation failure")
	}
	got, err := f.ctrl.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.State != session.StateHome || len(got.Questions) != 0 || !got.Authenticated {
		t.Fatalf("session changed after failure: %+v", got)
	}
}
