package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/quizgen-backend/internal/platform/logger"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore(logger.Nop(), time.Minute)

	s, err := st.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.State != StateLogin {
		t.Fatalf("new sessions start at login, got %s", s.State)
	}

	updated, err := st.Update(ctx, s.ID, func(s *Session) error {
		s.State = StateSignup
		return nil
	})
	if err != nil || updated.State != StateSignup {
		t.Fatalf("Update: %v state=%v", err, updated)
	}

	// Returned copies are detached from the stored session.
	updated.State = StateHome
	got, _ := st.Get(ctx, s.ID)
	if got.State != StateSignup {
		t.Fatalf("stored session mutated through copy")
	}

	st.Delete(ctx, s.ID)
	if _, err := st.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := st.Get(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id")
	}
}

func TestMemoryStoreIdleExpiry(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore(logger.Nop(), time.Minute)
	now := time.Unix(1_700_000_000, 0)
	st.now = func() time.Time { return now }

	a, _ := st.Create(ctx)
	b, _ := st.Create(ctx)

	now = now.Add(30 * time.Second)
	if _, err := st.Get(ctx, a.ID); err != nil {
		t.Fatalf("a should be live: %v", err)
	}

	now = now.Add(45 * time.Second)
	if n := st.Sweep(); n != 1 {
		t.Fatalf("expected 1 swept session, got %d", n)
	}
	if _, err := st.Get(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("b should have expired")
	}
	if _, err := st.Get(ctx, a.ID); err != nil {
		t.Fatalf("a was touched recently and should survive: %v", err)
	}
}

func TestMemoryStoreSerializesUpdates(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore(logger.Nop(), time.Minute)
	s, _ := st.Create(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = st.Update(ctx, s.ID, func(s *Session) error {
				s.Selections[len(s.Selections)] = "a"
				return nil
			})
		}()
	}
	wg.Wait()

	got, _ := st.Get(ctx, s.ID)
	if len(got.Selections) != 50 {
		t.Fatalf("expected 50 serialized updates, got %d", len(got.Selections))
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	id := uuid.New()
	tok, err := issuer.Issue(id)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	got, err := issuer.Parse(tok)
	if err != nil || got != id {
		t.Fatalf("Parse: got %v err %v", got, err)
	}

	other, _ := NewTokenIssuer("other-secret", time.Hour)
	if _, err := other.Parse(tok); err == nil {
		t.Fatalf("expected signature failure with a different secret")
	}

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := issuer.Parse(tok); err == nil {
		t.Fatalf("expected expired token to fail")
	}

	if _, err := NewTokenIssuer(" ", time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
