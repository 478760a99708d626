package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/quizgen-backend/internal/observability"
	"github.com/yungbote/quizgen-backend/internal/platform/logger"
)

const DefaultIdleTTL = time.Hour

type Store interface {
	Create(ctx context.Context) (*Session, error)
	// Get returns a copy of the session.
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	// Update runs fn with exclusive access to the session and returns a copy
	// of the result. Calls for one session never overlap.
	Update(ctx context.Context, id uuid.UUID, fn func(s *Session) error) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID)
	Len() int
}

type entry struct {
	mu       sync.Mutex
	sess     *Session
	lastSeen time.Time
	dead     bool
}

// MemoryStore keeps sessions in process memory. Sessions idle longer than
// the TTL are dropped; nothing survives a restart.
type MemoryStore struct {
	log     *logger.Logger
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[uuid.UUID]*entry
}

func NewMemoryStore(log *logger.Logger, idleTTL time.Duration) *MemoryStore {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &MemoryStore{
		log:     log.With("service", "SessionStore"),
		ttl:     idleTTL,
		now:     time.Now,
		entries: map[uuid.UUID]*entry{},
	}
}

func (m *MemoryStore) Create(_ context.Context) (*Session, error) {
	now := m.now()
	s := New(uuid.New(), now)
	m.mu.Lock()
	m.entries[s.ID] = &entry{sess: s, lastSeen: now}
	n := len(m.entries)
	m.mu.Unlock()
	observability.Current().SetSessionsActive(n)
	return s.Clone(), nil
}

func (m *MemoryStore) lookup(id uuid.UUID) (*entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	return e, ok
}

func (m *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	return m.Update(ctx, id, func(*Session) error { return nil })
}

func (m *MemoryStore) Update(ctx context.Context, id uuid.UUID, fn func(s *Session) error) (*Session, error) {
	e, ok := m.lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	now := m.now()
	if e.dead || now.Sub(e.lastSeen) >= m.ttl {
		m.drop(id, e)
		return nil, ErrNotFound
	}
	e.lastSeen = now
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := fn(e.sess); err != nil {
		return e.sess.Clone(), err
	}
	e.sess.UpdatedAt = now
	return e.sess.Clone(), nil
}

func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID) {
	if e, ok := m.lookup(id); ok {
		e.mu.Lock()
		m.drop(id, e)
		e.mu.Unlock()
	}
}

// drop must be called with e.mu held.
func (m *MemoryStore) drop(id uuid.UUID, e *entry) {
	e.dead = true
	m.mu.Lock()
	if cur, ok := m.entries[id]; ok && cur == e {
		delete(m.entries, id)
	}
	n := len(m.entries)
	m.mu.Unlock()
	observability.Current().SetSessionsActive(n)
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Sweep removes expired sessions and returns how many it removed. Sessions
// busy in Update are skipped and checked on the next sweep.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	ids := make([]uuid.UUID, 0, len(m.entries))
	candidates := make([]*entry, 0, len(m.entries))
	for id, e := range m.entries {
		ids = append(ids, id)
		candidates = append(candidates, e)
	}
	m.mu.Unlock()

	now := m.now()
	removed := 0
	for i, e := range candidates {
		if !e.mu.TryLock() {
			continue
		}
		if !e.dead && now.Sub(e.lastSeen) >= m.ttl {
			m.drop(ids[i], e)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}

// StartJanitor sweeps on every interval until ctx is done.
func (m *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = m.ttl / 4
		if interval < time.Second {
			interval = time.Second
		}
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.Sweep(); n > 0 {
					m.log.Debug("expired sessions swept", "count", n, "remaining", m.Len())
				}
			}
		}
	}()
}
