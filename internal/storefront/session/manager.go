package session

import (
	"context"
	"sync"
	"time"

	"github.com/terra-tattva/storefront/internal/storefront/model"
	"github.com/terra-tattva/storefront/internal/storefront/store"
	logx "github.com/terra-tattva/storefront/pkg/logger"
)

type entry struct {
	mu       sync.Mutex
	store    *store.Store
	queue    *store.Queue
	lastUsed time.Time
	users    int
}

// Manager owns one Store per browsing session. Stores are hydrated from the
// slot repository on first use and dropped from memory once idle; their
// persisted slots outlive them.
type Manager struct {
	repo     model.SlotRepository
	slots    model.SlotConfig
	products store.Products
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewManager(repo model.SlotRepository, slots model.SlotConfig, products store.Products) *Manager {
	return &Manager{
		repo:     repo,
		slots:    slots,
		products: products,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Session is the view handed to callers of With.
type Session struct {
	*store.Store
	queue *store.Queue
}

// Notifications drains the confirmations emitted so far in this session.
func (s Session) Notifications() []model.Notification {
	return s.queue.Drain()
}

// With runs fn against the session's store. Calls for the same session never
// overlap, matching the one-event-at-a-time model of a browser tab.
func (m *Manager) With(ctx context.Context, sessionID string, fn func(Session) error) error {
	e := m.acquire(sessionID)
	defer m.release(e)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.store == nil {
		queue := store.NewQueue(0)
		s := store.New(sessionID, m.repo, m.slots, m.products, store.WithNotifier(queue))
		if err := s.Hydrate(ctx); err != nil {
			return err
		}
		logx.Debug().Str("session", sessionID).Int("lines", len(s.Cart())).Int("favorites", len(s.Favorites())).Msg("session hydrated")
		e.store, e.queue = s, queue
	}
	return fn(Session{Store: e.store, queue: e.queue})
}

// Reset deletes the session's persisted slots and drops its in-memory store.
// The next call to With starts from an empty cart and favorites list.
func (m *Manager) Reset(ctx context.Context, sessionID string) error {
	e := m.acquire(sessionID)
	defer m.release(e)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := m.repo.Clear(ctx, sessionID); err != nil {
		return err
	}
	e.store, e.queue = nil, nil
	logx.Debug().Str("session", sessionID).Msg("session reset")
	return nil
}

func (m *Manager) acquire(sessionID string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[sessionID]
	if !ok {
		e = &entry{}
		m.sessions[sessionID] = e
	}
	e.users++
	e.lastUsed = m.now()
	return e
}

func (m *Manager) release(e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.users--
	e.lastUsed = m.now()
}

// Len reports how many sessions are held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Evict drops in-memory stores unused for longer than idle and returns how many
// were dropped. State is already persisted, so an evicted session rehydrates
// on its next request.
func (m *Manager) Evict(idle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-idle)
	evicted := 0
	for id, e := range m.sessions {
		if e.users > 0 || e.lastUsed.After(cutoff) {
			continue
		}
		delete(m.sessions, id)
		evicted++
	}
	return evicted
}

// Run evicts idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval, idle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.Evict(idle); n > 0 {
				logx.Debug().Int("evicted", n).Int("remaining", m.Len()).Msg("evicted idle sessions")
			}
		}
	}
}
