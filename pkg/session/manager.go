package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/sections/internal/logging"
	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/ports"
)

// DefaultLockTTL bounds how long an edit may hold a distributed lock.
const DefaultLockTTL = 30 * time.Second

// ErrLockFailed wraps distributed lock errors.
var ErrLockFailed = errors.New("failed to acquire document lock")

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates document access, ensuring safe concurrent edits.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.DocumentStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker ports.DistributedLocker
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager over the given document store.
func NewManager(store ports.DocumentStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		ttl:    DefaultLockTTL,
		logger: logging.NewNop(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Load retrieves a document from the store.
func (m *Manager) Load(ctx context.Context, id string) (*domain.StoredDocument, error) {
	var doc *domain.StoredDocument
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		doc, err = m.store.Load(ctx, id)
		return err
	})
	return doc, err
}

// Create stores a new document, stamping its timestamps.
func (m *Manager) Create(ctx context.Context, doc *domain.StoredDocument) error {
	return m.WithLock(ctx, doc.ID, func(ctx context.Context) error {
		now := m.now()
		doc.CreatedAt, doc.UpdatedAt = now, now
		return m.store.Save(ctx, doc)
	})
}

// Update loads a document, applies fn and saves the result. Nothing is
// saved when fn fails.
func (m *Manager) Update(ctx context.Context, id string, fn func(ctx context.Context, doc *domain.StoredDocument) error) (*domain.StoredDocument, error) {
	var doc *domain.StoredDocument
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		if doc, err = m.store.Load(ctx, id); err != nil {
			return err
		}
		if err := fn(ctx, doc); err != nil {
			return err
		}
		doc.UpdatedAt = m.now()
		return m.store.Save(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes the document from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying document store.
func (m *Manager) Store() ports.DocumentStore {
	return m.store
}

// WithLock executes a function while holding the lock for the document.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.ttl)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrLockFailed, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"document_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
