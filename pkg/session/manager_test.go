package session_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sections/pkg/adapters/memory"
	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/ports"
	"github.com/aretw0/sections/pkg/session"
)

// SlowStore simulates latency to provoke lost updates if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s *SlowStore) Load(ctx context.Context, id string) (*domain.StoredDocument, error) {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	return s.Store.Load(ctx, id)
}

func (s *SlowStore) Save(ctx context.Context, doc *domain.StoredDocument) error {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	return s.Store.Save(ctx, doc)
}

// failingLocker never grants a lock.
type failingLocker struct{}

func (failingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	return nil, errors.New("busy")
}

func TestManager_UpdatesAreSerialized(t *testing.T) {
	store := &SlowStore{Store: memory.NewStore()}
	manager := session.NewManager(store, session.WithLocker(memory.NewLocker()))
	ctx := context.Background()
	id := "race-test"

	require.NoError(t, manager.Create(ctx, &domain.StoredDocument{ID: id, HTML: "0"}))

	var wg sync.WaitGroup
	concurrentWrites := 10
	for i := 0; i < concurrentWrites; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Update(ctx, id, func(_ context.Context, doc *domain.StoredDocument) error {
				n, err := strconv.Atoi(doc.HTML)
				if err != nil {
					return err
				}
				doc.HTML = strconv.Itoa(n + 1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	doc, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(concurrentWrites), doc.HTML, "no update may be lost")
	assert.False(t, doc.CreatedAt.IsZero())
	assert.False(t, doc.UpdatedAt.Before(doc.CreatedAt))
}

func TestManager_UpdateFailureSavesNothing(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()
	require.NoError(t, manager.Create(ctx, &domain.StoredDocument{ID: "doc", HTML: "before"}))

	boom := errors.New("boom")
	_, err := manager.Update(ctx, "doc", func(_ context.Context, doc *domain.StoredDocument) error {
		doc.HTML = "after"
		return boom
	})
	require.ErrorIs(t, err, boom)

	doc, err := manager.Load(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, "before", doc.HTML)

	_, err = manager.Update(ctx, "missing", func(context.Context, *domain.StoredDocument) error { return nil })
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestManager_LockFailure(t *testing.T) {
	manager := session.NewManager(memory.NewStore(), session.WithLocker(failingLocker{}))

	err := manager.Delete(context.Background(), "doc")
	assert.ErrorIs(t, err, session.ErrLockFailed)
}
