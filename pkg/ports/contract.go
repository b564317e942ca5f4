package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sections/pkg/domain"
)

// RunDocumentStoreContract runs a suite of tests to verify that a DocumentStore implementation
// adheres to the defined interface contract.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	ctx := context.Background()
	docID := "contract-test-doc-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Second)
		doc := &domain.StoredDocument{
			ID:        docID,
			HTML:      `<div class="card"><h2 class="title">Hello</h2></div>`,
			CreatedAt: now,
			UpdatedAt: now,
		}

		err := store.Save(ctx, doc)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, docID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, doc.ID, loaded.ID)
		assert.Equal(t, doc.HTML, loaded.HTML)
		assert.True(t, doc.UpdatedAt.Equal(loaded.UpdatedAt))

		loaded.HTML = "mutated"
		again, err := store.Load(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, doc.HTML, again.HTML, "Loaded documents must not alias stored data")
	})

	t.Run("Overwrite", func(t *testing.T) {
		err := store.Save(ctx, &domain.StoredDocument{ID: docID, HTML: "<p>v2</p>"})
		require.NoError(t, err)

		loaded, err := store.Load(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, "<p>v2</p>", loaded.HTML)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+docID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, &domain.StoredDocument{ID: docID, HTML: "<p></p>"})
		require.NoError(t, err)

		err = store.Delete(ctx, docID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, docID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound, "Load after Delete should return ErrDocumentNotFound")

		assert.NoError(t, store.Delete(ctx, docID), "Deleting twice should not fail")
	})

	t.Run("List", func(t *testing.T) {
		id1 := docID + "-1"
		id2 := docID + "-2"
		_ = store.Save(ctx, &domain.StoredDocument{ID: id1})
		_ = store.Save(ctx, &domain.StoredDocument{ID: id2})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}

// RunLockerContract verifies mutual exclusion and release for a DistributedLocker.
func RunLockerContract(t *testing.T, locker DistributedLocker) {
	ctx := context.Background()
	key := "contract-lock-" + time.Now().Format("20060102150405")

	unlock, err := locker.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)

	blocked, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(blocked, key, 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "Second Lock should wait until the context expires")

	require.NoError(t, unlock(ctx))

	unlock2, err := locker.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err, "Lock should succeed after release")
	assert.NoError(t, unlock2(ctx))
}
