package chat

import (
	"context"
	"testing"
	"time"

	"medassist-be/pkg/vectorstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetIndex_NilWhenCollectionEmpty(t *testing.T) {
	store := &fakeStore{count: 0}
	accessor := NewIndexAccessor(store, fakeEmbedder{}, time.Minute)

	index, err := accessor.GetIndex(context.Background(), AccessorConfig{Collection: "records", Dim: 2, TopK: 3})

	require.NoError(t, err)
	assert.Nil(t, index)
}

func TestGetIndex_EmptyResultNotCached(t *testing.T) {
	store := &fakeStore{count: 0}
	accessor := NewIndexAccessor(store, fakeEmbedder{}, time.Minute)
	cfg := AccessorConfig{Collection: "records", Dim: 2, TopK: 3}

	_, err := accessor.GetIndex(context.Background(), cfg)
	require.NoError(t, err)

	// First ingestion lands; the next lookup must see it immediately.
	store.count = 10
	index, err := accessor.GetIndex(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, index)
	assert.Equal(t, 2, store.countCalls)
}

func TestGetIndex_CachedHandleReused(t *testing.T) {
	store := &fakeStore{count: 10}
	accessor := NewIndexAccessor(store, fakeEmbedder{}, time.Minute)
	cfg := AccessorConfig{Collection: "records", Dim: 2, TopK: 3}

	first, err := accessor.GetIndex(context.Background(), cfg)
	require.NoError(t, err)
	second, err := accessor.GetIndex(context.Background(), cfg)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, store.countCalls)
}

func TestGetIndex_DistinctConfigsDistinctEntries(t *testing.T) {
	store := &fakeStore{count: 10}
	accessor := NewIndexAccessor(store, fakeEmbedder{}, time.Minute)

	a, err := accessor.GetIndex(context.Background(), AccessorConfig{Collection: "records", Dim: 2, TopK: 3})
	require.NoError(t, err)
	b, err := accessor.GetIndex(context.Background(), AccessorConfig{Collection: "records", Dim: 2, TopK: 5})
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, 2, store.countCalls)
}

func TestRetrieve_PassesFilterAndReturnsTexts(t *testing.T) {
	store := &fakeStore{
		count: 1,
		matches: []vectorstore.Match{
			{Document: vectorstore.Document{Text: "chunk one"}, Score: 0.9},
			{Document: vectorstore.Document{Text: "chunk two"}, Score: 0.8},
		},
	}
	accessor := NewIndexAccessor(store, fakeEmbedder{}, time.Minute)

	index, err := accessor.GetIndex(context.Background(), AccessorConfig{Collection: "records", Dim: 2, TopK: 3})
	require.NoError(t, err)

	contexts, err := index.Retrieve(context.Background(), "question", map[string]string{"user_id": "u1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"chunk one", "chunk two"}, contexts)
	assert.Equal(t, map[string]string{"user_id": "u1"}, store.lastFilter)
}
