package chat

import (
	"context"
	"fmt"
	"time"

	"medassist-be/pkg/embedding"
	"medassist-be/pkg/vectorstore"

	gocache "github.com/patrickmn/go-cache"
)

// AccessorConfig identifies one vector index. The cache key is derived
// from every field, so two configs differing in any parameter never
// share a cached index.
type AccessorConfig struct {
	Collection string
	Dim        int
	TopK       int
}

func (c AccessorConfig) cacheKey() string {
	return fmt.Sprintf("index:%s:%d:%d", c.Collection, c.Dim, c.TopK)
}

// IndexAccessor hands out VectorIndex handles with a short TTL cache in
// front of the storage lookup.
type IndexAccessor struct {
	store    vectorstore.Service
	embedder embedding.Provider
	cache    *gocache.Cache
}

func NewIndexAccessor(store vectorstore.Service, embedder embedding.Provider, ttl time.Duration) *IndexAccessor {
	if ttl <= 0 {
		ttl = DefaultIndexTTL
	}
	return &IndexAccessor{
		store:    store,
		embedder: embedder,
		cache:    gocache.New(ttl, 2*ttl),
	}
}

// GetIndex returns the index for a config, or nil when the collection
// holds no vectors yet. The nil result is not cached, so an index
// becomes visible as soon as the first ingestion lands.
func (a *IndexAccessor) GetIndex(ctx context.Context, cfg AccessorConfig) (*VectorIndex, error) {
	key := cfg.cacheKey()
	if cached, found := a.cache.Get(key); found {
		return cached.(*VectorIndex), nil
	}

	count, err := a.store.Count(ctx, cfg.Collection)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect collection %s: %w", cfg.Collection, err)
	}
	if count == 0 {
		return nil, nil
	}

	index := &VectorIndex{
		store:    a.store,
		embedder: a.embedder,
		cfg:      cfg,
	}
	a.cache.SetDefault(key, index)
	return index, nil
}

// Invalidate drops a cached index handle, forcing the next GetIndex to
// re-check storage.
func (a *IndexAccessor) Invalidate(cfg AccessorConfig) {
	a.cache.Delete(cfg.cacheKey())
}

// VectorIndex is a retrieval handle over one collection.
type VectorIndex struct {
	store    vectorstore.Service
	embedder embedding.Provider
	cfg      AccessorConfig
}

// Retrieve embeds the query and returns the text of the best matching
// chunks, most similar first.
func (idx *VectorIndex) Retrieve(ctx context.Context, query string, filter map[string]string) ([]string, error) {
	resp, err := idx.embedder.Generate(query, "retrieval_query")
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := idx.store.Search(ctx, idx.cfg.Collection, resp.Embedding.Values, filter, idx.cfg.TopK)
	if err != nil {
		return nil, err
	}

	contexts := make([]string, 0, len(matches))
	for _, match := range matches {
		contexts = append(contexts, match.Document.Text)
	}
	return contexts, nil
}

// AsQueryEngine wraps the index as a retrieve-then-synthesize engine.
func (idx *VectorIndex) AsQueryEngine(synth *Synthesizer, filter map[string]string) QueryEngine {
	return &retrievalEngine{
		index:  idx,
		synth:  synth,
		filter: filter,
	}
}

type retrievalEngine struct {
	index  *VectorIndex
	synth  *Synthesizer
	filter map[string]string
}

func (e *retrievalEngine) Query(ctx context.Context, query string) (string, error) {
	contexts, err := e.index.Retrieve(ctx, query, e.filter)
	if err != nil {
		return "", err
	}
	return e.synth.Synthesize(ctx, query, contexts)
}
