package ollama

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/jlozanoz/normateca/internal/core/ports"
)

// CachingEmbedder memoizes embeddings keyed by content hash with LRU
// eviction. The cache is owned by this value; capacity is injected at
// construction. Cached vectors are shared, not copied, and must be treated
// as read-only by callers.
type CachingEmbedder struct {
	inner    ports.Embedder
	capacity int

	mu      sync.Mutex
	order   *list.List
	entries map[string]*list.Element
}

type cacheEntry struct {
	key    string
	vector []float32
}

func NewCachingEmbedder(inner ports.Embedder, capacity int) *CachingEmbedder {
	if capacity <= 0 {
		capacity = 256
	}
	return &CachingEmbedder{
		inner:    inner,
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

func (c *CachingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	missing := make([]string, 0, len(texts))
	missingIdx := make([]int, 0, len(texts))

	for i, text := range texts {
		if vector, ok := c.lookup(contentHash(text)); ok {
			out[i] = vector
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) > 0 {
		vectors, err := c.inner.Embed(ctx, missing)
		if err != nil {
			return nil, err
		}
		for j, vector := range vectors {
			if j >= len(missingIdx) {
				break
			}
			out[missingIdx[j]] = vector
			c.insert(contentHash(missing[j]), vector)
		}
	}
	return out, nil
}

func (c *CachingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	key := contentHash(text)
	if vector, ok := c.lookup(key); ok {
		return vector, nil
	}

	vector, err := c.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	c.insert(key, vector)
	return vector, nil
}

func (c *CachingEmbedder) lookup(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(element)
	return element.Value.(cacheEntry).vector, true
}

func (c *CachingEmbedder) insert(key string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.entries[key]; ok {
		c.order.MoveToFront(element)
		return
	}

	c.entries[key] = c.order.PushFront(cacheEntry{key: key, vector: vector})
	for len(c.entries) > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(cacheEntry).key)
	}
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
