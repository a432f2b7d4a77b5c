package kv

import (
	"context"
	"sort"

	"github.com/patrickmn/go-cache"
)

// MemoryStore implements Store in process memory. Entries never expire.
type MemoryStore struct {
	c *cache.Cache
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{c: cache.New(cache.NoExpiration, 0)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	v, ok := m.c.Get(key)
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.c.Set(key, value, cache.NoExpiration)
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.c.Delete(key)
	return nil
}

// Keys lists the stored keys in lexical order.
func (m *MemoryStore) Keys(ctx context.Context) ([]string, error) {
	items := m.c.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) Close() error {
	m.c.Flush()
	return nil
}
