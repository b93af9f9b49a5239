// Package resultcache stores encoded responses keyed by endpoint and request body.
package resultcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Key hashes the request body so arbitrarily large payloads map to a fixed-size key.
func Key(endpoint string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(endpoint))
	h.Write([]byte{0})
	h.Write(body)
	return endpoint + ":" + hex.EncodeToString(h.Sum(nil))
}

type Memory struct {
	c *cache.Cache
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{c: cache.New(ttl, 2*ttl)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	return v.([]byte), true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.c.Set(key, value, cache.DefaultExpiration)
	return nil
}

func (m *Memory) Len() int { return m.c.ItemCount() }

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte) error { return nil }
