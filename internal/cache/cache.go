// Copyright 2025 Legal Assistant Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cache provides an in-memory response cache with per-entry TTLs and
// fingerprint-derived keys for analysis and assistant results. A nil *Cache
// is valid: every operation on it is a safe no-op that reports a miss, so
// callers never have to guard against an unavailable cache.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// AssistantTTL is the lifetime of assistant and document analysis entries.
	AssistantTTL = 30 * time.Minute
	// JurisprudenceTTL is the lifetime of jurisprudence lookup entries.
	JurisprudenceTTL = 24 * time.Hour
	// DefaultSweepInterval is how often expired entries are reclaimed.
	DefaultSweepInterval = 5 * time.Minute
	// fingerprintPrefixLength bounds how much of the content feeds the key
	// hash. Two long documents sharing this prefix under the same task and
	// entity id will share a cache entry; this collision risk is accepted.
	fingerprintPrefixLength = 500
	// fingerprintLength is the hex length of the derived key hash.
	fingerprintLength = 32
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Cache is a process-wide TTL key-value store. Values are treated as
// immutable snapshots; writes always replace the whole entry.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	logger  *zap.Logger
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New creates a cache and starts a background sweep that reclaims expired
// entries every sweepInterval. Expiry is also checked on every read, so a
// read never returns an expired entry even before the sweep runs.
func New(sweepInterval time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}

	c := &Cache{
		entries: make(map[string]entry),
		logger:  logger,
		stopCh:  make(chan struct{}),
	}

	c.wg.Add(1)
	go c.sweepLoop(sweepInterval)

	return c
}

// Get returns the value stored under key, or a miss when the key is absent
// or the entry has expired.
func (c *Cache) Get(key string) (interface{}, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl. An existing entry is fully replaced.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	if c == nil || ttl <= 0 {
		return
	}

	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Invalidate removes the entry stored under key, if any.
func (c *Cache) Invalidate(key string) {
	if c == nil {
		return
	}

	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of entries currently held, including entries that
// have expired but not yet been swept.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the sweep goroutine and drops all entries.
func (c *Cache) Close() {
	if c == nil {
		return
	}

	close(c.stopCh)
	c.wg.Wait()

	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

func (c *Cache) sweepLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	now := time.Now()
	removed := 0

	c.mu.Lock()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	remaining := len(c.entries)
	c.mu.Unlock()

	if removed > 0 {
		c.logger.Debug("Cache sweep reclaimed expired entries",
			zap.Int("removed", removed),
			zap.Int("remaining", remaining))
	}
}

// Fingerprint derives a deterministic cache key from a task name, an entity
// id and a bounded prefix of the content. Only the first 500 characters of
// content participate in the hash.
func Fingerprint(task, entityID, content string) string {
	if len(content) > fingerprintPrefixLength {
		content = content[:fingerprintPrefixLength]
	}

	h := sha256.New()
	h.Write([]byte(task))
	h.Write([]byte{0})
	h.Write([]byte(entityID))
	h.Write([]byte{0})
	h.Write([]byte(content))

	return task + ":" + hex.EncodeToString(h.Sum(nil))[:fingerprintLength]
}
