// Copyright 2024 The hyper-trust-dns Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package resolver

import (
	"net/netip"
	"slices"
	"sync"
	"time"
)

// cacheEntry is one cached answer. Either addrs or err is set; err records
// negative answers (NXDOMAIN) so they are not re-queried until expiry.
type cacheEntry struct {
	addrs   []netip.Addr
	err     error
	expires time.Time
}

// lookupCache is a TTL-honoring answer cache keyed by "TYPE name.". The
// mutex is never held across network I/O; in-flight deduplication is the
// responsibility of the engine's singleflight group.
type lookupCache struct {
	mu      sync.RWMutex
	max     int
	entries map[string]cacheEntry
}

func newLookupCache(max int) *lookupCache {
	return &lookupCache{max: max, entries: make(map[string]cacheEntry)}
}

func (c *lookupCache) get(key string) ([]netip.Addr, error, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expires) {
		return nil, nil, false
	}
	return slices.Clone(entry.addrs), entry.err, true
}

func (c *lookupCache) set(key string, entry cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.max {
		c.evictLocked()
	}
	c.entries[key] = entry
}

// evictLocked drops expired entries, falling back to an arbitrary entry if
// everything is still live. Callers must hold the write lock.
func (c *lookupCache) evictLocked() {
	now := time.Now()
	dropped := false
	for key, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, key)
			dropped = true
		}
	}
	if dropped {
		return
	}
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}
