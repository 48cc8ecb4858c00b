// Package presence holds the in-memory liveness hints for (guild, streamer)
// pairs. The cache only suppresses redundant offline handling; the durable
// notification store stays authoritative, so losing this state on restart is
// harmless.
package presence

import "sync"

type key struct {
	guildID    string
	streamerID string
}

// Cache is a process-wide set of pairs currently believed live.
type Cache struct {
	mu   sync.RWMutex
	live map[key]struct{}
}

func NewCache() *Cache {
	return &Cache{live: make(map[key]struct{})}
}

// Has reports whether the pair is marked live.
func (c *Cache) Has(guildID, streamerID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.live[key{guildID, streamerID}]
	return ok
}

// Set marks the pair live. Idempotent.
func (c *Cache) Set(guildID, streamerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.live[key{guildID, streamerID}] = struct{}{}
}

// Delete clears the pair. Deleting an absent pair is a no-op.
func (c *Cache) Delete(guildID, streamerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.live, key{guildID, streamerID})
}

// Len returns the number of pairs currently marked live.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.live)
}
