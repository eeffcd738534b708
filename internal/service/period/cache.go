package period

import (
	"sync"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/period"
)

// periodCache keeps computed periods per user. Each user has a generation
// counter; a result computed before an invalidation is not stored.
type periodCache struct {
	mu          sync.RWMutex
	entries     map[string]map[string]period.Period
	generations map[string]uint64
	epoch       uint64
}

func newPeriodCache() *periodCache {
	return &periodCache{
		entries:     make(map[string]map[string]period.Period),
		generations: make(map[string]uint64),
	}
}

func (c *periodCache) get(userID, key string) (period.Period, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entries[userID][key]
	return p, ok
}

func (c *periodCache) generation(userID string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch<<32 + c.generations[userID]
}

func (c *periodCache) put(userID, key string, gen uint64, p period.Period) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch<<32+c.generations[userID] != gen {
		return
	}
	if c.entries[userID] == nil {
		c.entries[userID] = make(map[string]period.Period)
	}
	c.entries[userID][key] = p
}

func (c *periodCache) invalidateUser(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	c.generations[userID]++
}

func (c *periodCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]map[string]period.Period)
	c.epoch++
}

func (c *periodCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.entries {
		n += len(e)
	}
	return n
}
