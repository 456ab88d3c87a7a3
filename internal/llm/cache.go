package llm

import (
	"slices"
	"sync"
	"time"

	"github.com/nao1215/idguard/internal/model"
)

type cacheEntry struct {
	advice  *model.Advice
	expires time.Time
}

// cache is a small TTL cache. When full, expired entries go first and then
// the oldest insertion.
type cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	size    int
	now     func() time.Time
	entries map[string]cacheEntry
	order   []string
}

func newCache(ttl time.Duration, size int, now func() time.Time) *cache {
	return &cache{
		ttl:     ttl,
		size:    size,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *cache) get(key string) (*model.Advice, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		c.remove(key)
		return nil, false
	}
	return cloneAdvice(e.advice), true
}

func (c *cache) put(key string, advice *model.Advice) {
	if c.ttl <= 0 || c.size <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.remove(key)
	}
	if len(c.entries) >= c.size {
		now := c.now()
		for k, e := range c.entries {
			if !now.Before(e.expires) {
				c.remove(k)
			}
		}
	}
	for len(c.entries) >= c.size && len(c.order) > 0 {
		c.remove(c.order[0])
	}
	c.entries[key] = cacheEntry{advice: cloneAdvice(advice), expires: c.now().Add(c.ttl)}
	c.order = append(c.order, key)
}

func (c *cache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *cache) remove(key string) {
	delete(c.entries, key)
	c.order = slices.DeleteFunc(c.order, func(k string) bool { return k == key })
}

func cloneAdvice(a *model.Advice) *model.Advice {
	if a == nil {
		return nil
	}
	return &model.Advice{
		Recommendations: slices.Clone(a.Recommendations),
		ActionPlan: model.ActionPlan{
			Immediate: slices.Clone(a.ActionPlan.Immediate),
			ShortTerm: slices.Clone(a.ActionPlan.ShortTerm),
			LongTerm:  slices.Clone(a.ActionPlan.LongTerm),
		},
	}
}
