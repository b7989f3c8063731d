package catalog

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var roleCacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lms_role_cache_lookups_total",
		Help: "Role catalog cache lookups by result.",
	},
	[]string{"result"},
)

// RoleCache keeps recently resolved roles, permissions included, keyed by role id.
// A nil *RoleCache is valid and caches nothing.
//
// Every invalidation bumps the generation. Readers capture it before going to the
// store and pass it to Add, so a role loaded before a concurrent write committed is
// never cached after that write invalidated it.
type RoleCache struct {
	lru *expirable.LRU[int64, *Role]

	mu         sync.Mutex
	generation uint64
}

// NewRoleCache returns nil when size is not positive.
func NewRoleCache(size int, ttl time.Duration) *RoleCache {
	if size <= 0 {
		return nil
	}
	return &RoleCache{lru: expirable.NewLRU[int64, *Role](size, nil, ttl)}
}

func (c *RoleCache) Get(id int64) (*Role, bool) {
	if c == nil {
		return nil, false
	}
	role, ok := c.lru.Get(id)
	if !ok {
		roleCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	roleCacheLookups.WithLabelValues("hit").Inc()
	return role.clone(), true
}

// Generation is read before loading roles from the store.
func (c *RoleCache) Generation() uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Add caches role unless an invalidation happened after generation was read.
// It reports whether the role was stored.
func (c *RoleCache) Add(role *Role, generation uint64) bool {
	if c == nil || role == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return false
	}
	c.lru.Add(role.ID, role.clone())
	return true
}

func (c *RoleCache) Remove(id int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.lru.Remove(id)
}

// Purge drops everything. Permission edits call it since any role may embed the permission.
func (c *RoleCache) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.lru.Purge()
}

func (c *RoleCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
