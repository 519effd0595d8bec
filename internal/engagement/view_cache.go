// Package engagement implements view counting and like toggling for articles.
// The durable counters live on the article document; likes are anchored on a
// unique relation row; view dedup is an in-memory, best-effort cache that a
// restart resets (re-counting after restart is an accepted tradeoff).
package engagement

import (
	"sync"
	"time"
)

// DefaultViewWindow is how long a (article, client) view fingerprint is
// remembered before the same client can be counted again.
const DefaultViewWindow = 24 * time.Hour

// ViewCache tracks which clients were already counted for which article.
// Check-and-insert happens atomically under one mutex; each fingerprint gets
// its own expiry timer, and an article's entry is dropped entirely once its
// last fingerprint expires, so memory stays bounded by the active window.
type ViewCache struct {
	window time.Duration

	mu   sync.Mutex
	seen map[string]map[string]*time.Timer // articleID -> clientID -> expiry timer
}

// NewViewCache creates a cache with the given retention window. A
// non-positive window falls back to DefaultViewWindow.
func NewViewCache(window time.Duration) *ViewCache {
	if window <= 0 {
		window = DefaultViewWindow
	}
	return &ViewCache{
		window: window,
		seen:   make(map[string]map[string]*time.Timer),
	}
}

// ShouldCountView reports whether this (article, client) pair should increment
// the durable counter. The first call within the window inserts the
// fingerprint and returns true; every later call returns false until the
// fingerprint expires.
func (c *ViewCache) ShouldCountView(articleID, clientID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	clients, ok := c.seen[articleID]
	if !ok {
		clients = make(map[string]*time.Timer)
		c.seen[articleID] = clients
	}
	if _, counted := clients[clientID]; counted {
		return false
	}

	clients[clientID] = time.AfterFunc(c.window, func() {
		c.Forget(articleID, clientID)
	})
	return true
}

// Forget drops a fingerprint before its timer fires. Used to compensate when
// the durable increment fails after the cache admitted the view, so a retry
// can still be counted.
func (c *ViewCache) Forget(articleID, clientID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	clients, ok := c.seen[articleID]
	if !ok {
		return
	}
	if t, ok := clients[clientID]; ok {
		t.Stop()
		delete(clients, clientID)
	}
	if len(clients) == 0 {
		delete(c.seen, articleID)
	}
}

// Len returns the number of fingerprints currently tracked.
func (c *ViewCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, clients := range c.seen {
		n += len(clients)
	}
	return n
}

// Stop cancels all pending expiry timers. Only needed on shutdown and in tests.
func (c *ViewCache) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, clients := range c.seen {
		for _, t := range clients {
			t.Stop()
		}
	}
	c.seen = make(map[string]map[string]*time.Timer)
}
