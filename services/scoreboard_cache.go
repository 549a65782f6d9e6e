package services

import (
	"sync"
	"time"

	"nfl-pickem-go/models"

	"github.com/itbasis/go-clock"
)

// ScoreboardKey identifies one cached scoreboard slate
type ScoreboardKey struct {
	Year       int
	Week       int
	SeasonType int
}

type cacheEntry struct {
	events    []models.Event
	expiresAt time.Time
}

// ScoreboardCache caches scoreboard responses with an adaptive TTL: slates
// with a game in progress expire quickly so live scores stay fresh, idle
// slates are kept longer. The clock is injected so expiry is testable.
type ScoreboardCache struct {
	mu      sync.Mutex
	clock   clock.Clock
	liveTTL time.Duration
	idleTTL time.Duration
	entries map[ScoreboardKey]cacheEntry
}

// NewScoreboardCache creates a cache with the given TTL policy
func NewScoreboardCache(clk clock.Clock, liveTTL, idleTTL time.Duration) *ScoreboardCache {
	return &ScoreboardCache{
		clock:   clk,
		liveTTL: liveTTL,
		idleTTL: idleTTL,
		entries: make(map[ScoreboardKey]cacheEntry),
	}
}

// Get returns the cached events for the key if present and not expired
func (c *ScoreboardCache) Get(key ScoreboardKey) ([]models.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.clock.Now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.events, true
}

// Put stores events under the key, choosing the live TTL when any game in
// the slate is in progress and the idle TTL otherwise
func (c *ScoreboardCache) Put(key ScoreboardKey, events []models.Event) {
	ttl := c.idleTTL
	for i := range events {
		if events[i].State == models.EventStateIn {
			ttl = c.liveTTL
			break
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		events:    events,
		expiresAt: c.clock.Now().Add(ttl),
	}
}
