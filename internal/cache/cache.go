package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mreyes/reel-server/internal/models"
)

const (
	latestBuildKey = "storylines:latest"
	synopsisPrefix = "synopsis:"
)

// Store is the in-memory cache in front of the storyline build table.
// Reads hit the cache first; the database stays the durable copy.
type Store struct {
	cache *gocache.Cache
}

// New creates a store whose entries expire after defaultTTL.
func New(defaultTTL, cleanupInterval time.Duration) *Store {
	return &Store{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// PutBuild caches the build currently being served.
func (s *Store) PutBuild(b *models.Build) {
	s.cache.Set(latestBuildKey, b, gocache.DefaultExpiration)
}

// LatestBuild returns the cached build, if any.
func (s *Store) LatestBuild() (*models.Build, bool) {
	if val, found := s.cache.Get(latestBuildKey); found {
		return val.(*models.Build), true
	}
	return nil, false
}

// PutSynopsis caches generated synopsis prose for one storyline.
func (s *Store) PutSynopsis(storylineID, text string) {
	s.cache.Set(synopsisPrefix+storylineID, text, gocache.DefaultExpiration)
}

// Synopsis returns cached synopsis prose, if any.
func (s *Store) Synopsis(storylineID string) (string, bool) {
	if val, found := s.cache.Get(synopsisPrefix + storylineID); found {
		return val.(string), true
	}
	return "", false
}

// Flush drops everything. Called after a rebuild so stale storylines and
// their synopses never outlive the build they came from.
func (s *Store) Flush() {
	s.cache.Flush()
}
