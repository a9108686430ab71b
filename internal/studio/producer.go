// Package studio turns the anecdote corpus into storyline builds and keeps
// track of which build is being served.
package studio

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mreyes/reel-server/internal/cache"
	"github.com/mreyes/reel-server/internal/db"
	"github.com/mreyes/reel-server/internal/engine"
	"github.com/mreyes/reel-server/internal/models"
)

// keepBuilds is how many historical builds survive pruning. Older builds
// exist only for debugging a bad cut, so a short tail is enough.
const keepBuilds = 10

// Producer owns the rebuild lifecycle: assemble, persist, prune, cache.
type Producer struct {
	db    *db.DB
	cache *cache.Store
	mu    sync.Mutex
}

// New creates a new Producer instance
func New(database *db.DB, store *cache.Store) *Producer {
	return &Producer{
		db:    database,
		cache: store,
	}
}

// Rebuild runs the assembly engine over every stored anecdote and installs
// the result as the serving build. Concurrent triggers queue; each gets its
// own build.
func (p *Producer) Rebuild(trigger string) (*models.Build, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	anecdotes, err := p.db.ListAnecdotes()
	if err != nil {
		return nil, fmt.Errorf("listing anecdotes: %w", err)
	}

	storylines := engine.Assemble(anecdotes)

	build := &models.Build{
		BuildID:    "bld_" + uuid.NewString()[:8],
		Trigger:    trigger,
		ItemCount:  len(anecdotes),
		Storylines: storylines,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	if err := p.db.SaveBuild(*build); err != nil {
		return nil, fmt.Errorf("saving build: %w", err)
	}
	if err := p.db.PruneBuilds(keepBuilds); err != nil {
		log.Printf("studio: warning - pruning old builds: %v", err)
	}

	// A new build invalidates cached synopses from the previous one.
	p.cache.Flush()
	p.cache.PutBuild(build)

	log.Printf("studio: build %s (%s) assembled %d storylines from %d anecdotes",
		build.BuildID, trigger, len(storylines), len(anecdotes))

	return build, nil
}

// Latest returns the serving build: cache first, then the newest persisted
// build. Returns nil when nothing has been assembled yet.
func (p *Producer) Latest() (*models.Build, error) {
	if build, ok := p.cache.LatestBuild(); ok {
		return build, nil
	}

	build, err := p.db.LatestBuild()
	if err != nil {
		return nil, fmt.Errorf("loading latest build: %w", err)
	}
	if build == nil {
		return nil, nil
	}

	p.cache.PutBuild(build)
	return build, nil
}

// Storyline finds one storyline in the serving build. Returns nil when the
// id is not part of the current build.
func (p *Producer) Storyline(id string) (*models.Storyline, error) {
	build, err := p.Latest()
	if err != nil {
		return nil, err
	}
	if build == nil {
		return nil, nil
	}

	for i := range build.Storylines {
		if build.Storylines[i].ID == id {
			return &build.Storylines[i], nil
		}
	}
	return nil, nil
}

// WarmCache re-primes the cache from the database after TTL expiry so the
// first request after a quiet hour does not pay the disk read.
func (p *Producer) WarmCache() {
	build, err := p.Latest()
	if err != nil {
		log.Printf("studio: cache warm failed: %v", err)
		return
	}
	if build == nil {
		log.Println("studio: cache warm skipped, no build yet")
	}
}
