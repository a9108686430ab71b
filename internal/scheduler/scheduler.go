// Package scheduler runs the recurring jobs: the nightly storyline rebuild,
// hourly cache warming, and synopsis provider health checks.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/mreyes/reel-server/internal/models"
	"github.com/mreyes/reel-server/internal/studio"
	"github.com/mreyes/reel-server/internal/synopsis"
)

// Scheduler manages scheduled jobs
type Scheduler struct {
	scheduler   gocron.Scheduler
	producer    *studio.Producer
	provider    synopsis.Provider
	timezone    *time.Location
	rebuildHour int
}

// Config holds scheduler configuration
type Config struct {
	Timezone    string
	RebuildHour int
}

// New creates a new scheduler
func New(producer *studio.Producer, provider synopsis.Provider, cfg Config) (*Scheduler, error) {
	tz, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		tz = time.UTC
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(tz))
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		scheduler:   s,
		producer:    producer,
		provider:    provider,
		timezone:    tz,
		rebuildHour: cfg.RebuildHour,
	}, nil
}

// Start registers all jobs and begins the schedule
func (s *Scheduler) Start() error {
	// Nightly rebuild at the configured hour
	_, err := s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(s.rebuildHour), 0, 0))),
		gocron.NewTask(s.nightlyRebuild),
		gocron.WithName("nightly-rebuild"),
	)
	if err != nil {
		return err
	}

	// Re-prime the build cache every hour so TTL expiry never lands on a request
	_, err = s.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(s.warmCache),
		gocron.WithName("warm-cache"),
	)
	if err != nil {
		return err
	}

	// Health check the synopsis provider every 5 minutes
	if s.provider != nil {
		_, err = s.scheduler.NewJob(
			gocron.DurationJob(5*time.Minute),
			gocron.NewTask(s.healthCheck),
			gocron.WithName("synopsis-health"),
		)
		if err != nil {
			return err
		}
	}

	s.scheduler.Start()
	log.Println("Scheduler started")
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *Scheduler) nightlyRebuild() {
	log.Println("Running nightly storyline rebuild...")
	if _, err := s.producer.Rebuild(models.TriggerScheduler); err != nil {
		log.Printf("Nightly rebuild failed: %v", err)
	}
}

func (s *Scheduler) warmCache() {
	s.producer.WarmCache()
}

func (s *Scheduler) healthCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if !s.provider.IsAvailable(ctx) {
		log.Println("Health check failed - synopsis provider unreachable")
	}
}
