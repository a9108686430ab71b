package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mreyes/reel-server/internal/api"
	"github.com/mreyes/reel-server/internal/cache"
	"github.com/mreyes/reel-server/internal/config"
	"github.com/mreyes/reel-server/internal/db"
	"github.com/mreyes/reel-server/internal/models"
	"github.com/mreyes/reel-server/internal/scheduler"
	"github.com/mreyes/reel-server/internal/source"
	"github.com/mreyes/reel-server/internal/studio"
	"github.com/mreyes/reel-server/internal/synopsis"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting reel-server...")

	// Load .env file if present
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env file")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	// Seed anecdotes from file when configured
	if cfg.SeedFile != "" {
		inserted, err := source.SeedDatabase(database, cfg.SeedFile)
		if err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
		log.Printf("Seeded %d anecdotes from %s", inserted, cfg.SeedFile)
	}

	// Build cache
	ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	store := cache.New(ttl, 2*ttl)

	// Synopsis provider is optional; the server runs without one
	provider, err := synopsis.NewProvider(synopsis.Config{
		Provider:  cfg.SynopsisProvider,
		Model:     cfg.SynopsisModel,
		APIKey:    cfg.OpenAIAPIKey,
		BaseURL:   cfg.OpenAIBaseURL,
		OllamaURL: cfg.OllamaURL,
	})
	if err != nil {
		log.Fatalf("Failed to create synopsis provider: %v", err)
	}
	if provider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if !provider.IsAvailable(ctx) {
			log.Printf("WARNING: synopsis provider %s unreachable", provider.Name())
			log.Println("Server will start but synopsis generation may not work")
		} else {
			log.Printf("Synopsis provider connected: %s (%s)", provider.Name(), provider.ModelName())
		}
		cancel()
		provider = synopsis.WithRateLimit(provider, cfg.SynopsisRPM)
	} else {
		log.Println("No synopsis provider configured")
	}

	// Producer assembles and serves storyline builds
	producer := studio.New(database, store)

	// Assemble an initial build so the API serves storylines immediately
	if build, err := producer.Rebuild(models.TriggerStartup); err != nil {
		log.Printf("WARNING: startup rebuild failed: %v", err)
	} else {
		log.Printf("Startup build %s ready (%d storylines)", build.BuildID, len(build.Storylines))
	}

	// Create router
	router := api.NewRouter(cfg, database, producer, store, provider)

	// Create and start scheduler
	sched, err := scheduler.New(producer, provider, scheduler.Config{
		Timezone:    cfg.Timezone,
		RebuildHour: cfg.RebuildHour,
	})
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Start server
	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down gracefully...")

	// Give ongoing requests 10 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Stopping scheduler...")
	if err := sched.Stop(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}

	log.Println("Closing database...")
	if err := database.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("Shutdown complete")
}
