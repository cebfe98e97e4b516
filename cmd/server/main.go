package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pokerstudy-backend/internal/config"
	"pokerstudy-backend/internal/handlers"
	"pokerstudy-backend/internal/library"
	"pokerstudy-backend/internal/middleware"
	"pokerstudy-backend/internal/router"
	"pokerstudy-backend/internal/services"
	"pokerstudy-backend/internal/storage"
	"pokerstudy-backend/internal/websocket"
	"pokerstudy-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting Poker Study Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize Storage Backend ────
	store, redisStore, err := newStore(cfg)
	if err != nil {
		log.Fatalf("✗ Storage initialization failed: %v", err)
	}
	defer store.Close()
	log.Printf("✓ Storage ready (%s)", cfg.StorageBackend)

	// ──── Step 3: Load Session Library ────
	lib := library.New(library.NewSnapshot(store))
	lib.Load(context.Background())
	log.Printf("✓ Library loaded (%d sessions, all awaiting re-link)", len(lib.Sessions("")))

	saver := library.NewAutosaver(time.Duration(cfg.AutosaveDebounceMS)*time.Millisecond, lib.Save)

	// ──── Step 4: Initialize Gemini Coach (optional) ────
	var coach *services.CoachService
	if cfg.GeminiAPIKey != "" {
		coach, err = services.NewCoachService(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs, lib)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		defer coach.Close()
		log.Println("✓ Gemini coach initialized")
	} else {
		log.Println("  Gemini coach disabled (no GEMINI_API_KEY)")
	}

	// ──── Step 5: Start WebSocket Hub ────
	var wsHub *websocket.Hub
	if redisStore != nil {
		wsHub = websocket.NewHub(redisStore.Client(), cfg.JWTSecret)
	} else {
		wsHub = websocket.NewHub(nil, cfg.JWTSecret)
	}
	wsHub.Start()
	defer wsHub.Stop()
	lib.SetNotifier(wsHub.Publish)
	if coach != nil {
		coach.SetNotifier(wsHub.Publish)
	}
	log.Println("✓ WebSocket hub started")

	// ──── Step 6: Start Suggestion Worker Pool ────
	var queue worker.Queue
	if redisStore != nil {
		queue = worker.NewRedisQueue(redisStore.Client())
	} else {
		queue = worker.NewMemoryQueue()
	}
	var workerPool *worker.Pool
	if coach != nil {
		workerPool = worker.NewPool(queue, coach, cfg.WorkerCount)
		workerPool.Start()
		log.Printf("✓ Worker pool started (%d goroutines)", cfg.WorkerCount)
	}

	// ──── Step 7: Start HTTP Server ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	authHandler, err := handlers.NewAuthHandler(jwtAuth, cfg.AccessPasscode)
	if err != nil {
		log.Fatalf("✗ Auth initialization failed: %v", err)
	}
	sessionHandler := handlers.NewSessionHandler(lib, saver)
	coachHandler := handlers.NewCoachHandler(coach, queue)

	// 10 passcode attempts per minute per address
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	defer authLimiter.Stop()

	r := router.New(jwtAuth, authLimiter, authHandler, sessionHandler, coachHandler, wsHub, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: flush any debounced note write before the process
	// exits so the last edit burst is never lost.
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		if workerPool != nil {
			workerPool.Stop()
		}
		if err := saver.Stop(context.Background()); err != nil {
			log.Printf("final autosave flush failed: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Poker Study Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

// newStore picks the storage backend. The redis store is returned separately
// because the queue and pub/sub layers reuse its client.
func newStore(cfg *config.Config) (storage.Store, *storage.RedisStore, error) {
	switch cfg.StorageBackend {
	case "redis":
		rs, err := storage.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return rs, rs, nil
	case "postgres":
		ps, err := storage.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return ps, nil, nil
	default:
		return storage.NewMemoryStore(), nil, nil
	}
}
