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

	"github.com/bobarin/fala/internal/api"
	"github.com/bobarin/fala/internal/config"
	"github.com/bobarin/fala/internal/db"
	"github.com/bobarin/fala/internal/queue"
	"github.com/bobarin/fala/internal/services"
	"github.com/bobarin/fala/internal/worker"
)

func main() {
	log.Println("Starting Fala API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize TTS provider
	ttsSvc, err := newTTSService(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize TTS provider: %v", err)
	}
	log.Printf("TTS provider: %s", ttsSvc.Name())

	player := services.NewAudioPlayer(cfg.AudioPlayer)
	speech := services.NewSpeechService(ttsSvc, player, cfg.SynthesisTimeout)

	// Optional synthesis history. Interfaces stay nil when not configured.
	var history api.HistoryStore
	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()

		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = database.Migrate(migrateCtx)
		cancel()
		if err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		history = database
		log.Println("Connected to database")
	} else {
		log.Println("DATABASE_URL not set, synthesis history disabled")
	}

	// Optional async job queue
	var jobs api.JobQueue
	var q *queue.Queue
	if cfg.AsyncEnabled() {
		q, err = queue.New(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to queue: %v", err)
		}
		defer q.Close()
		jobs = q
		log.Println("Connected to Redis queue")
	} else if cfg.RedisURL != "" {
		log.Println("REDIS_URL set without DATABASE_URL, async jobs disabled")
	}

	// Create API handler
	handler := api.NewHandler(speech, history, jobs)
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	if cfg.BackendAPIKey != "" {
		log.Println("API key authentication enabled")
	} else {
		log.Println("WARNING: No BACKEND_API_KEY set, /v1 API is unprotected (dev mode)")
	}

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	// Start worker if enabled
	var workerCancel context.CancelFunc
	workerDone := make(chan struct{})
	if cfg.WorkerEnabled && q != nil && database != nil {
		log.Println("Worker enabled, starting background processing...")

		w := worker.New(q, database, speech)

		var workerCtx context.Context
		workerCtx, workerCancel = context.WithCancel(context.Background())
		go func() {
			defer close(workerDone)
			w.Start(workerCtx, cfg.MaxConcurrentJobs)
		}()
	} else {
		close(workerDone)
	}

	// Start server in goroutine
	go func() {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown worker
	if workerCancel != nil {
		workerCancel()
	}

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	select {
	case <-workerDone:
	case <-ctx.Done():
		log.Println("Worker did not stop before shutdown deadline")
	}

	log.Println("Server exited")
}

// newTTSService builds the provider selected by TTS_PROVIDER.
func newTTSService(ctx context.Context, cfg *config.Config) (services.TTSService, error) {
	switch cfg.TTSProvider {
	case config.ProviderAzure:
		if cfg.SpeechEndpoint != "" {
			return services.NewAzureSpeechServiceWithEndpoint(cfg.SpeechKey, cfg.SpeechEndpoint, cfg.AzureOutputFormat), nil
		}
		return services.NewAzureSpeechService(cfg.SpeechKey, cfg.SpeechRegion, cfg.AzureOutputFormat), nil
	case config.ProviderOpenAI:
		return services.NewOpenAIService(cfg.OpenAIKey, cfg.OpenAITTSModel, cfg.OpenAITTSVoice), nil
	case config.ProviderGemini:
		return services.NewGeminiService(ctx, cfg.GeminiKey, cfg.GeminiTTSModel, cfg.GeminiTTSVoice)
	case config.ProviderElevenLabs:
		return services.NewElevenLabsService(cfg.ElevenLabsKey, cfg.ElevenLabsVoiceID), nil
	case config.ProviderCartesia:
		return services.NewCartesiaService(cfg.CartesiaKey, cfg.CartesiaURL, cfg.CartesiaVoiceID), nil
	default:
		return nil, fmt.Errorf("unknown TTS provider %q", cfg.TTSProvider)
	}
}
