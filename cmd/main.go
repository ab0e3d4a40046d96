package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/avoronov/n8n-chat-relay/internal/chat"
	"github.com/avoronov/n8n-chat-relay/internal/config"
	"github.com/avoronov/n8n-chat-relay/internal/ratelimit"
	"github.com/avoronov/n8n-chat-relay/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// --- Store ---
	var store chat.Store
	if cfg.MemoryStore {
		log.Println("using in-memory store (MEMORY_STORE=true)")
		store = chat.NewMemoryStore()
	} else {
		store, err = chat.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("store open error: %v", err)
		}
	}
	defer store.Close()

	// --- Upstream: webhook wins when both are configured ---
	var up chat.Upstream
	if cfg.WebhookURL != "" {
		up = upstream.NewWebhook(cfg.WebhookURL, cfg.UpstreamTimeout)
	} else {
		up = upstream.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAISystemPrompt)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	// --- Chat module wiring ---
	limiter := ratelimit.NewLimiter(cfg.RateLimit, cfg.RateWindow)
	chatService := chat.NewService(store, up)
	chatHandler := chat.NewHandler(chatService)

	chat.RegisterRoutes(r, chatHandler, limiter.Middleware)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("listening on :%s (rate limit %d/%s)", cfg.Port, cfg.RateLimit, cfg.RateWindow)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
