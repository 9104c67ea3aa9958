package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nutrigenie/internal/api"
	"nutrigenie/internal/bootstrap"
	"nutrigenie/internal/config"
	"nutrigenie/internal/session"
	"nutrigenie/internal/telegram"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. Initialize Infrastructure (database, storage, model client)
	rt, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer rt.Close()

	signer, err := session.NewTokenSigner(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("Failed to initialize session tokens: %v", err)
	}
	if cfg.SessionSecret == "" {
		log.Println("Warning: SESSION_SECRET not set, tokens will not survive a restart")
	}

	// 3. HTTP API
	server := api.New(rt.App, signer, api.Options{
		RateLimitPerMinute: cfg.AIRateLimitPerMinute,
		RateLimitBurst:     cfg.AIRateLimitBurst,
	})

	// 4. Telegram Bot (optional)
	if cfg.TelegramBotToken != "" {
		bot, err := telegram.NewBot(cfg, rt.App, rt.Metrics)
		if err != nil {
			log.Fatalf("Failed to initialize Telegram Bot: %v", err)
		}
		server.Mount("/webhook", bot)
	}

	go runSessionSweeper(rt.Sessions)

	// 5. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server,
	}

	go func() {
		log.Printf("NutriGenie server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

func runSessionSweeper(sessions *session.Manager) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		if removed := sessions.Sweep(); removed > 0 {
			log.Printf("Expired %d idle sessions", removed)
		}
	}
}
