package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"lingo-ai/internal/aiclient"
	"lingo-ai/internal/api"
	"lingo-ai/internal/config"
	"lingo-ai/internal/services"
	"lingo-ai/internal/store"
)

func main() {
	cfg := config.Load()

	st, err := store.Open(cfg.FlashcardsFile)
	if err != nil {
		log.Fatalf("open flashcard store: %v", err)
	}

	client, err := aiclient.New(aiclient.Config{
		APIKey:       cfg.OpenAIKey,
		BaseURL:      cfg.OpenAIBaseURL,
		Model:        cfg.OpenAIModel,
		Timeout:      cfg.RequestTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryDelay:   cfg.RetryDelay,
		RetryBackoff: cfg.RetryBackoff,
		Temperature:  float32(cfg.Temperature),
		MaxTokens:    cfg.MaxTokens,
	})
	if err != nil {
		log.Fatalf("create ai client: %v", err)
	}
	defer client.Close()

	aiService := services.NewAIService(client)
	flashcardService := services.NewFlashcardService(st, aiService)

	server := api.NewServer(flashcardService, aiService, cfg.CORSOrigins, cfg.OpenAIKey != "")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("listening on :%s", port)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}
