package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/adambeloucif/abel/internal/brain"
	"github.com/adambeloucif/abel/internal/config"
	"github.com/adambeloucif/abel/internal/directory"
	"github.com/adambeloucif/abel/internal/httpapi"
	"github.com/adambeloucif/abel/internal/llm"
	"github.com/adambeloucif/abel/internal/memory"
	"github.com/adambeloucif/abel/internal/observability"
	"github.com/adambeloucif/abel/internal/session"
)

func main() {
	// .env is optional; real deployments configure the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := memory.NewStore(ctx, cfg.DatabaseURL, cfg.EmbeddingDim)
	if err != nil {
		log.Fatalf("memory store init failed: %v", err)
	}
	defer store.Close()

	dbStatus := "not_configured"
	if cfg.DatabaseURL != "" {
		dbStatus = "connected"
	}

	var (
		provider llm.ChatProvider
		embedder llm.Embedder
	)
	if cfg.OpenAIAPIKey != "" {
		p, err := llm.NewOpenAIProvider(llm.OpenAIConfig{
			APIKey:         cfg.OpenAIAPIKey,
			BaseURL:        cfg.OpenAIBaseURL,
			Model:          cfg.OpenAIModel,
			EmbeddingModel: cfg.EmbeddingModel,
			EmbeddingDim:   cfg.EmbeddingDim,
		})
		if err != nil {
			log.Fatalf("openai provider init failed: %v", err)
		}
		provider = p
		embedder = p
		log.Printf("model provider: openai (%s)", cfg.OpenAIModel)
	} else {
		provider = llm.NewMockProvider()
		embedder = llm.NewMockEmbedder(cfg.EmbeddingDim)
		log.Printf("model provider: mock (OPENAI_API_KEY is not set)")
	}

	memories := memory.NewService(store, embedder, memory.ServiceConfig{
		Threshold:    cfg.MemoryThreshold,
		SearchLimit:  cfg.MemorySearchLimit,
		ContextLimit: cfg.ContextMemoryLimit,
		EmbedTimeout: cfg.EmbedTimeout,
	})

	history := session.NewHistory(cfg.HistoryWindow)
	b := brain.New(provider, memories, history, metrics, brain.Config{
		ModelTimeout:   cfg.ModelTimeout,
		MemoryMinChars: cfg.MemoryMinChars,
	})

	var apis httpapi.APIDirectory
	if cfg.DatabaseURL != "" {
		dirStore, err := directory.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("api directory unavailable: %v", err)
		} else {
			defer dirStore.Close()
			apis = dirStore
		}
	}

	api := httpapi.New(cfg, b, metrics, apis, dbStatus)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("%s %s listening on %s", cfg.AppName, cfg.AppVersion, cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
