package main

import (
	"context"
	"log"

	"github.com/brainfish/brainfish-chat/internal/ai"
	"github.com/brainfish/brainfish-chat/internal/chat"
	"github.com/brainfish/brainfish-chat/internal/config"
	"github.com/brainfish/brainfish-chat/internal/db"
	"github.com/brainfish/brainfish-chat/internal/httpapi"
)

func buildRegistry(cfg config.Config) *ai.Registry {
	reg := ai.NewRegistry()

	reg.Register("mock", func(ctx context.Context) (ai.Provider, error) {
		_ = ctx
		return ai.NewMockProvider(), nil
	})
	reg.Register("openai", func(ctx context.Context) (ai.Provider, error) {
		_ = ctx
		return ai.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	})
	reg.Register("openrouter", func(ctx context.Context) (ai.Provider, error) {
		_ = ctx
		return ai.NewOpenRouterProvider(
			cfg.OpenRouterBaseURL,
			cfg.OpenRouterAPIKey,
			cfg.OpenRouterModel,
			cfg.OpenRouterSiteURL,
			cfg.OpenRouterAppName,
		)
	})
	reg.Register("huggingface", func(ctx context.Context) (ai.Provider, error) {
		_ = ctx
		return ai.NewHFProvider(cfg.HFAPIKey, cfg.HFModel)
	})

	return reg
}

func main() {
	cfg := config.Load()

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	reg := buildRegistry(cfg)

	// oversized uploads are summarized through the batch provider when one
	// is configured; otherwise they are truncated
	var summarizer chat.Summarizer
	if cfg.HFAPIKey != "" {
		hf, err := ai.NewHFProvider(cfg.HFAPIKey, cfg.HFModel)
		if err == nil {
			summarizer = hf
		}
	}

	repo := chat.NewRepo(gdb)
	svc := chat.NewService(repo, reg, cfg.Provider, cfg.UploadRawThreshold, summarizer)

	r := httpapi.NewRouter(cfg, svc)

	log.Printf("server listening addr=%s provider=%s db=%s", cfg.Addr, cfg.Provider, cfg.DBDriver)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
