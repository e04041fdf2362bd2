package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BerylCAtieno/marketing-asset-agent/internal/a2a"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/api"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/assets"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/campaign"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/config"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/events"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/llm"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/logging"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/metrics"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/research"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen, closeGen, err := buildGenerator(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create generative backend", zap.Error(err))
	}
	defer closeGen()

	provider := cfg.LLM.Provider
	if gen == nil {
		provider = config.ProviderNone
	}
	metrics.Init(version, provider)

	publisher := buildPublisher(cfg, logger)
	defer publisher.Close()

	timeout := cfg.BackendTimeout()
	orchestrator := campaign.NewOrchestrator(
		research.NewSynthesizer(gen, timeout, logger),
		assets.NewSynthesizer(gen, timeout, logger),
		campaign.NewAssembler(cfg.Generation.BucketURL),
		campaign.WithConcurrency(cfg.Generation.Concurrency),
		campaign.WithLogger(logger),
	)
	service := campaign.NewService(orchestrator, publisher, logger)

	router := api.NewRouter(service, api.Options{
		AllowedOrigins: cfg.AllowedOrigins(),
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Logger:         logger,
		Extra:          []api.Mounter{a2a.NewA2AHandler(service, a2a.Options{
			BaseURL:      cfg.Server.PublicURL,
			Version:      version,
			MaxBodyBytes: cfg.MaxUploadBytes(),
		}, logger)},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Marketing Asset Agent starting",
			zap.String("port", cfg.Server.Port),
			zap.String("provider", provider),
			zap.String("agent_card", fmt.Sprintf("http://localhost:%s/.well-known/agent.json", cfg.Server.Port)),
			zap.String("generate", fmt.Sprintf("http://localhost:%s/api/generate", cfg.Server.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// buildGenerator returns nil when no backend is configured, which routes
// every request through the templates.
func buildGenerator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (llm.Generator, func(), error) {
	noop := func() {}
	settings := llm.Settings{
		Provider:  cfg.LLM.Provider,
		Model:     cfg.Model(),
		APIKey:    cfg.APIKey(),
		BaseURL:   cfg.LLM.OpenAIBaseURL,
		MaxTokens: cfg.LLM.MaxTokens,
	}

	var (
		gen     llm.Generator
		closeFn = noop
	)
	switch cfg.LLM.Provider {
	case config.ProviderNone:
		logger.Info("Generative backend disabled; using templates")
		return nil, noop, nil
	case config.ProviderMock:
		gen = llm.MockGenerator{}
	case config.ProviderGemini:
		if settings.APIKey == "" {
			logger.Warn("GEMINI_API_KEY not set; using templates")
			return nil, noop, nil
		}
		client, err := llm.NewGeminiClient(ctx, settings)
		if err != nil {
			return nil, noop, err
		}
		gen = client
		closeFn = func() {
			if err := client.Close(); err != nil {
				logger.Warn("Failed to close Gemini client", zap.Error(err))
			}
		}
	case config.ProviderOpenAI:
		// OpenAI-compatible gateways behind OPENAI_BASE_URL may not need a key.
		if settings.APIKey == "" && settings.BaseURL == "" {
			logger.Warn("OPENAI_API_KEY not set; using templates")
			return nil, noop, nil
		}
		client, err := llm.NewOpenAIClient(settings)
		if err != nil {
			return nil, noop, err
		}
		gen = client
	default:
		return nil, noop, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}

	gen = llm.Instrument(gen, cfg.LLM.Provider)

	if cfg.Redis.Addr != "" {
		rdb, err := llm.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("Redis unavailable; backend cache disabled", zap.Error(err))
		} else {
			gen = llm.WithCache(gen, llm.NewRedisStore(rdb), cfg.LLM.Provider+":"+settings.Model, cfg.CacheTTL(), logger)
			prevClose := closeFn
			closeFn = func() {
				prevClose()
				_ = rdb.Close()
			}
			logger.Info("Backend response cache enabled", zap.String("redis", cfg.Redis.Addr))
		}
	}

	logger.Info("Generative backend ready",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", settings.Model))
	return gen, closeFn, nil
}

func buildPublisher(cfg *config.Config, logger *zap.Logger) events.Publisher {
	if cfg.NATS.URL == "" {
		return events.Noop{}
	}
	pub, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject, logger)
	if err != nil {
		logger.Warn("NATS unavailable; batch events disabled", zap.Error(err))
		return events.Noop{}
	}
	logger.Info("Publishing batch events", zap.String("nats", cfg.NATS.URL), zap.String("subject", cfg.NATS.Subject))
	return pub
}
