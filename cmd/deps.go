package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/cv-screener/internal/ai"
	"github.com/spigell/cv-screener/internal/ai/gemini"
	"github.com/spigell/cv-screener/internal/cache"
	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/pipeline"
	"github.com/spigell/cv-screener/internal/secrets"
)

const (
	backendFile     = "file"
	backendRedis    = "redis"
	defaultCacheDir = ".cv-cache"
	providerGemini  = "gemini"
	geminiAPIKeyEnv = "GEMINI_API_KEY"
)

// newStore opens the configured cache backend. The returned func releases it.
func newStore(ctx context.Context, cfg *CacheConfig, log *zap.Logger) (cache.Store, func(), error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch backend {
	case "", backendFile:
		dir := strings.TrimSpace(cfg.Dir)
		if dir == "" {
			dir = defaultCacheDir
		}
		store, err := cache.NewFileStore(dir)
		if err != nil {
			return nil, nil, err
		}
		log.Debug("using file cache", zap.String("dir", dir))
		return store, func() {}, nil
	case backendRedis:
		store, err := cache.NewRedisStore(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("connect to redis cache: %w", err)
		}
		log.Debug("using redis cache", zap.String("address", cfg.Redis.Address))
		return store, func() {
			if err := store.Close(); err != nil {
				log.Warn("closing redis cache", zap.Error(err))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cache backend: %s", cfg.Backend)
	}
}

func newExtractor(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Extractor, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != providerGemini {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Env:   geminiAPIKeyEnv,
		Value: cfg.Gemini.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, gemini.Config{
		APIKey:  apiKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
		Timeout: cfg.Gemini.Timeout,
	}, log)
	if err != nil {
		return nil, err
	}

	extractorLogger := logger.WithFields(log, logger.CommonFields(providerGemini, generator.Model())...)

	return gemini.NewExtractor(generator, cfg.Gemini.MaxLogLength, extractorLogger), nil
}

// newProcessor wires the cache and the extractor into a pipeline. The returned func releases them.
func newProcessor(ctx context.Context, config *Config, log *zap.Logger) (*pipeline.Processor, func(), error) {
	store, closeStore, err := newStore(ctx, config.Cache, log)
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache: %w", err)
	}

	extractor, err := newExtractor(ctx, config.AI, log)
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("creating extractor: %w", err)
	}

	processor, err := pipeline.New(store, extractor, log)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	return processor, closeStore, nil
}
