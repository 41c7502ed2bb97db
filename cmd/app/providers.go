package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/docsummarizer/internal/domain/document"
	"github.com/yanqian/docsummarizer/internal/domain/library"
	"github.com/yanqian/docsummarizer/internal/domain/summarizer"
	"github.com/yanqian/docsummarizer/internal/infra/config"
	"github.com/yanqian/docsummarizer/internal/infra/llm/chatgpt"
	"github.com/yanqian/docsummarizer/internal/infra/llm/model"
	"github.com/yanqian/docsummarizer/internal/infra/pdf"
	"github.com/yanqian/docsummarizer/internal/infra/queue"
	"github.com/yanqian/docsummarizer/internal/infra/splitter"
	"github.com/yanqian/docsummarizer/internal/infra/storage"
	"github.com/yanqian/docsummarizer/internal/infra/summarycache"
)

func provideSummaryConfig(cfg *config.Config) summarizer.Config {
	return summarizer.Config{
		DefaultMode: cfg.Summary.DefaultMode,
		TokenMax:    cfg.Summary.TokenMax,
	}
}

func provideLibraryConfig(cfg *config.Config) library.Config {
	return library.Config{
		MaxFileBytes: cfg.HTTP.MaxUploadBytes,
		PrewarmModes: cfg.Summary.PrewarmModes,
	}
}

func provideDigest(cfg *config.Config) (document.Digest, error) {
	return document.ParseDigest(cfg.Summary.HashAlgorithm)
}

func provideTokenCounter(cfg *config.Config, logger *slog.Logger) splitter.TokenCounter {
	counter := splitter.NewTokenCounter(cfg.LLM.Tokenizer)
	if _, ok := counter.(splitter.EstimateCounter); ok {
		logger.Warn("tokenizer unavailable, estimating token counts", "encoding", cfg.LLM.Tokenizer)
	}
	return counter
}

func provideSummaryTokenCounter(counter splitter.TokenCounter) summarizer.TokenCounter {
	return counter
}

func provideSplitter(cfg *config.Config, counter splitter.TokenCounter) document.Splitter {
	return splitter.NewRecursiveSplitter(cfg.Summary.ChunkSize, cfg.Summary.ChunkOverlap, counter)
}

func provideLoader(logger *slog.Logger) document.Loader {
	return pdf.NewLoader(logger)
}

func provideModel(cfg *config.Config, logger *slog.Logger) (summarizer.Model, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if provider != "extractive" && strings.TrimSpace(cfg.LLM.APIKey) == "" {
		logger.Warn("llm api key not set, using extractive model", "provider", provider)
		provider = "extractive"
	}

	var base summarizer.Model
	switch provider {
	case "anthropic":
		m, err := model.NewAnthropicModel(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, float64(cfg.LLM.Temperature), cfg.LLM.MaxOutputTokens)
		if err != nil {
			return nil, err
		}
		base = m
	case "openai":
		client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
		if err != nil {
			return nil, err
		}
		base = model.NewChatGPTModel(client, cfg.LLM.Model, cfg.LLM.Temperature, cfg.LLM.MaxOutputTokens)
	default:
		return model.NewExtractiveModel(0), nil
	}

	logger.Info("llm provider enabled", "provider", provider, "model", cfg.LLM.Model)
	return model.NewGuard(base, model.GuardConfig{
		Name:              provider,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
		FailureThreshold:  cfg.LLM.BreakerFailures,
		OpenTimeout:       cfg.LLM.BreakerOpenTimeout,
	}, logger), nil
}

// provideValkeyClient connects only when a backend needs Valkey. A nil
// client makes the dependent providers fall back to local backends.
func provideValkeyClient(cfg *config.Config, logger *slog.Logger) valkey.Client {
	if cfg.Cache.Backend != "valkey" && cfg.Queue.Backend != "valkey" {
		return nil
	}
	opt, err := buildValkeyOptions(cfg.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration", "error", err)
		return nil
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed", "error", err)
		client.Close()
		return nil
	}
	logger.Info("valkey connected", "addr", cfg.Valkey.Addr)
	return client
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideSummaryCache(cfg *config.Config, client valkey.Client, logger *slog.Logger) (summarizer.Cache, error) {
	switch cfg.Cache.Backend {
	case "memory":
		logger.Info("summary cache backend", "backend", "memory")
		return summarycache.NewMemoryStore(), nil
	case "valkey":
		if client != nil {
			logger.Info("summary cache backend", "backend", "valkey")
			return summarycache.NewValkeyStore(client, cfg.Cache.Valkey.Prefix), nil
		}
		logger.Warn("valkey unavailable, using file summary cache", "dir", cfg.Cache.Dir)
	case "postgres":
		if store := providePostgresCache(cfg.Cache.Postgres, logger); store != nil {
			return store, nil
		}
		logger.Warn("postgres unavailable, using file summary cache", "dir", cfg.Cache.Dir)
	}
	logger.Info("summary cache backend", "backend", "file", "dir", cfg.Cache.Dir)
	return summarycache.NewFileStore(cfg.Cache.Dir)
}

func providePostgresCache(cfg config.PostgresConfig, logger *slog.Logger) *summarycache.PostgresStore {
	poolConfig, err := pgxpool.ParseConfig(strings.TrimSpace(cfg.DSN))
	if err != nil {
		logger.Error("invalid postgres dsn", "error", err)
		return nil
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed", "error", err)
		pool.Close()
		return nil
	}
	store := summarycache.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("failed to create summary_cache table", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("summary cache backend", "backend", "postgres")
	return store
}

func provideObjectStorage(cfg *config.Config, logger *slog.Logger) (library.ObjectStorage, error) {
	switch cfg.Storage.Backend {
	case "memory":
		logger.Info("document storage backend", "backend", "memory")
		return storage.NewMemoryStorage(), nil
	case "r2":
		r2, err := storage.NewR2Storage(storage.R2Config{
			Endpoint:  cfg.Storage.R2.Endpoint,
			AccessKey: cfg.Storage.R2.AccessKey,
			SecretKey: cfg.Storage.R2.SecretKey,
			Bucket:    cfg.Storage.R2.Bucket,
			Region:    cfg.Storage.R2.Region,
		}, logger)
		if err == nil {
			logger.Info("document storage backend", "backend", "r2", "bucket", cfg.Storage.R2.Bucket)
			return r2, nil
		}
		logger.Error("failed to init r2 storage, using local storage", "error", err)
	}
	logger.Info("document storage backend", "backend", "local", "dir", cfg.Storage.Dir)
	return storage.NewLocalStorage(cfg.Storage.Dir, logger)
}

func provideJobQueue(cfg *config.Config, client valkey.Client, logger *slog.Logger) queue.HandlerQueue {
	switch cfg.Queue.Backend {
	case "none":
		logger.Info("job queue disabled")
		return nil
	case "valkey":
		if client != nil {
			logger.Info("job queue backend", "backend", "valkey", "key", cfg.Queue.Key)
			return queue.NewValkeyQueue(client, cfg.Queue.Key, logger)
		}
		logger.Warn("valkey unavailable, using immediate job queue")
	}
	return queue.NewImmediateQueue(nil)
}

func provideLibraryJobQueue(q queue.HandlerQueue) library.JobQueue {
	if q == nil {
		return nil
	}
	return q
}
