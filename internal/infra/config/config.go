package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Summary SummaryConfig `yaml:"summary"`
	LLM     LLMConfig     `yaml:"llm"`
	Cache   CacheConfig   `yaml:"cache"`
	Storage StorageConfig `yaml:"storage"`
	Queue   QueueConfig   `yaml:"queue"`
	Valkey  ValkeyConfig  `yaml:"valkey"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	MaxUploadBytes int64           `yaml:"maxUploadBytes"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// SummaryConfig defines chunking and strategy settings.
type SummaryConfig struct {
	DefaultMode   string   `yaml:"defaultMode"`
	ChunkSize     int      `yaml:"chunkSize"`
	ChunkOverlap  int      `yaml:"chunkOverlap"`
	TokenMax      int      `yaml:"tokenMax"`
	HashAlgorithm string   `yaml:"hashAlgorithm"`
	PrewarmModes  []string `yaml:"prewarmModes"`
}

// LLMConfig selects and tunes the summarization model.
type LLMConfig struct {
	Provider           string        `yaml:"provider"`
	APIKey             string        `yaml:"apiKey"`
	BaseURL            string        `yaml:"baseUrl"`
	Model              string        `yaml:"model"`
	Temperature        float32       `yaml:"temperature"`
	MaxOutputTokens    int           `yaml:"maxOutputTokens"`
	Tokenizer          string        `yaml:"tokenizer"`
	RequestsPerMinute  int           `yaml:"requestsPerMinute"`
	BreakerFailures    uint32        `yaml:"breakerFailures"`
	BreakerOpenTimeout time.Duration `yaml:"breakerOpenTimeout"`
}

// CacheConfig selects the summary cache backend.
type CacheConfig struct {
	Backend  string            `yaml:"backend"`
	Dir      string            `yaml:"dir"`
	Valkey   ValkeyCacheConfig `yaml:"valkey"`
	Postgres PostgresConfig    `yaml:"postgres"`
}

// ValkeyCacheConfig namespaces cache keys.
type ValkeyCacheConfig struct {
	Prefix string `yaml:"prefix"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// StorageConfig selects where uploaded PDFs are kept.
type StorageConfig struct {
	Backend string   `yaml:"backend"`
	Dir     string   `yaml:"dir"`
	R2      R2Config `yaml:"r2"`
}

// R2Config holds S3-compatible credentials.
type R2Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// QueueConfig selects the background job queue.
type QueueConfig struct {
	Backend string `yaml:"backend"`
	Key     string `yaml:"key"`
}

// ValkeyConfig is shared by the valkey cache and queue backends.
type ValkeyConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.HTTP.Address, "HTTP_ADDRESS")
	setInt64(&cfg.HTTP.MaxUploadBytes, "HTTP_MAX_UPLOAD_BYTES")
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	setBool(&cfg.HTTP.RateLimit.Enabled, "HTTP_RATE_LIMIT_ENABLED")
	setInt(&cfg.HTTP.RateLimit.RequestsPerMinute, "HTTP_RATE_LIMIT_RPM")
	setInt(&cfg.HTTP.RateLimit.Burst, "HTTP_RATE_LIMIT_BURST")
	setBool(&cfg.HTTP.Retry.Enabled, "HTTP_RETRY_ENABLED")
	setInt(&cfg.HTTP.Retry.MaxAttempts, "HTTP_RETRY_MAX_ATTEMPTS")
	setDuration(&cfg.HTTP.Retry.BaseBackoff, "HTTP_RETRY_BASE_BACKOFF")

	setString(&cfg.Summary.DefaultMode, "SUMMARY_DEFAULT_MODE")
	setInt(&cfg.Summary.ChunkSize, "SUMMARY_CHUNK_SIZE")
	setInt(&cfg.Summary.ChunkOverlap, "SUMMARY_CHUNK_OVERLAP")
	setInt(&cfg.Summary.TokenMax, "SUMMARY_TOKEN_MAX")
	setString(&cfg.Summary.HashAlgorithm, "SUMMARY_HASH_ALGORITHM")
	if v := os.Getenv("SUMMARY_PREWARM_MODES"); v != "" {
		cfg.Summary.PrewarmModes = splitList(v)
	}

	setString(&cfg.LLM.Provider, "LLM_PROVIDER")
	setString(&cfg.LLM.APIKey, "LLM_API_KEY")
	setString(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	setString(&cfg.LLM.Model, "LLM_MODEL")
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	setInt(&cfg.LLM.MaxOutputTokens, "LLM_MAX_OUTPUT_TOKENS")
	setInt(&cfg.LLM.RequestsPerMinute, "LLM_REQUESTS_PER_MINUTE")

	setString(&cfg.Cache.Backend, "CACHE_BACKEND")
	setString(&cfg.Cache.Dir, "CACHE_DIR")
	setString(&cfg.Cache.Postgres.DSN, "CACHE_POSTGRES_DSN")

	setString(&cfg.Storage.Backend, "STORAGE_BACKEND")
	setString(&cfg.Storage.Dir, "STORAGE_DIR")
	setString(&cfg.Storage.R2.Endpoint, "R2_ENDPOINT")
	setString(&cfg.Storage.R2.AccessKey, "R2_ACCESS_KEY")
	setString(&cfg.Storage.R2.SecretKey, "R2_SECRET_KEY")
	setString(&cfg.Storage.R2.Bucket, "R2_BUCKET")

	setString(&cfg.Queue.Backend, "QUEUE_BACKEND")
	setString(&cfg.Valkey.Addr, "VALKEY_ADDR")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = parsed
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8080",
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   5 * time.Minute,
			MaxUploadBytes: 32 << 20,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/documents",
					"/api/v1/summaries",
					"/api/v1/summaries/pages",
				},
			},
		},
		Summary: SummaryConfig{
			DefaultMode:   "detailed",
			ChunkSize:     1000,
			ChunkOverlap:  200,
			TokenMax:      3000,
			HashAlgorithm: "md5",
		},
		LLM: LLMConfig{
			Provider:           "openai",
			Model:              "gpt-4o-mini",
			Temperature:        0.2,
			MaxOutputTokens:    512,
			Tokenizer:          "cl100k_base",
			RequestsPerMinute:  120,
			BreakerFailures:    5,
			BreakerOpenTimeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			Backend: "file",
			Dir:     "summary_cache",
			Valkey:  ValkeyCacheConfig{Prefix: "summary"},
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Storage: StorageConfig{
			Backend: "local",
			Dir:     "data",
		},
		Queue: QueueConfig{
			Backend: "immediate",
			Key:     "docsummarizer:jobs",
		},
	}
}

func (c *Config) normalize() {
	for _, v := range []*string{
		&c.Summary.HashAlgorithm,
		&c.LLM.Provider,
		&c.Cache.Backend,
		&c.Storage.Backend,
		&c.Queue.Backend,
	} {
		*v = strings.ToLower(strings.TrimSpace(*v))
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		return errors.New("http.maxUploadBytes must be positive")
	}
	if c.Summary.ChunkSize <= 0 {
		return errors.New("summary.chunkSize must be positive")
	}
	if c.Summary.ChunkOverlap < 0 || c.Summary.ChunkOverlap >= c.Summary.ChunkSize {
		return errors.New("summary.chunkOverlap must be non-negative and smaller than summary.chunkSize")
	}
	if c.Summary.TokenMax <= 0 {
		return errors.New("summary.tokenMax must be positive")
	}
	if !oneOf(c.Summary.HashAlgorithm, "", "md5", "sha256", "blake2b") {
		return fmt.Errorf("summary.hashAlgorithm %q is not supported", c.Summary.HashAlgorithm)
	}
	if !oneOf(c.LLM.Provider, "openai", "anthropic", "extractive") {
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	if !oneOf(c.Cache.Backend, "file", "memory", "valkey", "postgres") {
		return fmt.Errorf("cache.backend %q is not supported", c.Cache.Backend)
	}
	if c.Cache.Backend == "postgres" && strings.TrimSpace(c.Cache.Postgres.DSN) == "" {
		return errors.New("cache.postgres.dsn cannot be empty when cache.backend is postgres")
	}
	if !oneOf(c.Storage.Backend, "local", "memory", "r2") {
		return fmt.Errorf("storage.backend %q is not supported", c.Storage.Backend)
	}
	if c.Storage.Backend == "r2" && (strings.TrimSpace(c.Storage.R2.Endpoint) == "" || strings.TrimSpace(c.Storage.R2.Bucket) == "") {
		return errors.New("storage.r2.endpoint and storage.r2.bucket are required when storage.backend is r2")
	}
	if !oneOf(c.Queue.Backend, "immediate", "valkey", "none") {
		return fmt.Errorf("queue.backend %q is not supported", c.Queue.Backend)
	}
	if (c.Cache.Backend == "valkey" || c.Queue.Backend == "valkey") && strings.TrimSpace(c.Valkey.Addr) == "" {
		return errors.New("valkey.addr cannot be empty when a valkey backend is selected")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}

func oneOf(value string, allowed ...string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
