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
	HTTP     HTTPConfig     `yaml:"http"`
	Summary  SummaryConfig  `yaml:"summary"`
	LLM      LLMConfig      `yaml:"llm"`
	Postgres PostgresConfig `yaml:"postgres"`
	Blob     BlobConfig     `yaml:"blob"`
	Cache    CacheConfig    `yaml:"cache"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

// SummaryConfig drives the chunking and folding pipeline.
type SummaryConfig struct {
	DefaultStyle string        `yaml:"defaultStyle"`
	Encoding     string        `yaml:"encoding"`
	CacheTTL     time.Duration `yaml:"cacheTtl"`
}

// LLMConfig contains the generative backend settings.
type LLMConfig struct {
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseUrl"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Timeout     time.Duration `yaml:"timeout"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// BlobConfig contains S3-compatible object storage settings.
type BlobConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// CacheConfig contains connection information for the summary cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
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
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("SUMMARY_DEFAULT_STYLE"); v != "" {
		cfg.Summary.DefaultStyle = v
	}
	if v := os.Getenv("SUMMARY_ENCODING"); v != "" {
		cfg.Summary.Encoding = v
	}
	if v := os.Getenv("SUMMARY_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Summary.CacheTTL = parsed
		}
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.LLM.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("LLM_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.LLM.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.LLM.Timeout = parsed
		}
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("BLOB_ENABLED"); v != "" {
		cfg.Blob.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("BLOB_ENDPOINT"); v != "" {
		cfg.Blob.Endpoint = v
	}
	if v := os.Getenv("BLOB_ACCESS_KEY"); v != "" {
		cfg.Blob.AccessKey = v
	}
	if v := os.Getenv("BLOB_SECRET_KEY"); v != "" {
		cfg.Blob.SecretKey = v
	}
	if v := os.Getenv("BLOB_BUCKET"); v != "" {
		cfg.Blob.Bucket = v
	}
	if v := os.Getenv("BLOB_REGION"); v != "" {
		cfg.Blob.Region = v
	}
	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("CACHE_PREFIX"); v != "" {
		cfg.Cache.Prefix = v
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Summary: SummaryConfig{
			DefaultStyle: "concise",
			Encoding:     "cl100k_base",
			CacheTTL:     6 * time.Hour,
		},
		LLM: LLMConfig{
			MaxAttempts: 3,
			BaseBackoff: 500 * time.Millisecond,
			Timeout:     120 * time.Second,
		},
		Postgres: PostgresConfig{
			DSN:      "",
			MaxConns: 4,
			MinConns: 0,
		},
		Blob: BlobConfig{
			Enabled: false,
			Bucket:  "councilscribe-documents",
			Region:  "auto",
		},
		Cache: CacheConfig{
			Enabled: false,
			Prefix:  "summary",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.Summary.DefaultStyle) == "" {
		return errors.New("summary.defaultStyle cannot be empty")
	}
	if strings.TrimSpace(c.Summary.Encoding) == "" {
		return errors.New("summary.encoding cannot be empty")
	}
	if c.Summary.CacheTTL < 0 {
		return errors.New("summary.cacheTtl cannot be negative")
	}
	if c.LLM.MaxAttempts <= 0 {
		return errors.New("llm.maxAttempts must be positive")
	}
	if c.LLM.BaseBackoff <= 0 {
		return errors.New("llm.baseBackoff must be positive")
	}
	if c.LLM.Timeout <= 0 {
		return errors.New("llm.timeout must be positive")
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Addr) == "" {
		return errors.New("cache.addr cannot be empty when the summary cache is enabled")
	}
	if c.Blob.Enabled {
		if strings.TrimSpace(c.Blob.Endpoint) == "" {
			return errors.New("blob.endpoint cannot be empty when blob storage is enabled")
		}
		if strings.TrimSpace(c.Blob.Bucket) == "" {
			return errors.New("blob.bucket cannot be empty when blob storage is enabled")
		}
	}
	return nil
}
