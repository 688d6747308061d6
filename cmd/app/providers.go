package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/civiclens/councilscribe/internal/domain/pipeline"
	"github.com/civiclens/councilscribe/internal/domain/records"
	"github.com/civiclens/councilscribe/internal/domain/summarize"
	"github.com/civiclens/councilscribe/internal/infra/chunker"
	"github.com/civiclens/councilscribe/internal/infra/config"
	"github.com/civiclens/councilscribe/internal/infra/extract"
	"github.com/civiclens/councilscribe/internal/infra/llm/openai"
	"github.com/civiclens/councilscribe/internal/infra/records/blob"
	"github.com/civiclens/councilscribe/internal/infra/records/repo"
	"github.com/civiclens/councilscribe/internal/infra/summarycache"
	"github.com/civiclens/councilscribe/internal/infra/tokenizer"
	httpiface "github.com/civiclens/councilscribe/internal/interface/http"
)

func provideStyles() (*summarize.Registry, error) {
	return summarize.NewRegistry(summarize.BuiltinStyles())
}

// provideTokenCounter fails startup on a bad encoding; budget accounting
// must never silently degrade to the heuristic estimator.
func provideTokenCounter(cfg *config.Config) (summarize.TokenCounter, error) {
	counter, err := tokenizer.NewTiktoken(cfg.Summary.Encoding)
	if err != nil {
		return nil, fmt.Errorf("summary token counter: %w", err)
	}
	return counter, nil
}

func provideChunker(counter summarize.TokenCounter) summarize.Chunker {
	return chunker.NewBoundaryChunker(counter)
}

func provideBackendClient(cfg *config.Config, logger *slog.Logger) (*openai.Client, error) {
	return openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		MaxAttempts: cfg.LLM.MaxAttempts,
		BaseBackoff: cfg.LLM.BaseBackoff,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
}

// repositories bundles the storage implementations so the Postgres pool is
// shared and the memory fallback stays consistent across repos.
type repositories struct {
	meetings     records.MeetingRepository
	legislations records.LegislationRepository
	documents    records.DocumentRepository
	summaries    records.SummaryRepository
}

func provideRepositories(cfg *config.Config, logger *slog.Logger) repositories {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return memoryRepositories()
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return memoryRepositories()
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return memoryRepositories()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return memoryRepositories()
	}
	logger.Info("postgres repositories enabled")
	return repositories{
		meetings:     repo.NewPostgresMeetingRepository(pool),
		legislations: repo.NewPostgresLegislationRepository(pool),
		documents:    repo.NewPostgresDocumentRepository(pool),
		summaries:    repo.NewPostgresSummaryRepository(pool),
	}
}

func memoryRepositories() repositories {
	meetings, legislations, documents, summaries := repo.NewMemoryRepositories()
	return repositories{
		meetings:     meetings,
		legislations: legislations,
		documents:    documents,
		summaries:    summaries,
	}
}

func provideMeetingRepository(repos repositories) records.MeetingRepository {
	return repos.meetings
}

func provideLegislationRepository(repos repositories) records.LegislationRepository {
	return repos.legislations
}

func provideDocumentRepository(repos repositories) records.DocumentRepository {
	return repos.documents
}

func provideSummaryRepository(repos repositories) records.SummaryRepository {
	return repos.summaries
}

func provideBlobStorage(cfg *config.Config, logger *slog.Logger) (records.BlobStorage, error) {
	if !cfg.Blob.Enabled {
		logger.Info("blob storage disabled, using memory storage")
		return blob.NewMemoryStorage(), nil
	}
	return blob.NewS3Storage(cfg.Blob.Endpoint, cfg.Blob.AccessKey, cfg.Blob.SecretKey, cfg.Blob.Bucket, cfg.Blob.Region, logger)
}

func provideExtractor(logger *slog.Logger) records.Extractor {
	return extract.NewMimeExtractor(logger)
}

func provideSummaryCache(cfg *config.Config, logger *slog.Logger) records.SummaryCache {
	if cfg.Cache.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return summarycache.NewMemoryCache()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return summarycache.NewMemoryCache()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		} else {
			logger.Info("valkey summary cache enabled", "addr", cfg.Cache.Addr)
			return summarycache.NewValkeyCache(client, cfg.Cache.Prefix)
		}
	}
	return summarycache.NewMemoryCache()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideHandler(
	pipelineSvc *pipeline.Service,
	meetings records.MeetingRepository,
	summaries records.SummaryRepository,
	cache records.SummaryCache,
	styles *summarize.Registry,
	cfg *config.Config,
	logger *slog.Logger,
) *httpiface.Handler {
	return httpiface.NewHandler(pipelineSvc, meetings, summaries, cache, styles, cfg.Summary.DefaultStyle, cfg.Summary.CacheTTL, logger)
}
