package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"doc-windows/internal/blob"
	"doc-windows/internal/cache"
	"doc-windows/internal/config"
	"doc-windows/internal/embeddings"
	"doc-windows/internal/llm"
	"doc-windows/internal/logger"
	"doc-windows/internal/progress"
	"doc-windows/internal/queue"
	"doc-windows/internal/store"
	"doc-windows/internal/vectorindex"
)

// Deps bundles common runtime dependencies for services.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Store    store.Store
	Queue    queue.Queue
	Blob     blob.Store
	Progress progress.Reporter
	Cache    cache.Cache
	Index    vectorindex.Index
	Embedder embeddings.Embedder
	LLM      llm.Client
}

// Build loads env, config, and shared components for the named service.
func Build(service string) (Deps, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return Deps{}, fmt.Errorf("invalid configuration: %w", err)
	}
	log := logger.New(service, cfg.LogLevel)
	ctx := context.Background()

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	bs, err := buildBlob(ctx, cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize blob store: %w", err)
	}
	rep, err := buildProgress(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize progress reporter: %w", err)
	}
	llmClient, err := buildLLM(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	embedder, err := buildEmbedder(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	idx, err := buildIndex(ctx, cfg, log, st)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	return Deps{
		Config:   cfg,
		Log:      log,
		Store:    st,
		Queue:    q,
		Blob:     bs,
		Progress: rep,
		Cache:    buildCache(cfg, log),
		Index:    idx,
		Embedder: embedder,
		LLM:      llmClient,
	}, nil
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid option: postgres)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid option: nats)", cfg.QueueProvider)
	}
}

func buildBlob(ctx context.Context, cfg config.Config, log *slog.Logger) (blob.Store, error) {
	switch cfg.BlobProvider {
	case "s3":
		s, err := blob.NewS3(ctx, blob.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
		if err != nil {
			return nil, err
		}
		log.Info("using S3 blob store", "bucket", cfg.S3Bucket)
		return s, nil
	default:
		return nil, fmt.Errorf("invalid BLOB_PROVIDER: %s (valid option: s3)", cfg.BlobProvider)
	}
}

func buildProgress(cfg config.Config, log *slog.Logger) (progress.Reporter, error) {
	switch cfg.ProgressProvider {
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required when PROGRESS_PROVIDER=redis")
		}
		r, err := progress.NewRedisReporter(log, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		log.Info("using Redis progress reporter")
		return r, nil
	case "none":
		return progress.NoOp{}, nil
	default:
		return nil, fmt.Errorf("invalid PROGRESS_PROVIDER: %s (valid options: redis, none)", cfg.ProgressProvider)
	}
}

// buildCache falls back to a no-op cache when Redis is not configured or unreachable.
func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		log.Info("query cache disabled")
		return cache.NewNoOpCache()
	}
	c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Warn("redis unavailable; query cache disabled", "err", err)
		return cache.NewNoOpCache()
	}
	return c
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		client, err := llm.NewOpenAIClient(cfg.OpenAIKey, openai.ChatModel(cfg.LLMModel))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI LLM client", "model", cfg.LLMModel)
		return client, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid option: openai)", cfg.LLMProvider)
	}
}

func buildEmbedder(cfg config.Config, log *slog.Logger) (embeddings.Embedder, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		embedder, err := embeddings.NewOpenAIEmbedder(cfg.OpenAIKey, openai.EmbeddingModel(cfg.EmbeddingModel))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI embedder: %w", err)
		}
		log.Info("using OpenAI embedder", "model", cfg.EmbeddingModel)
		return embedder, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid option: openai)", cfg.LLMProvider)
	}
}

func buildIndex(ctx context.Context, cfg config.Config, log *slog.Logger, st store.Store) (vectorindex.Index, error) {
	switch cfg.VectorProvider {
	case "postgres":
		log.Info("using pgvector index")
		return vectorindex.Postgres{Store: st}, nil
	case "qdrant":
		q, err := vectorindex.NewQdrant(log, cfg.QdrantURL, cfg.QdrantCollection)
		if err != nil {
			return nil, err
		}
		if err := q.EnsureCollection(ctx, cfg.EmbeddingDim); err != nil {
			return nil, err
		}
		log.Info("using Qdrant index", "collection", cfg.QdrantCollection)
		return q, nil
	default:
		return nil, fmt.Errorf("invalid VECTOR_PROVIDER: %s (valid options: postgres, qdrant)", cfg.VectorProvider)
	}
}
