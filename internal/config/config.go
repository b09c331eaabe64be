package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

// Config holds runtime configuration shared by every service.
type Config struct {
	// Server
	Port       int    `env:"PORT" envDefault:"8080" validate:"gt=0"`
	HealthPort int    `env:"HEALTH_PORT" envDefault:"8090" validate:"gt=0"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760" validate:"gt=0"` // 10MB in bytes

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"postgres" validate:"oneof=postgres"`
	DBURL         string `env:"DB_URL"`

	// Queue
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"nats" validate:"oneof=nats"`
	QueueURL      string `env:"QUEUE_URL"`

	// Blob storage for sources and chunk files
	BlobProvider string `env:"BLOB_PROVIDER" envDefault:"s3" validate:"oneof=s3"`
	S3Bucket     string `env:"S3_BUCKET"`
	S3Region     string `env:"AWS_REGION" envDefault:"us-east-1"`
	S3Endpoint   string `env:"S3_ENDPOINT"`
	AWSAccessKey string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey string `env:"AWS_SECRET_ACCESS_KEY"`

	// Redis backs progress heartbeats and the query cache.
	ProgressProvider string        `env:"PROGRESS_PROVIDER" envDefault:"redis" validate:"oneof=redis none"`
	RedisAddr        string        `env:"REDIS_ADDR"`
	RedisPassword    string        `env:"REDIS_PASSWORD"`
	CacheTTL         time.Duration `env:"CACHE_TTL" envDefault:"1h"`

	// LLM & Embeddings
	LLMProvider    string `env:"LLM_PROVIDER" envDefault:"openai" validate:"oneof=openai"`
	OpenAIKey      string `env:"OPENAI_API_KEY"`
	LLMModel       string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	EmbeddingDim   int    `env:"EMBEDDING_DIM" envDefault:"1536" validate:"gt=0"`
	SectionTitles  bool   `env:"SECTION_TITLES" envDefault:"false"`

	// Windowing
	Tokenizer        string `env:"TOKENIZER" envDefault:"tiktoken" validate:"oneof=tiktoken words"`
	TokenEncoding    string `env:"TOKEN_ENCODING" envDefault:"cl100k_base"`
	WindowSize       int    `env:"WINDOW_SIZE" envDefault:"700" validate:"gt=0"`
	WindowStride     int    `env:"WINDOW_STRIDE" envDefault:"600" validate:"gt=0,ltfield=WindowSize"`
	SegmenterMaxSpan int    `env:"SEGMENTER_MAX_SPAN" envDefault:"1000000" validate:"gt=0"`
	MinSectionBytes  int    `env:"MIN_SECTION_BYTES" envDefault:"4000" validate:"gte=0"`
	WriteManifest    bool   `env:"WRITE_SECTION_MANIFEST" envDefault:"true"`

	// Retrieval
	VectorProvider   string `env:"VECTOR_PROVIDER" envDefault:"postgres" validate:"oneof=postgres qdrant"`
	QdrantURL        string `env:"QDRANT_URL" envDefault:"http://localhost:6333"`
	QdrantCollection string `env:"QDRANT_COLLECTION" envDefault:"windows"`
	QueryServiceURL  string `env:"QUERY_SERVICE_URL" envDefault:"http://query:8081/api/query" validate:"url"`
	TopK             int    `env:"TOP_K" envDefault:"5" validate:"gt=0,lte=50"`
	ContextRadius    int    `env:"CONTEXT_RADIUS" envDefault:"1" validate:"gte=0,lte=10"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}

var validate = validator.New()

// Validate checks value ranges and provider names.
func (c Config) Validate() error {
	return validate.Struct(c)
}
