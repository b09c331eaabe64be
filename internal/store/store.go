package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"doc-windows/internal/chunker"
	"doc-windows/internal/embeddings"
)

type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusWindowed   DocumentStatus = "windowed"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

var ErrNotFound = errors.New("not found")

type Document struct {
	ID            uuid.UUID
	Tenant        string
	Filename      string
	SourcePath    string
	Status        DocumentStatus
	FailureReason string
	CreatedAt     time.Time
}

// Chunk is a linked window as persisted for one document. Ord is its position
// in the document's emission order.
type Chunk struct {
	chunker.Chunk
	DocumentID uuid.UUID `json:"documentId"`
	Ord        int       `json:"ord"`
}

type Embedding struct {
	ChunkID string
	Vector  embeddings.Vector
	Model   string
}

type SearchResult struct {
	Chunk Chunk
	Score float32
}

// Store defines persistence contract; an external DB implementation can replace this.
type Store interface {
	// CreateDocument inserts doc in the processing state. A zero ID is replaced
	// by a fresh one.
	CreateDocument(ctx context.Context, doc Document) (Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (Document, error)
	UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status DocumentStatus) error
	MarkDocumentFailed(ctx context.Context, id uuid.UUID, reason string) error
	DeleteChunks(ctx context.Context, docID uuid.UUID) error
	SaveChunk(ctx context.Context, chunk Chunk) error
	ListChunks(ctx context.Context, docID uuid.UUID) ([]Chunk, error)
	GetChunk(ctx context.Context, chunkID string) (Chunk, error)
	SaveEmbeddings(ctx context.Context, embs []Embedding) error
	TopK(ctx context.Context, docIDs []uuid.UUID, vector embeddings.Vector, k int) ([]SearchResult, error)
}
