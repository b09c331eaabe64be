package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Cache provides query result caching
type Cache interface {
	// GetQueryResult retrieves a cached query result by key.
	// Returns nil if not found.
	GetQueryResult(ctx context.Context, key string) (*QueryResult, error)

	SetQueryResult(ctx context.Context, key string, result *QueryResult, ttl time.Duration) error

	// InvalidateDocument removes all cached queries touching a document.
	InvalidateDocument(ctx context.Context, docID string) error

	Close() error
}

// QueryResult is a cached retrieval response: the answer and the ranked hits,
// each expanded along its window chain.
type QueryResult struct {
	Answer string `json:"answer"`
	Hits   []Hit  `json:"hits"`
}

// Hit is one retrieved window plus its neighbours in chain order.
type Hit struct {
	ChunkID    string   `json:"chunk_id"`
	DocumentID string   `json:"document_id"`
	Score      float32  `json:"score"`
	Title      string   `json:"title"`
	Path       []string `json:"section_path"`
	ChunkIDs   []string `json:"context_chunk_ids"`
	Context    string   `json:"context"`
}

// GenerateCacheKey derives a stable key from the query parameters. Document
// order does not matter.
func GenerateCacheKey(question string, documentIDs []string, topK, radius int) string {
	ids := slices.Clone(documentIDs)
	slices.Sort(ids)
	h := sha256.New()
	fmt.Fprintf(h, "%s\x1f%s\x1f%d\x1f%d", strings.TrimSpace(strings.ToLower(question)), strings.Join(ids, ","), topK, radius)
	return hex.EncodeToString(h.Sum(nil))
}
