// Package vectorindex stores window embeddings and answers nearest-neighbour
// queries scoped to a set of documents.
package vectorindex

import (
	"context"

	"github.com/google/uuid"

	"doc-windows/internal/embeddings"
	"doc-windows/internal/store"
)

// Point is one embedded window with the chain links needed to expand a hit.
type Point struct {
	ChunkID     string
	DocumentID  uuid.UUID
	PrevChunkID string
	NextChunkID string
	SectionPath []string
	Title       string
	Vector      embeddings.Vector
	Model       string
}

type Hit struct {
	ChunkID    string
	DocumentID uuid.UUID
	Score      float32
}

type Index interface {
	Upsert(ctx context.Context, points []Point) error
	Search(ctx context.Context, docIDs []uuid.UUID, vector embeddings.Vector, k int) ([]Hit, error)
}

// PointFromChunk pairs a stored window with its vector.
func PointFromChunk(c store.Chunk, vec embeddings.Vector, model string) Point {
	return Point{
		ChunkID:     c.ChunkID,
		DocumentID:  c.DocumentID,
		PrevChunkID: c.PrevChunkID,
		NextChunkID: c.NextChunkID,
		SectionPath: c.SectionPath,
		Title:       c.Title,
		Vector:      vec,
		Model:       model,
	}
}

// Postgres keeps vectors in the store's pgvector column.
type Postgres struct {
	Store store.Store
}

func (p Postgres) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	embs := make([]store.Embedding, len(points))
	for i, pt := range points {
		embs[i] = store.Embedding{ChunkID: pt.ChunkID, Vector: pt.Vector, Model: pt.Model}
	}
	return p.Store.SaveEmbeddings(ctx, embs)
}

func (p Postgres) Search(ctx context.Context, docIDs []uuid.UUID, vector embeddings.Vector, k int) ([]Hit, error) {
	results, err := p.Store.TopK(ctx, docIDs, vector, k)
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{ChunkID: r.Chunk.ChunkID, DocumentID: r.Chunk.DocumentID, Score: r.Score}
	}
	return hits, nil
}
