package vectorindex

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"doc-windows/internal/embeddings"
)

// pointNamespace maps chunk ids, which are not UUIDs, onto Qdrant point ids.
var pointNamespace = uuid.MustParse("b3a4f0c2-1e7d-4d3a-8f55-0c9e2a7d6b11")

// Qdrant stores points in one collection. The payload carries the chain links
// so retrieval can walk neighbours without a database round trip.
type Qdrant struct {
	client     *qdrant.Client
	collection string
	log        *slog.Logger
}

// NewQdrant connects to the gRPC port derived from an HTTP url
// ("http://host:6333" dials 6334).
func NewQdrant(log *slog.Logger, urlStr, collection string) (*Qdrant, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}
	host := parsed.Hostname()
	if host == "" {
		host = "localhost"
	}
	port := 6334
	if parsed.Port() != "" {
		if httpPort, err := strconv.Atoi(parsed.Port()); err == nil {
			port = httpPort + 1
		}
	}
	client, err := qdrant.NewClient(&qdrant.Config{Host: host, Port: port})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}
	return &Qdrant{client: client, collection: collection, log: log}, nil
}

// EnsureCollection creates the collection with cosine distance when missing.
func (q *Qdrant) EnsureCollection(ctx context.Context, vectorSize int) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}
	q.log.Info("creating collection", "collection", q.collection, "vector_size", vectorSize)
	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

func PointID(chunkID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(chunkID)).String()
}

func payload(p Point) map[string]any {
	return map[string]any{
		"chunk_id":      p.ChunkID,
		"document_id":   p.DocumentID.String(),
		"prev_chunk_id": p.PrevChunkID,
		"next_chunk_id": p.NextChunkID,
		"section_path":  strings.Join(p.SectionPath, " / "),
		"title":         p.Title,
		"model":         p.Model,
	}
}

func (q *Qdrant) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	qpoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		qpoints = append(qpoints, &qdrant.PointStruct{
			Id:      qdrant.NewID(PointID(p.ChunkID)),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: qdrant.NewValueMap(payload(p)),
		})
	}
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         qpoints,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	q.log.Info("upserted points", "collection", q.collection, "count", len(points))
	return nil
}

func (q *Qdrant) Search(ctx context.Context, docIDs []uuid.UUID, vector embeddings.Vector, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}
	ids := make([]string, len(docIDs))
	for i, id := range docIDs {
		ids[i] = id.String()
	}
	limit := uint64(k)
	scored, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatchKeywords("document_id", ids...)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	hits := make([]Hit, 0, len(scored))
	for _, sp := range scored {
		chunkID := sp.Payload["chunk_id"].GetStringValue()
		docID, err := uuid.Parse(sp.Payload["document_id"].GetStringValue())
		if chunkID == "" || err != nil {
			q.log.Warn("skipping point without chunk payload", "point_id", sp.Id.GetUuid())
			continue
		}
		hits = append(hits, Hit{ChunkID: chunkID, DocumentID: docID, Score: sp.Score})
	}
	return hits, nil
}

func (q *Qdrant) Close() error {
	return q.client.Close()
}
