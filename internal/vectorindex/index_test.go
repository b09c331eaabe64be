package vectorindex

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-windows/internal/chunker"
	"doc-windows/internal/embeddings"
	"doc-windows/internal/store"
)

func TestPostgresUpsert(t *testing.T) {
	ctx := context.Background()
	st := new(store.MockStore)
	st.On("SaveEmbeddings", ctx, []store.Embedding{
		{ChunkID: "s_0", Vector: embeddings.Vector{1, 0}, Model: "m"},
		{ChunkID: "s_1", Vector: embeddings.Vector{0, 1}, Model: "m"},
	}).Return(nil)

	idx := Postgres{Store: st}
	require.NoError(t, idx.Upsert(ctx, []Point{
		{ChunkID: "s_0", Vector: embeddings.Vector{1, 0}, Model: "m"},
		{ChunkID: "s_1", Vector: embeddings.Vector{0, 1}, Model: "m"},
	}))
	require.NoError(t, idx.Upsert(ctx, nil))
	st.AssertNumberOfCalls(t, "SaveEmbeddings", 1)
}

func TestPostgresSearch(t *testing.T) {
	ctx := context.Background()
	docID := uuid.New()
	vec := embeddings.Vector{0.1, 0.2}
	st := new(store.MockStore)
	st.On("TopK", ctx, []uuid.UUID{docID}, vec, 2).Return([]store.SearchResult{
		{Chunk: store.Chunk{Chunk: chunker.Chunk{ChunkID: "s_3"}, DocumentID: docID}, Score: 0.8},
	}, nil)

	hits, err := Postgres{Store: st}.Search(ctx, []uuid.UUID{docID}, vec, 2)
	require.NoError(t, err)
	assert.Equal(t, []Hit{{ChunkID: "s_3", DocumentID: docID, Score: 0.8}}, hits)
}

func TestPointFromChunkCarriesLinks(t *testing.T) {
	docID := uuid.New()
	c := store.Chunk{
		Chunk: chunker.Chunk{
			ChunkID:     "s_1",
			PrevChunkID: "s_0",
			NextChunkID: "t_0",
			SectionPath: []string{"Guide", "Install"},
			Title:       "Install",
		},
		DocumentID: docID,
	}
	p := PointFromChunk(c, embeddings.Vector{1}, "m")
	assert.Equal(t, "s_0", p.PrevChunkID)
	assert.Equal(t, "t_0", p.NextChunkID)

	pl := payload(p)
	assert.Equal(t, "Guide / Install", pl["section_path"])
	assert.Equal(t, docID.String(), pl["document_id"])
}

func TestPointIDDeterministic(t *testing.T) {
	assert.Equal(t, PointID("abc_0"), PointID("abc_0"))
	assert.NotEqual(t, PointID("abc_0"), PointID("abc_1"))
	_, err := uuid.Parse(PointID("abc_0"))
	assert.NoError(t, err)
}
