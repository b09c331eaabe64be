package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"doc-windows/internal/blob"
	"doc-windows/internal/chunker"
	"doc-windows/internal/store"
)

const jsonContentType = "application/json"

// BlobSink uploads each linked chunk as "{Prefix}/{chunkId}.chunk.json".
type BlobSink struct {
	Blob   blob.Store
	Tenant string
	Prefix string

	paths []string
}

func (s *BlobSink) Flush(ctx context.Context, c chunker.Chunk) error {
	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode chunk: %w", err)
	}
	p := chunker.ChunkPath(s.Prefix, c.ChunkID)
	if _, err := s.Blob.Upload(ctx, s.Tenant, p, body, jsonContentType); err != nil {
		return err
	}
	s.paths = append(s.paths, p)
	return nil
}

// Paths lists uploaded chunk paths in flush order.
func (s *BlobSink) Paths() []string { return s.paths }

// StoreSink upserts chunks with their position in the document's chain.
type StoreSink struct {
	Store      store.Store
	DocumentID uuid.UUID

	ord int
}

func (s *StoreSink) Flush(ctx context.Context, c chunker.Chunk) error {
	err := s.Store.SaveChunk(ctx, store.Chunk{Chunk: c, DocumentID: s.DocumentID, Ord: s.ord})
	if err != nil {
		return err
	}
	s.ord++
	return nil
}
