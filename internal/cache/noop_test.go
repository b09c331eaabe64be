package cache

import (
	"context"
	"testing"
	"time"
)

func TestNoOpCache(t *testing.T) {
	cache := NewNoOpCache()
	ctx := context.Background()

	result, err := cache.GetQueryResult(ctx, "test-key")
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if result != nil {
		t.Errorf("Expected nil result (cache miss), got %v", result)
	}

	err = cache.SetQueryResult(ctx, "test-key", &QueryResult{
		Hits: []Hit{{ChunkID: "sec_0", DocumentID: "doc-123", Score: 0.9}},
	}, time.Hour)
	if err != nil {
		t.Errorf("Expected no error on SetQueryResult, got %v", err)
	}

	result, err = cache.GetQueryResult(ctx, "test-key")
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if result != nil {
		t.Errorf("Expected nil result (no-op cache doesn't store), got %v", result)
	}

	if err := cache.InvalidateDocument(ctx, "doc-123"); err != nil {
		t.Errorf("Expected no error on InvalidateDocument, got %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("Expected no error on Close, got %v", err)
	}
}

func TestDocumentIDs(t *testing.T) {
	got := documentIDs(&QueryResult{Hits: []Hit{
		{DocumentID: "a"}, {DocumentID: "b"}, {DocumentID: "a"}, {DocumentID: ""},
	}})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("documentIDs = %v, want [a b]", got)
	}
	if documentIDs(nil) != nil {
		t.Errorf("documentIDs(nil) should be nil")
	}
}

func TestGenerateCacheKey(t *testing.T) {
	a := GenerateCacheKey("What is Go?", []string{"b", "a"}, 5, 1)
	b := GenerateCacheKey("  what is go? ", []string{"a", "b"}, 5, 1)
	if a != b {
		t.Errorf("keys differ for equivalent queries: %s vs %s", a, b)
	}
	if a == GenerateCacheKey("What is Go?", []string{"a", "b"}, 5, 2) {
		t.Error("radius must change the key")
	}
	if a == GenerateCacheKey("What is Go?", []string{"a"}, 5, 1) {
		t.Error("document set must change the key")
	}
}
