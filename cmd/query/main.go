package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/google/uuid"

	"doc-windows/internal/app"
	"doc-windows/internal/cache"
	"doc-windows/internal/httputil"
	"doc-windows/internal/store"
	"doc-windows/internal/vectorindex"
)

type queryRequest struct {
	Question    string   `json:"question" validate:"required,min=3,max=500"`
	DocumentIDs []string `json:"document_ids" validate:"required,min=1,dive,uuid"`
	TopK        int      `json:"top_k" validate:"omitempty,min=1,max=20"`
	Radius      *int     `json:"context_radius" validate:"omitempty,min=0,max=10"`
}

func main() {
	deps, err := app.Build("query")
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	r := httputil.NewRouter(deps.Log)

	r.Post("/api/query", queryHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("query service listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		deps.Log.Error("server error", "err", err)
	}
}

func queryHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		topK := req.TopK
		if topK == 0 {
			topK = deps.Config.TopK
		}
		radius := deps.Config.ContextRadius
		if req.Radius != nil {
			radius = *req.Radius
		}
		ctx := r.Context()

		cacheKey := cache.GenerateCacheKey(req.Question, req.DocumentIDs, topK, radius)
		if cached, err := deps.Cache.GetQueryResult(ctx, cacheKey); err == nil && cached != nil {
			deps.Log.Info("cache hit", "question", req.Question)
			writeResult(w, cached, true)
			return
		} else if err != nil {
			deps.Log.Warn("cache read failed", "err", err)
		}

		vec, err := deps.Embedder.Embed(ctx, req.Question)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to embed question", err, http.StatusInternalServerError)
			return
		}
		found, err := deps.Index.Search(ctx, parseDocumentIDs(req.DocumentIDs), vec, topK)
		if err != nil {
			httputil.Fail(deps.Log, w, "search failed", err, http.StatusInternalServerError)
			return
		}

		exp := newExpander(deps.Store)
		hits := make([]cache.Hit, 0, len(found))
		for _, h := range found {
			hit, err := exp.hit(ctx, h, radius)
			if errors.Is(err, store.ErrNotFound) {
				// Index entries can outlive a re-windowed document.
				deps.Log.Warn("stale index entry", "chunk_id", h.ChunkID)
				continue
			}
			if err != nil {
				httputil.Fail(deps.Log, w, "context expansion failed", err, http.StatusInternalServerError)
				return
			}
			hits = append(hits, hit)
		}

		answer, _, err := deps.LLM.Answer(ctx, req.Question, joinContexts(hits))
		if err != nil {
			httputil.Fail(deps.Log, w, "llm failed", err, http.StatusInternalServerError)
			return
		}

		result := &cache.QueryResult{Answer: answer, Hits: hits}
		if err := deps.Cache.SetQueryResult(ctx, cacheKey, result, deps.Config.CacheTTL); err != nil {
			deps.Log.Warn("failed to cache result", "err", err)
		}
		writeResult(w, result, false)
	}
}

func writeResult(w http.ResponseWriter, res *cache.QueryResult, cached bool) {
	hits := res.Hits
	if hits == nil {
		hits = []cache.Hit{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"answer": res.Answer,
		"hits":   hits,
		"cached": cached,
	})
}

// parseDocumentIDs converts string UUIDs to uuid.UUID slice, skipping invalid ones.
func parseDocumentIDs(ids []string) []uuid.UUID {
	var result []uuid.UUID
	for _, s := range ids {
		if id, err := uuid.Parse(s); err == nil {
			result = append(result, id)
		}
	}
	return result
}

func joinContexts(hits []cache.Hit) string {
	var b strings.Builder
	for i, h := range hits {
		if i > 0 {
			b.WriteString("\n\n---\n\n")
		}
		if len(h.Path) > 0 {
			b.WriteString(strings.Join(h.Path, " > "))
			b.WriteString("\n")
		}
		b.WriteString(h.Context)
	}
	return b.String()
}

// expander walks prev/next links from a hit. Chunks are fetched once per
// request.
type expander struct {
	st   store.Store
	seen map[string]store.Chunk
}

func newExpander(st store.Store) *expander {
	return &expander{st: st, seen: make(map[string]store.Chunk)}
}

func (e *expander) get(ctx context.Context, id string) (store.Chunk, error) {
	if c, ok := e.seen[id]; ok {
		return c, nil
	}
	c, err := e.st.GetChunk(ctx, id)
	if err != nil {
		return store.Chunk{}, err
	}
	e.seen[id] = c
	return c, nil
}

// window returns up to radius chunks on each side of id, in chain order.
func (e *expander) window(ctx context.Context, id string, radius int) ([]store.Chunk, error) {
	center, err := e.get(ctx, id)
	if err != nil {
		return nil, err
	}
	var before []store.Chunk
	for cur, i := center, 0; i < radius && cur.PrevChunkID != ""; i++ {
		if cur, err = e.get(ctx, cur.PrevChunkID); err != nil {
			return nil, err
		}
		before = append(before, cur)
	}
	out := make([]store.Chunk, 0, len(before)+1+radius)
	for i := len(before) - 1; i >= 0; i-- {
		out = append(out, before[i])
	}
	out = append(out, center)
	for cur, i := center, 0; i < radius && cur.NextChunkID != ""; i++ {
		if cur, err = e.get(ctx, cur.NextChunkID); err != nil {
			return nil, err
		}
		out = append(out, cur)
	}
	return out, nil
}

func (e *expander) hit(ctx context.Context, h vectorindex.Hit, radius int) (cache.Hit, error) {
	chain, err := e.window(ctx, h.ChunkID, radius)
	if err != nil {
		return cache.Hit{}, err
	}
	var center store.Chunk
	ids := make([]string, len(chain))
	var sentences, prev []string
	for i, c := range chain {
		ids[i] = c.ChunkID
		if c.ChunkID == h.ChunkID {
			center = c
		}
		sentences = append(sentences, c.Sentences[overlap(prev, c.Sentences):]...)
		prev = c.Sentences
	}
	return cache.Hit{
		ChunkID:    h.ChunkID,
		DocumentID: h.DocumentID.String(),
		Score:      h.Score,
		Title:      center.Title,
		Path:       center.SectionPath,
		ChunkIDs:   ids,
		Context:    strings.Join(sentences, " "),
	}, nil
}

// overlap is the number of leading sentences of next that repeat the
// trailing sentences of prev.
func overlap(prev, next []string) int {
	for k := min(len(prev), len(next)); k > 0; k-- {
		if slices.Equal(prev[len(prev)-k:], next[:k]) {
			return k
		}
	}
	return 0
}
