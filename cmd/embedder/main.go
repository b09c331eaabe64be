package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"doc-windows/internal/app"
	"doc-windows/internal/httputil"
	"doc-windows/internal/progress"
	"doc-windows/internal/queue"
	"doc-windows/internal/store"
	"doc-windows/internal/vectorindex"
)

func main() {
	deps, err := app.Build("embedder")
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	deps.Log.Info("embedder worker starting", "model", deps.Config.EmbeddingModel, "index", deps.Config.VectorProvider)

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeEmbed, func(ctx context.Context, task queue.Task) error {
			var payload queue.DocumentPayload
			if err := task.DecodePayload(&payload); err != nil {
				return err
			}
			return handleEmbed(ctx, deps, payload)
		})
	})

	g.Go(func() error {
		return httputil.ServeHealth(ctx, deps.Log, deps.Config.HealthPort, "embedder")
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("embedder service stopped", "err", err)
	}
}

func handleEmbed(ctx context.Context, deps app.Deps, payload queue.DocumentPayload) error {
	docID := payload.DocumentID
	log := deps.Log.With("document_id", docID)

	doc, err := deps.Store.GetDocument(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	chunks, err := deps.Store.ListChunks(ctx, docID)
	if err != nil {
		return err
	}
	deps.Progress.Report(ctx, progress.Update{
		DocumentID:    docID.String(),
		Stage:         progress.StageEmbedding,
		ChunksFlushed: len(chunks),
	})

	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = embeddingText(doc.Filename, c)
		}
		vectors, err := deps.Embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to generate embeddings: %w", err)
		}
		if len(vectors) != len(chunks) {
			return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
		}
		model := deps.Embedder.Model()
		points := make([]vectorindex.Point, len(chunks))
		for i, c := range chunks {
			points[i] = vectorindex.PointFromChunk(c, vectors[i], model)
		}
		if err := deps.Index.Upsert(ctx, points); err != nil {
			return err
		}
	}

	if err := deps.Store.UpdateDocumentStatus(ctx, docID, store.StatusReady); err != nil {
		return err
	}
	if err := deps.Cache.InvalidateDocument(ctx, docID.String()); err != nil {
		log.Warn("failed to invalidate cached queries", "err", err)
	}
	deps.Progress.Report(ctx, progress.Update{
		DocumentID:    docID.String(),
		Stage:         progress.StageReady,
		ChunksFlushed: len(chunks),
	})
	log.Info("document ready", "chunks", len(chunks))
	return nil
}

// embeddingText enriches a window with its document and section so vectors
// of similar passages from different places stay apart.
func embeddingText(filename string, c store.Chunk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Document: %s\n", filename)
	if len(c.SectionPath) > 0 {
		fmt.Fprintf(&b, "Section: %s\n", strings.Join(c.SectionPath, " > "))
	}
	b.WriteString("\n")
	b.WriteString(c.Text())
	return b.String()
}
