package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"doc-windows/internal/app"
	"doc-windows/internal/blob"
	"doc-windows/internal/chunker"
	"doc-windows/internal/httputil"
	"doc-windows/internal/ingest"
	"doc-windows/internal/progress"
	"doc-windows/internal/queue"
	"doc-windows/internal/segment"
	"doc-windows/internal/store"
)

type documentRunner interface {
	Run(ctx context.Context, req ingest.Request) (ingest.Result, error)
}

func main() {
	deps, err := app.Build("windower")
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	runner, err := app.BuildRunner(deps)
	if err != nil {
		deps.Log.Error("failed to build runner", "err", err)
		os.Exit(1)
	}
	deps.Log.Info("windower worker starting",
		"window_size", deps.Config.WindowSize,
		"stride", deps.Config.WindowStride,
		"tokenizer", deps.Config.Tokenizer,
	)

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeWindow, func(ctx context.Context, task queue.Task) error {
			var payload queue.DocumentPayload
			if err := task.DecodePayload(&payload); err != nil {
				return err
			}
			return handleWindow(ctx, deps, runner, payload)
		})
	})

	g.Go(func() error {
		return httputil.ServeHealth(ctx, deps.Log, deps.Config.HealthPort, "windower")
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("windower service stopped", "err", err)
	}
}

func handleWindow(ctx context.Context, deps app.Deps, runner documentRunner, payload queue.DocumentPayload) error {
	log := deps.Log.With("document_id", payload.DocumentID)
	start := time.Now()

	res, err := runner.Run(ctx, ingest.Request{
		DocumentID:   payload.DocumentID,
		Tenant:       payload.Tenant,
		SourcePath:   payload.SourcePath,
		OutputPrefix: payload.OutputPrefix,
	})
	if err != nil {
		if ctx.Err() != nil {
			// Shutting down; the task is redelivered and re-run from scratch.
			return err
		}
		markFailed(ctx, deps, log, payload, err)
		if isPermanent(err) {
			return queue.Permanent(err)
		}
		return err
	}

	if err := deps.Store.UpdateDocumentStatus(ctx, payload.DocumentID, store.StatusWindowed); err != nil {
		return err
	}
	log.Info("windowing complete",
		"sections", res.Sections,
		"chunks", res.Chunks,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	task, err := queue.NewTask(queue.TaskTypeEmbed, queue.DocumentPayload{
		DocumentID: payload.DocumentID,
		Tenant:     payload.Tenant,
	})
	if err != nil {
		return err
	}
	return queue.EnqueueWithRetry(ctx, deps.Queue, task, 3, 200*time.Millisecond)
}

// isPermanent reports errors a retry cannot fix.
func isPermanent(err error) bool {
	var (
		cfgErr *chunker.ConfigurationError
		segErr *segment.SegmentationError
	)
	return errors.As(err, &cfgErr) || errors.As(err, &segErr) || errors.Is(err, blob.ErrNotFound)
}

func markFailed(ctx context.Context, deps app.Deps, log *slog.Logger, payload queue.DocumentPayload, cause error) {
	log.Error("windowing failed", "err", cause)
	if err := deps.Store.MarkDocumentFailed(ctx, payload.DocumentID, cause.Error()); err != nil {
		log.Error("failed to mark document failed", "err", err)
	}
	deps.Progress.Report(ctx, progress.Update{
		DocumentID: payload.DocumentID.String(),
		Stage:      progress.StageFailed,
		Message:    cause.Error(),
	})
}
