package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"doc-windows/internal/app"
	"doc-windows/internal/extract"
	"doc-windows/internal/httputil"
	"doc-windows/internal/ingest"
	"doc-windows/internal/queue"
	"doc-windows/internal/store"
)

const defaultTenant = "default"

func main() {
	deps, err := app.Build("gateway")
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	r := httputil.NewRouter(deps.Log)

	r.Post("/api/documents/upload", uploadHandler(deps))
	r.Get("/api/documents/{id}", documentHandler(deps))
	r.Get("/api/documents/{id}/chunks", chunksHandler(deps))
	r.Get("/api/documents/{id}/progress", progressHandler(deps))
	r.Post("/api/query", queryHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("gateway listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
}

// sourcePath is where the extracted markdown of a document is kept.
func sourcePath(docID uuid.UUID) string {
	return path.Join(docID.String(), "source.md")
}

func tenantOf(r *http.Request) string {
	if t := strings.TrimSpace(r.FormValue("tenant")); t != "" {
		return t
	}
	if t := strings.TrimSpace(r.Header.Get("X-Tenant")); t != "" {
		return t
	}
	return defaultTenant
}

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if r.ContentLength > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		kind, err := extract.Detect(header.Filename, header.Header.Get("Content-Type"))
		if err != nil {
			httputil.Fail(deps.Log, w, err.Error(), nil, http.StatusBadRequest)
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}
		text, err := extract.Text(kind, content)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to extract text", err, http.StatusUnprocessableEntity)
			return
		}

		tenant := tenantOf(r)
		docID := uuid.New()
		src := sourcePath(docID)
		if _, err := deps.Blob.Upload(ctx, tenant, src, []byte(text), string(extract.KindMarkdown)); err != nil {
			httputil.Fail(deps.Log, w, "failed to store document", err, http.StatusInternalServerError)
			return
		}

		doc, err := deps.Store.CreateDocument(ctx, store.Document{
			ID:         docID,
			Tenant:     tenant,
			Filename:   header.Filename,
			SourcePath: src,
		})
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to persist document", err, http.StatusInternalServerError)
			return
		}

		task, err := queue.NewTask(queue.TaskTypeWindow, queue.DocumentPayload{
			DocumentID:   doc.ID,
			Tenant:       tenant,
			SourcePath:   src,
			OutputPrefix: ingest.OutputPrefix(doc.ID),
		})
		if err != nil {
			fail(deps, ctx, w, "marshal payload failed", err, doc.ID, http.StatusInternalServerError, true)
			return
		}
		if err := queue.EnqueueWithRetry(ctx, deps.Queue, task, 3, 200*time.Millisecond); err != nil {
			fail(deps, ctx, w, "failed to enqueue document; please retry", err, doc.ID, http.StatusInternalServerError, true)
			return
		}

		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"document_id": doc.ID.String(),
			"tenant":      tenant,
			"status":      doc.Status,
		})
	}
}

// fail is gateway-specific error handler that can mark documents as failed
func fail(deps app.Deps, ctx context.Context, w http.ResponseWriter, message string, err error, docID uuid.UUID, status int, markFailed bool) {
	log := deps.Log.With("document_id", docID)
	if markFailed && docID != uuid.Nil {
		if upErr := deps.Store.MarkDocumentFailed(ctx, docID, message); upErr != nil {
			log.Error("failed to mark document failed", "err", upErr)
		}
	}

	httputil.Fail(log, w, message, err, status)
}

func documentID(deps app.Deps, w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	docID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(deps.Log, w, "invalid document id", err, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return docID, true
}

func documentHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docID, ok := documentID(deps, w, r)
		if !ok {
			return
		}
		doc, err := deps.Store.GetDocument(r.Context(), docID)
		if errors.Is(err, store.ErrNotFound) {
			fail(deps, r.Context(), w, "document not found", err, docID, http.StatusNotFound, false)
			return
		}
		if err != nil {
			fail(deps, r.Context(), w, "failed to load document", err, docID, http.StatusInternalServerError, false)
			return
		}
		body := map[string]any{
			"document_id": doc.ID.String(),
			"tenant":      doc.Tenant,
			"filename":    doc.Filename,
			"status":      doc.Status,
			"created_at":  doc.CreatedAt,
		}
		if doc.FailureReason != "" {
			body["failure_reason"] = doc.FailureReason
		}
		httputil.WriteJSON(w, http.StatusOK, body)
	}
}

func chunksHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docID, ok := documentID(deps, w, r)
		if !ok {
			return
		}
		chunks, err := deps.Store.ListChunks(r.Context(), docID)
		if err != nil {
			fail(deps, r.Context(), w, "failed to list chunks", err, docID, http.StatusInternalServerError, false)
			return
		}
		if chunks == nil {
			chunks = []store.Chunk{}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"document_id": docID.String(),
			"count":       len(chunks),
			"chunks":      chunks,
		})
	}
}

func progressHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docID, ok := documentID(deps, w, r)
		if !ok {
			return
		}
		u, err := deps.Progress.Latest(r.Context(), docID.String())
		if err != nil {
			fail(deps, r.Context(), w, "failed to read progress", err, docID, http.StatusInternalServerError, false)
			return
		}
		if u == nil {
			fail(deps, r.Context(), w, "no progress recorded", nil, docID, http.StatusNotFound, false)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, u)
	}
}

func queryHandler(deps app.Deps) http.HandlerFunc {
	queryURL := deps.Config.QueryServiceURL
	client := &http.Client{Timeout: 60 * time.Second}

	return func(w http.ResponseWriter, r *http.Request) {
		req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, queryURL, r.Body)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to create request", err, http.StatusInternalServerError)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			httputil.Fail(deps.Log, w, "query service unavailable", err, http.StatusServiceUnavailable)
			return
		}
		defer resp.Body.Close()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(w, resp.Body); err != nil {
			deps.Log.Error("failed to copy response", "err", err)
		}
	}
}
