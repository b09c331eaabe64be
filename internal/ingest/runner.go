// Package ingest runs one document through sectioning, windowing and linking.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"doc-windows/internal/blob"
	"doc-windows/internal/chunker"
	"doc-windows/internal/progress"
	"doc-windows/internal/sections"
	"doc-windows/internal/store"
)

const manifestName = "combined_sections.json"

type Request struct {
	DocumentID uuid.UUID
	Tenant     string
	// SourcePath is the blob path of the document's markdown.
	SourcePath string
	// OutputPrefix is the blob prefix chunk files are written under.
	OutputPrefix string
}

type Result struct {
	ChunkPaths []string
	Chunks     int
	Sections   int
}

// Runner windows documents. One Runner serves many runs; each run gets its
// own Linker and sinks.
type Runner struct {
	Blob            blob.Store
	Store           store.Store
	Builder         *chunker.Builder
	Progress        progress.Reporter
	Titler          sections.Titler
	MinSectionBytes int
	// WriteManifest uploads the section paths next to the chunks.
	WriteManifest bool
	Log           *slog.Logger
}

// OutputPrefix is where a document's chunks live when the request names none.
func OutputPrefix(docID uuid.UUID) string {
	return path.Join(docID.String(), "chunks")
}

func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	log := r.Log.With("document_id", req.DocumentID)
	if req.OutputPrefix == "" {
		req.OutputPrefix = OutputPrefix(req.DocumentID)
	}

	md, err := r.Blob.Download(ctx, req.Tenant, req.SourcePath)
	if err != nil {
		return Result{}, fmt.Errorf("download source: %w", err)
	}
	if err := r.Store.DeleteChunks(ctx, req.DocumentID); err != nil {
		return Result{}, fmt.Errorf("clear previous chunks: %w", err)
	}
	// Chunk files of an earlier run may outnumber this run's windows.
	if err := r.Blob.DeletePrefix(ctx, req.Tenant, req.OutputPrefix); err != nil {
		return Result{}, fmt.Errorf("clear previous chunk files: %w", err)
	}

	secs := sections.Split(ctx, md, blob.Key(req.Tenant, req.SourcePath), sections.Options{
		MinBytes: r.MinSectionBytes,
		Titler:   r.Titler,
		Log:      log,
	})
	log.Info("document sectioned", "sections", len(secs))

	if r.WriteManifest {
		if err := r.writeManifest(ctx, req, secs); err != nil {
			return Result{}, err
		}
	}

	blobSink := &BlobSink{Blob: r.Blob, Tenant: req.Tenant, Prefix: req.OutputPrefix}
	linker := chunker.NewLinker(chunker.MultiSink{
		blobSink,
		&StoreSink{Store: r.Store, DocumentID: req.DocumentID},
	})

	for i, sec := range secs {
		if err := ctx.Err(); err != nil {
			return r.partial(blobSink, linker, len(secs)), err
		}
		windows, err := r.Builder.Windows(sec)
		if err != nil {
			return r.partial(blobSink, linker, len(secs)), fmt.Errorf("section %s: %w", sec.SectionID, err)
		}
		for c := range windows {
			if err := ctx.Err(); err != nil {
				return r.partial(blobSink, linker, len(secs)), err
			}
			if err := linker.Add(ctx, c); err != nil {
				return r.partial(blobSink, linker, len(secs)), err
			}
		}
		r.Progress.Report(ctx, progress.Update{
			DocumentID:    req.DocumentID.String(),
			Stage:         progress.StageWindowing,
			SectionsDone:  i + 1,
			SectionsTotal: len(secs),
			ChunksFlushed: linker.Flushed(),
		})
	}
	if err := linker.Close(ctx); err != nil {
		return r.partial(blobSink, linker, len(secs)), err
	}

	res := r.partial(blobSink, linker, len(secs))
	r.Progress.Report(ctx, progress.Update{
		DocumentID:    req.DocumentID.String(),
		Stage:         progress.StageWindowed,
		SectionsDone:  len(secs),
		SectionsTotal: len(secs),
		ChunksFlushed: res.Chunks,
	})
	log.Info("document windowed", "sections", res.Sections, "chunks", res.Chunks)
	return res, nil
}

// partial reports what has been flushed so far; flushed chunks stay valid
// even when the run stops early.
func (r *Runner) partial(bs *BlobSink, l *chunker.Linker, nsec int) Result {
	return Result{ChunkPaths: bs.Paths(), Chunks: l.Flushed(), Sections: nsec}
}

type manifest struct {
	Sections []manifestSection `json:"sections"`
}

type manifestSection struct {
	SectionID   string   `json:"sectionId"`
	SectionPath []string `json:"sectionPath"`
	Title       string   `json:"title"`
	Bytes       int      `json:"bytes"`
}

func (r *Runner) writeManifest(ctx context.Context, req Request, secs []chunker.Section) error {
	m := manifest{Sections: make([]manifestSection, len(secs))}
	for i, s := range secs {
		m.Sections[i] = manifestSection{
			SectionID:   s.SectionID,
			SectionPath: s.SectionPath,
			Title:       s.Title,
			Bytes:       len(s.Body),
		}
	}
	body, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	p := strings.TrimSuffix(req.OutputPrefix, "/") + "/" + manifestName
	if _, err := r.Blob.Upload(ctx, req.Tenant, p, body, jsonContentType); err != nil {
		return fmt.Errorf("upload manifest: %w", err)
	}
	return nil
}
