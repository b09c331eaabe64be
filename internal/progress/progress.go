package progress

import (
	"context"
	"time"
)

type Stage string

const (
	StageWindowing Stage = "windowing"
	StageWindowed  Stage = "windowed"
	StageEmbedding Stage = "embedding"
	StageReady     Stage = "ready"
	StageFailed    Stage = "failed"
)

// Update is the latest heartbeat of one document run.
type Update struct {
	DocumentID    string    `json:"document_id"`
	Stage         Stage     `json:"stage"`
	SectionsDone  int       `json:"sections_done"`
	SectionsTotal int       `json:"sections_total"`
	ChunksFlushed int       `json:"chunks_flushed"`
	Message       string    `json:"message,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Reporter records heartbeats. Report never fails the caller; implementations
// log and drop updates they cannot write.
type Reporter interface {
	Report(ctx context.Context, u Update)
	// Latest returns nil when no heartbeat is known for the document.
	Latest(ctx context.Context, docID string) (*Update, error)
}

// NoOp discards every update.
type NoOp struct{}

func (NoOp) Report(context.Context, Update) {}

func (NoOp) Latest(context.Context, string) (*Update, error) { return nil, nil }
