package chunker

import (
	"context"
	"iter"
)

// Sink persists a chunk whose links are final.
type Sink interface {
	Flush(ctx context.Context, c Chunk) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, c Chunk) error

func (f SinkFunc) Flush(ctx context.Context, c Chunk) error { return f(ctx, c) }

// MultiSink flushes to every sink in order and stops at the first error.
type MultiSink []Sink

func (m MultiSink) Flush(ctx context.Context, c Chunk) error {
	for _, s := range m {
		if err := s.Flush(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// Linker chains the windows of one document in emission order. It holds back
// the latest window until its successor arrives (or Close is called), so every
// chunk reaches the sink exactly once with both links set.
//
// A Linker belongs to a single document run and is not safe for concurrent use.
type Linker struct {
	sink    Sink
	pending *Chunk
	flushed int
	err     error
}

func NewLinker(sink Sink) *Linker {
	return &Linker{sink: sink}
}

// Add links c to the pending window and flushes the pending one.
func (l *Linker) Add(ctx context.Context, c Chunk) error {
	if l.err != nil {
		return l.err
	}
	if l.pending == nil {
		l.pending = &c
		return nil
	}
	l.pending.NextChunkID = c.ChunkID
	c.PrevChunkID = l.pending.ChunkID
	if err := l.flush(ctx); err != nil {
		return err
	}
	l.pending = &c
	return nil
}

// Close flushes the last window, which keeps an empty NextChunkID.
func (l *Linker) Close(ctx context.Context) error {
	if l.err != nil {
		return l.err
	}
	if l.pending == nil {
		return nil
	}
	if err := l.flush(ctx); err != nil {
		return err
	}
	l.pending = nil
	return nil
}

// Flushed is the number of chunks handed to the sink so far.
func (l *Linker) Flushed() int { return l.flushed }

// Pending returns the chunk held back for its successor, if any.
func (l *Linker) Pending() (Chunk, bool) {
	if l.pending == nil {
		return Chunk{}, false
	}
	return *l.pending, true
}

func (l *Linker) flush(ctx context.Context) error {
	if err := l.sink.Flush(ctx, *l.pending); err != nil {
		l.err = &LinkingSinkError{ChunkID: l.pending.ChunkID, Err: err}
		return l.err
	}
	l.flushed++
	return nil
}

// Link drains windows through a fresh Linker and closes it.
func Link(ctx context.Context, windows iter.Seq[Chunk], sink Sink) error {
	l := NewLinker(sink)
	for c := range windows {
		if err := l.Add(ctx, c); err != nil {
			return err
		}
	}
	return l.Close(ctx)
}
