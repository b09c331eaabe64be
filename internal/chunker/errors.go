package chunker

import "fmt"

// ConfigurationError reports a window budget that cannot be used.
type ConfigurationError struct {
	WindowSize int
	Stride     int
	Reason     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid window configuration (window_size=%d, stride=%d): %s", e.WindowSize, e.Stride, e.Reason)
}

// LinkingSinkError wraps a sink failure while flushing a linked chunk.
// Chunks flushed before the failure are left in place.
type LinkingSinkError struct {
	ChunkID string
	Err     error
}

func (e *LinkingSinkError) Error() string {
	return fmt.Sprintf("flush chunk %s: %v", e.ChunkID, e.Err)
}

func (e *LinkingSinkError) Unwrap() error { return e.Err }
