package chunker

import (
	"fmt"
	"strings"
)

// Section is one outline node of a document and the unit of windowing.
type Section struct {
	SectionID    string
	SectionPath  []string
	SectionIndex int
	SourceURI    string
	Title        string
	Body         string

	// Annotations from upstream stages, copied onto every window.
	Tags          []string
	Abbreviations map[string]string
}

// Chunk is a window of consecutive sentences from one section, linked to the
// chunks emitted before and after it in the same document.
type Chunk struct {
	ChunkID       string            `json:"chunkId"`
	Title         string            `json:"title"`
	SectionPath   []string          `json:"sectionPath"`
	SectionIndex  int               `json:"sectionIndex"`
	SourceURI     string            `json:"sourceUri"`
	Sentences     []string          `json:"sentences"`
	PrevChunkID   string            `json:"prevChunkId"`
	NextChunkID   string            `json:"nextChunkId"`
	SectionID     string            `json:"sectionId"`
	WindowIndex   int               `json:"windowIndex"`
	Tags          []string          `json:"tags,omitempty"`
	Abbreviations map[string]string `json:"abbreviations,omitempty"`
}

// ChunkID derives the stable identifier of a section's window.
func ChunkID(sectionID string, windowIndex int) string {
	return fmt.Sprintf("%s_%d", sectionID, windowIndex)
}

// ChunkPath is where a chunk record lives under an output prefix.
func ChunkPath(outputPrefix, chunkID string) string {
	return fmt.Sprintf("%s/%s.chunk.json", strings.TrimSuffix(outputPrefix, "/"), chunkID)
}

// Text joins the window sentences for embedding and previews.
func (c Chunk) Text() string {
	return strings.Join(c.Sentences, " ")
}
