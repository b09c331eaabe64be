package segment

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultMaxSpan is the largest text handed to a segmenter in one call.
const DefaultMaxSpan = 1_000_000

// Span is a sentence with its byte offsets in the segmented text.
type Span struct {
	Text  string
	Start int
	End   int
}

// Segmenter detects sentence boundaries.
type Segmenter interface {
	Segment(text string) ([]Span, error)
}

// SegmentationError reports a segmenter failure on the slice starting at Offset.
type SegmentationError struct {
	Offset int
	Err    error
}

func (e *SegmentationError) Error() string {
	return fmt.Sprintf("segment text at offset %d: %v", e.Offset, e.Err)
}

func (e *SegmentationError) Unwrap() error { return e.Err }

// Bounded feeds a segmenter at most MaxSpan bytes at a time. When a slice is
// cut, its last sentence may be incomplete, so segmentation resumes from that
// sentence's start with the next slice.
type Bounded struct {
	Segmenter Segmenter
	MaxSpan   int
}

// NewBounded returns a Bounded adapter; maxSpan <= 0 selects DefaultMaxSpan.
func NewBounded(seg Segmenter, maxSpan int) Bounded {
	if maxSpan <= 0 {
		maxSpan = DefaultMaxSpan
	}
	return Bounded{Segmenter: seg, MaxSpan: maxSpan}
}

// Sentences returns the trimmed, non-empty sentences of text in order.
func (b Bounded) Sentences(text string) ([]string, error) {
	maxSpan := b.MaxSpan
	if maxSpan <= 0 {
		maxSpan = DefaultMaxSpan
	}
	if len(text) <= maxSpan {
		spans, err := b.Segmenter.Segment(text)
		if err != nil {
			return nil, &SegmentationError{Offset: 0, Err: err}
		}
		return appendTrimmed(nil, spans), nil
	}

	var out []string
	pos := 0
	for pos < len(text) {
		end := sliceEnd(text, pos, maxSpan)
		spans, err := b.Segmenter.Segment(text[pos:end])
		if err != nil {
			return nil, &SegmentationError{Offset: pos, Err: err}
		}

		if end >= len(text) {
			out = appendTrimmed(out, spans)
			break
		}
		if len(spans) <= 1 {
			out = appendTrimmed(out, spans)
			pos = end
			continue
		}

		last := len(spans) - 1
		out = appendTrimmed(out, spans[:last])
		next := pos + spans[last].Start
		if next <= pos {
			next = end
		}
		pos = next
	}
	return out, nil
}

// sliceEnd keeps slices on rune boundaries so no character is split.
func sliceEnd(text string, pos, maxSpan int) int {
	end := pos + maxSpan
	if end >= len(text) {
		return len(text)
	}
	for end > pos+1 && !utf8.RuneStart(text[end]) {
		end--
	}
	return end
}

func appendTrimmed(out []string, spans []Span) []string {
	for _, s := range spans {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}
