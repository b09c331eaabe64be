package chunker

import (
	"iter"
)

const (
	DefaultWindowSize = 700
	DefaultStride     = 600
)

// Options controls how a section is windowed.
type Options struct {
	// WindowSize is the token budget of a window.
	WindowSize int
	// Stride is how many tokens the window start advances between windows.
	Stride int
}

// DefaultOptions returns 700 token windows overlapping by roughly 100 tokens.
func DefaultOptions() Options {
	return Options{WindowSize: DefaultWindowSize, Stride: DefaultStride}
}

// Validate rejects budgets that cannot guarantee overlap and forward progress.
func (o Options) Validate() error {
	switch {
	case o.WindowSize <= 0:
		return &ConfigurationError{WindowSize: o.WindowSize, Stride: o.Stride, Reason: "window size must be positive"}
	case o.Stride <= 0:
		return &ConfigurationError{WindowSize: o.WindowSize, Stride: o.Stride, Reason: "stride must be positive"}
	case o.Stride >= o.WindowSize:
		return &ConfigurationError{WindowSize: o.WindowSize, Stride: o.Stride, Reason: "stride must be smaller than window size"}
	}
	return nil
}

// Span is the half-open sentence range [Start, End) of one window.
type Span struct {
	Index  int
	Start  int
	End    int
	Tokens int
}

// Spans walks per-sentence token counts and yields sentence-aligned windows.
// A window grows while it stays within opts.WindowSize; a lone sentence larger
// than the budget becomes a window of its own. The next window starts after
// the sentences that cover opts.Stride tokens, never past the current end.
//
// opts must be valid; callers go through Options.Validate or NewBuilder.
func Spans(tokens []int, opts Options) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		n := len(tokens)
		start, index := 0, 0
		for start < n {
			end, sum := start, 0
			for end < n && sum+tokens[end] <= opts.WindowSize {
				sum += tokens[end]
				end++
			}
			if end == start {
				sum = tokens[start]
				end = start + 1
			}

			if !yield(Span{Index: index, Start: start, End: end, Tokens: sum}) {
				return
			}
			index++

			next, advanced := start, 0
			for next < end && advanced < opts.Stride {
				advanced += tokens[next]
				next++
			}
			if next == start {
				next = end
			}
			start = next
		}
	}
}
