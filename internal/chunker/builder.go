package chunker

import (
	"iter"
	"slices"
)

// SentenceSplitter turns section text into trimmed sentences in reading order.
type SentenceSplitter interface {
	Sentences(text string) ([]string, error)
}

// TokenCounter counts tokens of a sentence under a fixed encoding.
type TokenCounter interface {
	Count(text string) int
}

// Builder windows sections with a fixed splitter, counter and budget.
type Builder struct {
	splitter SentenceSplitter
	counter  TokenCounter
	opts     Options
}

// NewBuilder validates opts before any section is processed.
func NewBuilder(splitter SentenceSplitter, counter TokenCounter, opts Options) (*Builder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Builder{splitter: splitter, counter: counter, opts: opts}, nil
}

// Options returns the budget the builder was created with.
func (b *Builder) Options() Options { return b.opts }

// Windows splits the section into sentences and returns its unlinked windows.
// Segmentation errors are returned before any window is produced. The
// returned sequence is lazy and may be ranged over more than once with
// identical results.
func (b *Builder) Windows(sec Section) (iter.Seq[Chunk], error) {
	sentences, err := b.splitter.Sentences(sec.Body)
	if err != nil {
		return nil, err
	}
	tokens := make([]int, len(sentences))
	for i, s := range sentences {
		tokens[i] = b.counter.Count(s)
	}

	return func(yield func(Chunk) bool) {
		for span := range Spans(tokens, b.opts) {
			if !yield(window(sec, span, sentences)) {
				return
			}
		}
	}, nil
}

func window(sec Section, span Span, sentences []string) Chunk {
	return Chunk{
		ChunkID:       ChunkID(sec.SectionID, span.Index),
		Title:         sec.Title,
		SectionPath:   slices.Clone(sec.SectionPath),
		SectionIndex:  sec.SectionIndex,
		SourceURI:     sec.SourceURI,
		Sentences:     slices.Clone(sentences[span.Start:span.End]),
		SectionID:     sec.SectionID,
		WindowIndex:   span.Index,
		Tags:          slices.Clone(sec.Tags),
		Abbreviations: cloneMap(sec.Abbreviations),
	}
}

func cloneMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
