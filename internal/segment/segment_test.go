package segment

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dotSegmenter ends a sentence after every '.'; trailing text forms a final sentence.
type dotSegmenter struct {
	calls  int
	failAt int
}

func (d *dotSegmenter) Segment(text string) ([]Span, error) {
	d.calls++
	if d.failAt > 0 && d.calls == d.failAt {
		return nil, errors.New("model exploded")
	}
	var out []Span
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '.' {
			out = append(out, Span{Text: text[start : i+1], Start: start, End: i + 1})
			start = i + 1
		}
	}
	if start < len(text) {
		out = append(out, Span{Text: text[start:], Start: start, End: len(text)})
	}
	return out, nil
}

func TestBoundedShortTextDelegates(t *testing.T) {
	seg := &dotSegmenter{}
	got, err := NewBounded(seg, 100).Sentences("One. Two.  Three")
	require.NoError(t, err)
	assert.Equal(t, []string{"One.", "Two.", "Three"}, got)
	assert.Equal(t, 1, seg.calls)
}

func TestBoundedReanchorsAtSentenceStart(t *testing.T) {
	text := "Alpha beta. Gamma delta. Epsilon zeta. Eta theta."
	direct, err := NewBounded(&dotSegmenter{}, len(text)).Sentences(text)
	require.NoError(t, err)

	seg := &dotSegmenter{}
	sliced, err := NewBounded(seg, 20).Sentences(text)
	require.NoError(t, err)
	assert.Equal(t, direct, sliced)
	assert.Greater(t, seg.calls, 1)
}

func TestBoundedRunWithoutBoundaryMakesProgress(t *testing.T) {
	text := strings.Repeat("a", 25)
	got, err := NewBounded(&dotSegmenter{}, 10).Sentences(text)
	require.NoError(t, err)
	assert.Equal(t, []string{strings.Repeat("a", 10), strings.Repeat("a", 10), strings.Repeat("a", 5)}, got)
}

func TestBoundedKeepsRunesIntact(t *testing.T) {
	text := "ééééé. ééé ééé. é"
	got, err := NewBounded(&dotSegmenter{}, 5).Sentences(text)
	require.NoError(t, err)
	for _, s := range got {
		assert.True(t, utf8.ValidString(s), "sentence %q split a rune", s)
	}
	strip := func(s string) string { return strings.ReplaceAll(s, " ", "") }
	assert.Equal(t, strip(text), strip(strings.Join(got, "")))
}

func TestBoundedDropsBlankSentences(t *testing.T) {
	got, err := NewBounded(&dotSegmenter{}, 100).Sentences("First.   .  Second.   ")
	require.NoError(t, err)
	assert.Equal(t, []string{"First.", ".", "Second."}, got)
}

func TestBoundedSegmentationError(t *testing.T) {
	text := "Alpha beta. Gamma delta. Epsilon zeta. Eta theta."
	_, err := NewBounded(&dotSegmenter{failAt: 2}, 20).Sentences(text)

	var segErr *SegmentationError
	require.ErrorAs(t, err, &segErr)
	assert.Equal(t, 11, segErr.Offset)
	assert.EqualError(t, errors.Unwrap(err), "model exploded")
}

func TestBoundedDefaultMaxSpan(t *testing.T) {
	b := NewBounded(&dotSegmenter{}, 0)
	assert.Equal(t, DefaultMaxSpan, b.MaxSpan)
}

func TestEnglishSegmenter(t *testing.T) {
	seg, err := NewEnglish()
	require.NoError(t, err)

	text := "The pipeline downloads a file. It then splits the text into windows! Does it work?"
	spans, err := seg.Segment(text)
	require.NoError(t, err)
	require.Len(t, spans, 3)
	for _, s := range spans {
		assert.Equal(t, strings.TrimSpace(s.Text), strings.TrimSpace(text[s.Start:s.End]))
	}
	assert.Contains(t, spans[1].Text, "splits the text")
}
