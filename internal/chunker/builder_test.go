package chunker

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeSplitter treats "|" as the sentence boundary.
type pipeSplitter struct{ err error }

func (p pipeSplitter) Sentences(text string) ([]string, error) {
	if p.err != nil {
		return nil, p.err
	}
	var out []string
	for _, s := range strings.Split(text, "|") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

func testSection(body string) Section {
	return Section{
		SectionID:    "sec",
		SectionPath:  []string{"Guide", "Install"},
		SectionIndex: 2,
		SourceURI:    "s3://docs/guide.pdf",
		Title:        "Installing",
		Body:         body,
	}
}

func TestNewBuilderRejectsBadOptions(t *testing.T) {
	_, err := NewBuilder(pipeSplitter{}, wordCounter{}, Options{WindowSize: 10, Stride: 10})
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, 10, cfgErr.Stride)
}

func TestBuilderWindows(t *testing.T) {
	b, err := NewBuilder(pipeSplitter{}, wordCounter{}, Options{WindowSize: 6, Stride: 4})
	require.NoError(t, err)

	body := "one two three | four five | six seven eight | nine | ten eleven"
	seq, err := b.Windows(testSection(body))
	require.NoError(t, err)
	windows := slices.Collect(seq)
	require.NotEmpty(t, windows)

	segmented, _ := pipeSplitter{}.Sentences(body)
	covered := map[string]bool{}
	for i, w := range windows {
		assert.Equal(t, i, w.WindowIndex)
		assert.Equal(t, ChunkID("sec", i), w.ChunkID)
		assert.Equal(t, "sec", w.SectionID)
		assert.Equal(t, []string{"Guide", "Install"}, w.SectionPath)
		assert.Equal(t, 2, w.SectionIndex)
		assert.Equal(t, "s3://docs/guide.pdf", w.SourceURI)
		assert.Equal(t, "Installing", w.Title)
		assert.Empty(t, w.PrevChunkID)
		assert.Empty(t, w.NextChunkID)
		require.NotEmpty(t, w.Sentences)
		for _, s := range w.Sentences {
			assert.Contains(t, segmented, s, "window sentence must be a whole segmented sentence")
			covered[s] = true
		}
	}
	for _, s := range segmented {
		assert.True(t, covered[s], "sentence %q not covered", s)
	}
}

func TestBuilderWindowsIsRestartable(t *testing.T) {
	b, err := NewBuilder(pipeSplitter{}, wordCounter{}, Options{WindowSize: 5, Stride: 3})
	require.NoError(t, err)

	seq, err := b.Windows(testSection("a b | c d | e f | g h | i j | k"))
	require.NoError(t, err)
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)
}

func TestBuilderWindowsEmptySection(t *testing.T) {
	b, err := NewBuilder(pipeSplitter{}, wordCounter{}, DefaultOptions())
	require.NoError(t, err)

	seq, err := b.Windows(testSection("   "))
	require.NoError(t, err)
	assert.Empty(t, slices.Collect(seq))
}

func TestBuilderWindowsOversizedSentence(t *testing.T) {
	b, err := NewBuilder(pipeSplitter{}, wordCounter{}, Options{WindowSize: 3, Stride: 2})
	require.NoError(t, err)

	long := strings.Repeat("word ", 50)
	seq, err := b.Windows(testSection(long))
	require.NoError(t, err)
	windows := slices.Collect(seq)
	require.Len(t, windows, 1)
	assert.Equal(t, []string{strings.TrimSpace(long)}, windows[0].Sentences)
}

func TestBuilderWindowsSplitterError(t *testing.T) {
	boom := errors.New("segmenter crashed")
	b, err := NewBuilder(pipeSplitter{err: boom}, wordCounter{}, DefaultOptions())
	require.NoError(t, err)

	seq, err := b.Windows(testSection("anything"))
	assert.Nil(t, seq)
	assert.ErrorIs(t, err, boom)
}

func TestBuilderCopiesAnnotations(t *testing.T) {
	b, err := NewBuilder(pipeSplitter{}, wordCounter{}, Options{WindowSize: 2, Stride: 1})
	require.NoError(t, err)

	sec := testSection("a b | c d")
	sec.Tags = []string{"install"}
	sec.Abbreviations = map[string]string{"CLI": "command line interface"}
	seq, err := b.Windows(sec)
	require.NoError(t, err)

	windows := slices.Collect(seq)
	require.Len(t, windows, 2)
	windows[0].Tags[0] = "mutated"
	assert.Equal(t, []string{"install"}, windows[1].Tags)
	assert.Equal(t, "command line interface", windows[1].Abbreviations["CLI"])
	assert.Equal(t, []string{"install"}, sec.Tags)
}

func TestChunkPath(t *testing.T) {
	assert.Equal(t, "tenant/out/sec_3.chunk.json", ChunkPath("tenant/out/", "sec_3"))
	assert.Equal(t, "tenant/out/sec_3.chunk.json", ChunkPath("tenant/out", "sec_3"))
}
