package segment

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// English segments text with the Punkt model shipped for English.
type English struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewEnglish loads the English sentence model once; reuse the result.
func NewEnglish() (*English, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load english sentence model: %w", err)
	}
	return &English{tokenizer: tok}, nil
}

func (e *English) Segment(text string) ([]Span, error) {
	sents := e.tokenizer.Tokenize(text)
	out := make([]Span, 0, len(sents))
	cursor := 0
	for _, s := range sents {
		start, end := s.Start, s.End
		// Offsets are re-anchored on the input; the model may normalise text.
		if idx := strings.Index(text[cursor:], s.Text); idx >= 0 {
			start = cursor + idx
			end = start + len(s.Text)
		}
		if start < cursor || end > len(text) || start > end {
			start, end = cursor, min(cursor+len(s.Text), len(text))
		}
		out = append(out, Span{Text: s.Text, Start: start, End: end})
		cursor = end
	}
	return out, nil
}
