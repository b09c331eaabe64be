package tokens

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding matches the OpenAI embedding models used downstream.
const DefaultEncoding = "cl100k_base"

// Counter returns the number of tokens in text.
type Counter interface {
	Count(text string) int
}

// Tiktoken counts BPE tokens. The encoder is loaded once and shared.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

func NewTiktoken(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %q: %w", encoding, err)
	}
	return &Tiktoken{enc: enc}, nil
}

func (t *Tiktoken) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Words approximates tokens by whitespace-delimited words.
type Words struct{}

func (Words) Count(text string) int {
	return len(strings.Fields(text))
}
