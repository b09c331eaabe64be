package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"marker", "TITLE: Installing on Linux", "Installing on Linux"},
		{"marker after preamble", "Sure.\n\nTITLE: \"Configuration\"\n", "Configuration"},
		{"no marker", "\n  Overview of the API  \nmore", "Overview of the API"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractTitle(tt.content))
		})
	}
}

func TestDeriveConfidence(t *testing.T) {
	assert.Equal(t, float32(0), deriveConfidence(""))
	short := deriveConfidence("yes")
	long := deriveConfidence(string(make([]byte, 800)))
	assert.Greater(t, long, short)
	assert.LessOrEqual(t, long, float32(1))
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient("", "")
	assert.Error(t, err)
}
