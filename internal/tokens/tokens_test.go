package tokens

import "testing"

func TestWordsCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"one two\tthree\nfour", 4},
	}
	for _, tt := range tests {
		if got := (Words{}).Count(tt.text); got != tt.want {
			t.Errorf("Count(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestTiktokenCount(t *testing.T) {
	counter, err := NewTiktoken("")
	if err != nil {
		t.Skipf("tokenizer unavailable: %v", err)
	}
	if got := counter.Count(""); got != 0 {
		t.Errorf("expected 0 tokens for empty text, got %d", got)
	}
	short := counter.Count("hello world")
	long := counter.Count("hello world, this sentence is quite a bit longer than the first one")
	if short <= 0 {
		t.Errorf("expected positive count, got %d", short)
	}
	if long <= short {
		t.Errorf("expected longer text to have more tokens: %d <= %d", long, short)
	}
}

func TestNewTiktokenUnknownEncoding(t *testing.T) {
	if _, err := NewTiktoken("not-an-encoding"); err == nil {
		t.Error("expected error for unknown encoding")
	}
}
