package blob

import (
	"errors"
	"testing"
)

func TestKey(t *testing.T) {
	tests := []struct {
		tenant, path, want string
	}{
		{"acme", "docs/a.md", "acme/docs/a.md"},
		{"acme/", "/docs/a.md", "acme/docs/a.md"},
		{"", "docs/a.md", "docs/a.md"},
	}
	for _, tt := range tests {
		if got := Key(tt.tenant, tt.path); got != tt.want {
			t.Errorf("Key(%q, %q) = %q, want %q", tt.tenant, tt.path, got, tt.want)
		}
	}
}

func TestPrefixKey(t *testing.T) {
	got, err := PrefixKey("acme", "doc/chunks/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "acme/doc/chunks/" {
		t.Errorf("PrefixKey = %q, want %q", got, "acme/doc/chunks/")
	}
	for _, p := range []string{"", "/", "//"} {
		if _, err := PrefixKey("acme", p); !errors.Is(err, ErrEmptyPrefix) {
			t.Errorf("PrefixKey(%q) err = %v, want ErrEmptyPrefix", p, err)
		}
	}
}
