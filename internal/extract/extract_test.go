package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		filename, contentType string
		want                  Kind
		wantErr               bool
	}{
		{"a.pdf", "application/pdf", KindPDF, false},
		{"a.pdf", "", KindPDF, false},
		{"notes.md", "", KindMarkdown, false},
		{"notes.md", "text/plain", KindMarkdown, false},
		{"notes.txt", "text/plain; charset=utf-8", KindText, false},
		{"notes", "text/markdown", KindMarkdown, false},
		{"a.bin", "application/octet-stream", "", true},
		{"a.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "", true},
	}
	for _, tt := range tests {
		got, err := Detect(tt.filename, tt.contentType)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnsupported, "%s %s", tt.filename, tt.contentType)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %s", tt.filename, tt.contentType)
	}
}

func TestText(t *testing.T) {
	got, err := Text(KindMarkdown, []byte("# Title\n\nBody."))
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody.", got)

	_, err = Text(KindText, []byte("  \n\t"))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Text(KindText, []byte{0xff, 0xfe})
	assert.Error(t, err)

	_, err = Text(KindPDF, []byte("not a pdf"))
	assert.Error(t, err)

	_, err = Text("image/png", []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupported)
}
