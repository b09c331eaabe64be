// Package extract turns uploaded files into text the sectioner can read.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

type Kind string

const (
	KindPDF      Kind = "application/pdf"
	KindMarkdown Kind = "text/markdown"
	KindText     Kind = "text/plain"
)

var (
	ErrUnsupported = errors.New("unsupported file type (only PDF, markdown and text allowed)")
	ErrEmpty       = errors.New("no extractable text")
)

// Detect resolves the file kind from the declared content type, falling back
// to the filename extension.
func Detect(filename, contentType string) (Kind, error) {
	ct := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	switch ct {
	case string(KindPDF):
		return KindPDF, nil
	case string(KindMarkdown), "text/x-markdown":
		return KindMarkdown, nil
	case string(KindText):
		if isMarkdownExt(filename) {
			return KindMarkdown, nil
		}
		return KindText, nil
	case "", "application/octet-stream":
	default:
		return "", ErrUnsupported
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return KindPDF, nil
	case ".md", ".markdown":
		return KindMarkdown, nil
	case ".txt":
		return KindText, nil
	}
	return "", ErrUnsupported
}

func isMarkdownExt(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".md" || ext == ".markdown"
}

// Text returns the document text. PDF pages are separated by blank lines.
func Text(kind Kind, content []byte) (string, error) {
	var text string
	switch kind {
	case KindPDF:
		t, err := pdfText(content)
		if err != nil {
			return "", err
		}
		text = t
	case KindMarkdown, KindText:
		if !utf8.Valid(content) {
			return "", fmt.Errorf("%s: invalid utf-8", kind)
		}
		text = string(content)
	default:
		return "", ErrUnsupported
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmpty
	}
	return text, nil
}

func pdfText(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Unreadable pages are skipped.
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}
	return b.String(), nil
}
