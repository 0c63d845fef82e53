package index

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// FileKind is the extraction strategy for an upload, decided by extension.
type FileKind string

const (
	KindPDF         FileKind = "pdf"
	KindText        FileKind = "text"
	KindUnsupported FileKind = "unsupported"
)

var textExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".json": true,
	".html": true,
	".xml":  true,
}

// DetectKind maps a filename to its extraction strategy.
func DetectKind(filename string) FileKind {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case ext == ".pdf":
		return KindPDF
	case textExtensions[ext]:
		return KindText
	default:
		return KindUnsupported
	}
}

// ExtractText pulls plain text out of the raw upload according to its kind.
func ExtractText(filename string, data []byte) (string, error) {
	switch DetectKind(filename) {
	case KindPDF:
		return extractPDF(data)
	case KindText:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("file %q is not valid utf-8 text", filename)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported file type %q", filepath.Ext(filename))
	}
}

func extractPDF(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty pdf")
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf failed: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text failed: %w", err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text failed: %w", err)
	}
	return string(out), nil
}
