// Package extract turns course files into plain text for assistant context.
// Extraction is local and synchronous; callers decide what is worth
// extracting and where the text lives afterwards.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// File kinds the extractor understands.
const (
	kindPDF  = "pdf"
	kindDocx = "docx"
	kindXlsx = "xlsx"
	kindPptx = "pptx"
	kindText = "text"
)

var extensionKinds = map[string]string{
	".pdf":  kindPDF,
	".docx": kindDocx,
	".xlsx": kindXlsx,
	".pptx": kindPptx,
	".txt":  kindText,
	".md":   kindText,
	".csv":  kindText,
}

// Extractor dispatches files to format-specific text extraction.
type Extractor struct {
	logger *zap.Logger
}

// New builds an extractor.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Supported reports whether the file can be turned into text. The extension
// decides; the content type is a fallback for extension-less names.
func (e *Extractor) Supported(name, contentType string) bool {
	return kindFor(name, contentType) != ""
}

// Extract returns the plain text of a file. Unsupported formats are an
// error so callers can distinguish "skipped" from "empty".
func (e *Extractor) Extract(name, contentType string, data []byte) (string, error) {
	kind := kindFor(name, contentType)

	var (
		text string
		err  error
	)
	switch kind {
	case kindPDF:
		text, err = extractPDF(data)
	case kindDocx:
		text, err = extractDocx(data)
	case kindXlsx:
		text, err = extractXlsx(data)
	case kindPptx:
		text, err = extractPptx(data)
	case kindText:
		text, err = extractPlain(data)
	default:
		return "", fmt.Errorf("unsupported file format: %s", name)
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", name, err)
	}

	return strings.TrimSpace(text), nil
}

func kindFor(name, contentType string) string {
	if kind, ok := extensionKinds[strings.ToLower(filepath.Ext(name))]; ok {
		return kind
	}

	switch {
	case contentType == "application/pdf":
		return kindPDF
	case strings.Contains(contentType, "wordprocessingml.document"):
		return kindDocx
	case strings.Contains(contentType, "spreadsheetml.sheet"):
		return kindXlsx
	case strings.Contains(contentType, "presentationml.presentation"):
		return kindPptx
	case strings.HasPrefix(contentType, "text/"):
		return kindText
	}
	return ""
}
