// Package loader fetches attached full-text documents and extracts
// plain text from them for segmentation.
package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// DocumentLoader fetches the raw bytes of an attached document by its
// key. Implementations exist for the local filesystem and S3.
type DocumentLoader interface {
	LoadDocument(ctx context.Context, key string) ([]byte, error)
}

// ExtractText turns a fetched document into plain text based on its
// file extension. PDF documents are parsed page by page; anything else
// is treated as UTF-8 text.
func ExtractText(key string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(key))
	switch ext {
	case ".pdf":
		return extractPDFText(data)
	case ".html", ".htm":
		return extractHTMLText(key, data)
	case ".txt", ".md", "":
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported document type: %s", ext)
	}
}

// LoadText fetches a document and extracts its plain text in one step.
func LoadText(ctx context.Context, l DocumentLoader, key string) (string, error) {
	data, err := l.LoadDocument(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to load document %s: %w", key, err)
	}
	text, err := ExtractText(key, data)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from %s: %w", key, err)
	}
	return text, nil
}
