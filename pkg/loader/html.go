package loader

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
)

// extractHTMLText reduces a stored HTML document to its readable
// article text. The key only serves as a base for resolving relative
// links inside the document.
func extractHTMLText(key string, data []byte) (string, error) {
	base, err := url.Parse(key)
	if err != nil || !base.IsAbs() {
		base = &url.URL{Scheme: "file", Path: "/" + key}
	}

	article, err := readability.FromReader(bytes.NewReader(data), base)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	var builder strings.Builder
	if err := article.RenderText(&builder); err != nil {
		return "", fmt.Errorf("failed to render article text: %w", err)
	}
	return builder.String(), nil
}
