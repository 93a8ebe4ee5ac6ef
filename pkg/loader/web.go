package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"codeberg.org/readeck/go-readability/v2"
	"golang.org/x/sync/singleflight"
)

// WebLoader fetches full texts referenced by http(s) URLs instead of
// stored object keys. HTML pages are reduced to their readable article
// text; other content types pass through as raw bytes. Non-URL keys go
// to the fallback loader.
type WebLoader struct {
	fallback DocumentLoader

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewWebLoader creates a web loader whose non-URL keys are resolved by
// fallback. A nil fallback makes non-URL keys an error.
func NewWebLoader(fallback DocumentLoader) *WebLoader {
	return &WebLoader{
		fallback: fallback,
		cache:    make(map[string][]byte),
	}
}

// LoadDocument fetches the document at key. Papers citing the same URL
// share one fetch through the cache.
func (l *WebLoader) LoadDocument(ctx context.Context, key string) ([]byte, error) {
	if !strings.HasPrefix(key, "http://") && !strings.HasPrefix(key, "https://") {
		if l.fallback == nil {
			return nil, fmt.Errorf("not a url and no fallback loader: %s", key)
		}
		return l.fallback.LoadDocument(ctx, key)
	}

	l.cacheMu.RLock()
	if cached, ok := l.cache[key]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(key, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[key]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, key, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch url: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, key)
		}

		var data []byte
		contentType := resp.Header.Get("Content-Type")
		if strings.Contains(contentType, "text/html") {
			u, err := url.Parse(key)
			if err != nil {
				return nil, fmt.Errorf("failed to parse url: %w", err)
			}
			article, err := readability.FromReader(resp.Body, u)
			if err != nil {
				return nil, fmt.Errorf("failed to parse html: %w", err)
			}
			var builder strings.Builder
			if err := article.RenderText(&builder); err != nil {
				return nil, fmt.Errorf("failed to render article text: %w", err)
			}
			data = []byte(builder.String())
		} else {
			data, err = io.ReadAll(resp.Body)
			if err != nil {
				return nil, err
			}
		}

		l.cacheMu.Lock()
		l.cache[key] = data
		l.cacheMu.Unlock()

		return data, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}
