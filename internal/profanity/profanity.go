// Package profanity provides the word-list predicate used by the chat filter.
package profanity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const fetchTimeout = 15 * time.Second

// Filter answers whether a message contains a listed word. The zero value is
// usable and matches nothing, so a failed refresh leaves the filter as a
// no-op.
type Filter struct {
	mu    sync.RWMutex
	words map[string]struct{}
}

// NewFilter returns an empty filter.
func NewFilter() *Filter {
	return &Filter{words: make(map[string]struct{})}
}

// Contains reports whether any whitespace-separated word of text is listed.
func (f *Filter) Contains(text string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.words) == 0 {
		return false
	}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if _, ok := f.words[word]; ok {
			return true
		}
	}
	return false
}

// Size returns the number of loaded words.
func (f *Filter) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.words)
}

// Refresh fetches the given sources and replaces the word set. Sources may be
// newline-separated plain text or a JSON string array. Individual fetch
// failures are logged and skipped; Refresh only errors when nothing loaded.
func (f *Filter) Refresh(ctx context.Context, logger *zerolog.Logger, sources []string) error {
	words := make(map[string]struct{})
	client := &http.Client{Timeout: fetchTimeout}

	for _, src := range sources {
		list, err := fetchWordList(ctx, client, src)
		if err != nil {
			if logger != nil {
				logger.Warn().Err(err).Str("source", src).Msg("profanity source fetch failed")
			}
			continue
		}
		for _, w := range list {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				words[w] = struct{}{}
			}
		}
	}

	if len(words) == 0 && len(sources) > 0 {
		return fmt.Errorf("no profanity sources loaded")
	}

	f.mu.Lock()
	f.words = words
	f.mu.Unlock()
	if logger != nil {
		logger.Info().Int("words", len(words)).Msg("profanity list loaded")
	}
	return nil
}

func fetchWordList(ctx context.Context, client *http.Client, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var list []string
		if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
			return nil, fmt.Errorf("decode json list: %w", err)
		}
		return list, nil
	}
	return strings.Split(trimmed, "\n"), nil
}
