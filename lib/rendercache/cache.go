// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rendercache

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/bureau-foundation/pressroom/lib/ref"
)

const defaultMaxEntries = 256

// renderer is initialized once and shared. The configuration never
// changes and goldmark.Markdown is safe for concurrent Convert calls.
var (
	rendererInstance goldmark.Markdown
	rendererOnce     sync.Once
)

func getRenderer() goldmark.Markdown {
	rendererOnce.Do(func() {
		rendererInstance = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.DefinitionList,
			),
			goldmark.WithRendererOptions(
				// Single newlines in prose become <br>, matching
				// how authors expect the editor preview to read.
				html.WithHardWraps(),
			),
		)
	})
	return rendererInstance
}

// Config holds cache parameters.
type Config struct {
	// MaxEntries caps the cache. Zero selects the default.
	MaxEntries int

	// Logger receives eviction and invalidation events at debug
	// level. Nil discards them.
	Logger *slog.Logger
}

// cacheKey addresses one rendered page.
type cacheKey struct {
	group    string
	document string
	language string
}

// Cache is a bounded FIFO cache of rendered HTML. Safe for
// concurrent use.
type Cache struct {
	maxEntries int
	logger     *slog.Logger

	mu      sync.Mutex
	entries map[cacheKey]string
	// order holds insertion order for eviction. Invalidated keys
	// stay in the queue and are skipped when they surface.
	order []cacheKey
}

// New creates a cache.
func New(cfg Config) *Cache {
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{
		maxEntries: maxEntries,
		logger:     logger,
		entries:    make(map[cacheKey]string),
	}
}

// Render returns the HTML for a document's markdown, from cache when
// possible. The caller is responsible for invalidating after writes;
// Render itself never detects staleness.
func (c *Cache) Render(group ref.Group, id ref.DocumentID, language ref.Language, markdown string) (string, error) {
	key := cacheKey{group: group.String(), document: id.String(), language: language.String()}

	c.mu.Lock()
	if rendered, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return rendered, nil
	}
	c.mu.Unlock()

	var buffer bytes.Buffer
	if err := getRenderer().Convert([]byte(markdown), &buffer); err != nil {
		return "", fmt.Errorf("rendercache: render %s/%s %s: %w", group, id, language, err)
	}
	rendered := buffer.String()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.evictLocked()
		c.entries[key] = rendered
		c.order = append(c.order, key)
	}
	return rendered, nil
}

// Invalidate drops one language's cached render.
func (c *Cache) Invalidate(group ref.Group, id ref.DocumentID, language ref.Language) {
	key := cacheKey{group: group.String(), document: id.String(), language: language.String()}

	c.mu.Lock()
	_, present := c.entries[key]
	delete(c.entries, key)
	c.mu.Unlock()

	if present {
		c.logger.Debug("render cache invalidated",
			"group", key.group, "document", key.document, "language", key.language)
	}
}

// InvalidateDocument drops every language's cached render of one
// document. Used after publish and fork, where cross-language status
// banners change pages whose body did not.
func (c *Cache) InvalidateDocument(group ref.Group, id ref.DocumentID) {
	groupSlug, documentID := group.String(), id.String()

	c.mu.Lock()
	removed := 0
	for key := range c.entries {
		if key.group == groupSlug && key.document == documentID {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	if removed > 0 {
		c.logger.Debug("render cache invalidated",
			"group", groupSlug, "document", documentID, "languages", removed)
	}
}

// Len returns the number of cached renders.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked makes room for one insertion. Queue entries whose key
// was invalidated are skipped, which also compacts the queue.
func (c *Cache) evictLocked() {
	for len(c.entries) >= c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		if _, ok := c.entries[oldest]; ok {
			delete(c.entries, oldest)
			c.logger.Debug("render cache evicted",
				"group", oldest.group, "document", oldest.document, "language", oldest.language)
		}
	}
}
