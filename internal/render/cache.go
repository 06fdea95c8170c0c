package render

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// PageCache stores rendered pages keyed by document content hash. The
// store package satisfies this.
type PageCache interface {
	GetCachedRender(ctx context.Context, docHash string) ([]Page, error)
	SetCachedRender(ctx context.Context, docHash string, pages []Page, ttl time.Duration) error
}

// CachedRenderer wraps a Renderer with a content-addressed page cache.
// OCR is the slowest and most expensive stage, so re-running the same
// document within the TTL reuses the stored pages. Cache failures are
// logged and the document is rendered fresh.
type CachedRenderer struct {
	inner Renderer
	cache PageCache
	ttl   time.Duration
}

// NewCachedRenderer wraps inner with cache. A non-positive ttl falls back
// to one week.
func NewCachedRenderer(inner Renderer, cache PageCache, ttl time.Duration) *CachedRenderer {
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}
	return &CachedRenderer{inner: inner, cache: cache, ttl: ttl}
}

func (c *CachedRenderer) RenderPages(ctx context.Context, path string) ([]Page, error) {
	hash, err := hashFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "render: hash %s", filepath.Base(path))
	}

	cached, err := c.cache.GetCachedRender(ctx, hash)
	if err != nil {
		zap.L().Warn("render: cache lookup failed",
			zap.String("document", filepath.Base(path)),
			zap.Error(err),
		)
	}
	if cached != nil {
		zap.L().Info("render: using cached pages",
			zap.String("document", filepath.Base(path)),
			zap.Int("pages", len(cached)),
		)
		return cached, nil
	}

	pages, err := c.inner.RenderPages(ctx, path)
	if err != nil {
		return nil, err
	}

	if cacheErr := c.cache.SetCachedRender(ctx, hash, pages, c.ttl); cacheErr != nil {
		zap.L().Warn("render: failed to cache pages",
			zap.String("document", filepath.Base(path)),
			zap.Error(cacheErr),
		)
	}
	return pages, nil
}

// hashFile returns the hex SHA-256 of the file contents.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
