package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPageRenderer struct {
	mock.Mock
}

func (m *mockPageRenderer) RenderPages(ctx context.Context, path string) ([]Page, error) {
	args := m.Called(ctx, path)
	if pages, ok := args.Get(0).([]Page); ok {
		return pages, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPageCache struct {
	mock.Mock
}

func (m *mockPageCache) GetCachedRender(ctx context.Context, docHash string) ([]Page, error) {
	args := m.Called(ctx, docHash)
	if pages, ok := args.Get(0).([]Page); ok {
		return pages, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPageCache) SetCachedRender(ctx context.Context, docHash string, pages []Page, ttl time.Duration) error {
	args := m.Called(ctx, docHash, pages, ttl)
	return args.Error(0)
}

func writeTestDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lease.pdf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCachedRenderer_Miss(t *testing.T) {
	path := writeTestDoc(t, "%PDF-1.4 lease body")
	hash, err := hashFile(path)
	require.NoError(t, err)

	pages := []Page{{Number: 1, Text: "LEASE AGREEMENT"}}

	inner := &mockPageRenderer{}
	inner.On("RenderPages", mock.Anything, path).Return(pages, nil)

	cache := &mockPageCache{}
	cache.On("GetCachedRender", mock.Anything, hash).Return(nil, nil)
	cache.On("SetCachedRender", mock.Anything, hash, pages, time.Hour).Return(nil)

	cr := NewCachedRenderer(inner, cache, time.Hour)
	got, err := cr.RenderPages(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, pages, got)

	inner.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestCachedRenderer_Hit(t *testing.T) {
	path := writeTestDoc(t, "%PDF-1.4 lease body")
	hash, err := hashFile(path)
	require.NoError(t, err)

	cachedPages := []Page{{Number: 1, Text: "LEASE AGREEMENT"}, {Number: 2, Text: "Rent schedule"}}

	inner := &mockPageRenderer{}
	cache := &mockPageCache{}
	cache.On("GetCachedRender", mock.Anything, hash).Return(cachedPages, nil)

	cr := NewCachedRenderer(inner, cache, time.Hour)
	got, err := cr.RenderPages(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, cachedPages, got)

	inner.AssertNotCalled(t, "RenderPages", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "SetCachedRender", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedRenderer_LookupErrorRendersFresh(t *testing.T) {
	path := writeTestDoc(t, "%PDF-1.4 lease body")

	pages := []Page{{Number: 1, Text: "LEASE AGREEMENT"}}

	inner := &mockPageRenderer{}
	inner.On("RenderPages", mock.Anything, path).Return(pages, nil)

	cache := &mockPageCache{}
	cache.On("GetCachedRender", mock.Anything, mock.AnythingOfType("string")).Return(nil, eris.New("db locked"))
	cache.On("SetCachedRender", mock.Anything, mock.AnythingOfType("string"), pages, time.Hour).Return(nil)

	cr := NewCachedRenderer(inner, cache, time.Hour)
	got, err := cr.RenderPages(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, pages, got)
	inner.AssertExpectations(t)
}

func TestCachedRenderer_SetErrorIsAbsorbed(t *testing.T) {
	path := writeTestDoc(t, "%PDF-1.4 lease body")

	pages := []Page{{Number: 1, Text: "LEASE AGREEMENT"}}

	inner := &mockPageRenderer{}
	inner.On("RenderPages", mock.Anything, path).Return(pages, nil)

	cache := &mockPageCache{}
	cache.On("GetCachedRender", mock.Anything, mock.AnythingOfType("string")).Return(nil, nil)
	cache.On("SetCachedRender", mock.Anything, mock.AnythingOfType("string"), pages, time.Hour).Return(eris.New("disk full"))

	cr := NewCachedRenderer(inner, cache, time.Hour)
	got, err := cr.RenderPages(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, pages, got)
}

func TestCachedRenderer_InnerErrorPropagates(t *testing.T) {
	path := writeTestDoc(t, "%PDF-1.4 lease body")

	inner := &mockPageRenderer{}
	inner.On("RenderPages", mock.Anything, path).Return(nil, eris.New("ocr down"))

	cache := &mockPageCache{}
	cache.On("GetCachedRender", mock.Anything, mock.AnythingOfType("string")).Return(nil, nil)

	cr := NewCachedRenderer(inner, cache, time.Hour)
	_, err := cr.RenderPages(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ocr down")
	cache.AssertNotCalled(t, "SetCachedRender", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedRenderer_MissingFile(t *testing.T) {
	cr := NewCachedRenderer(&mockPageRenderer{}, &mockPageCache{}, time.Hour)
	_, err := cr.RenderPages(context.Background(), "/nonexistent/lease.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hash lease.pdf")
}

func TestNewCachedRenderer_DefaultTTL(t *testing.T) {
	cr := NewCachedRenderer(&mockPageRenderer{}, &mockPageCache{}, 0)
	assert.Equal(t, 168*time.Hour, cr.ttl)
}

func TestHashFile_ContentAddressed(t *testing.T) {
	dir := t.TempDir()

	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	c := filepath.Join(dir, "c.pdf")
	require.NoError(t, os.WriteFile(a, []byte("same bytes"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("same bytes"), 0o644))
	require.NoError(t, os.WriteFile(c, []byte("other bytes"), 0o644))

	hashA, err := hashFile(a)
	require.NoError(t, err)
	hashB, err := hashFile(b)
	require.NoError(t, err)
	hashC, err := hashFile(c)
	require.NoError(t, err)

	assert.Equal(t, hashA, hashB)
	assert.NotEqual(t, hashA, hashC)
	assert.Len(t, hashA, 64)
}
