package server

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shouni/gemini-image-editor/pkg/domain"
	"github.com/shouni/gemini-image-editor/pkg/editor"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type mockEditor struct {
	editFn func(ctx context.Context, req domain.EditRequest) (*domain.ImageResponse, error)
}

func (m *mockEditor) EditImage(ctx context.Context, req domain.EditRequest) (*domain.ImageResponse, error) {
	if m.editFn != nil {
		return m.editFn(ctx, req)
	}
	return &domain.ImageResponse{Data: []byte("edited:" + req.Prompt), MimeType: "image/png"}, nil
}

type mockLoader struct {
	sources map[string]*domain.SourceImage
}

func (m *mockLoader) LoadSource(ctx context.Context, uri string) (*domain.SourceImage, error) {
	src, ok := m.sources[uri]
	if !ok {
		return nil, &domain.InputError{Field: "source", Reason: fmt.Sprintf("not found: %s", uri)}
	}
	return src, nil
}

type mockWriter struct {
	mu      sync.Mutex
	written map[string][]byte
	err     error
}

func (m *mockWriter) Write(ctx context.Context, uri string, r io.Reader, contentType string) error {
	if m.err != nil {
		return m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written[uri] = data
	return nil
}

// pngData はテスト用の w x h の PNG を作るヘルパー
func pngData(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), 100, uint8(y % 256), 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

type testEnv struct {
	server *Server
	loader *mockLoader
	writer *mockWriter
	editor *mockEditor
}

const testStorageRoot = "gs://bucket"

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	ed := &mockEditor{}
	manager, err := editor.NewManager(ed, time.Hour)
	require.NoError(t, err)
	loader := &mockLoader{sources: map[string]*domain.SourceImage{}}
	writer := &mockWriter{written: map[string][]byte{}}

	opts = append([]Option{WithMaxUploadBytes(1 << 20), WithStorageRoot(testStorageRoot)}, opts...)
	srv, err := New(manager, loader, writer, opts...)
	require.NoError(t, err)
	return &testEnv{server: srv, loader: loader, writer: writer, editor: ed}
}
