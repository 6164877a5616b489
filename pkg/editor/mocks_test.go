package editor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/shouni/gemini-image-editor/pkg/domain"
)

// --- Mocks ---

type mockEditor struct {
	mu     sync.Mutex
	editFn func(ctx context.Context, req domain.EditRequest) (*domain.ImageResponse, error)
	reqs   []domain.EditRequest
}

func (m *mockEditor) EditImage(ctx context.Context, req domain.EditRequest) (*domain.ImageResponse, error) {
	m.mu.Lock()
	m.reqs = append(m.reqs, req)
	fn := m.editFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return &domain.ImageResponse{Data: []byte("result:" + req.Prompt), MimeType: "image/png"}, nil
}

func (m *mockEditor) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reqs)
}

// pngSource はテスト用の w x h の PNG 元画像を作るヘルパー
func pngSource(t *testing.T, w, h int) *domain.SourceImage {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 200, 255})
		}
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return &domain.SourceImage{Data: buf.Bytes(), MimeType: "image/png", Name: "test.png"}
}
