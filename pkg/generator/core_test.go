package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shouni/gemini-image-editor/pkg/domain"
	"github.com/shouni/gemini-image-editor/pkg/imgutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 注意: mockReader, mockHTTPClient, mockCache は
// mocks_test.go で定義されているため、ここでは定義不要です。

func TestNewImageSourceLoader(t *testing.T) {
	t.Run("reader がない場合はエラーになる", func(t *testing.T) {
		_, err := NewImageSourceLoader(nil, &mockHTTPClient{}, nil, time.Hour)
		assert.Error(t, err)
	})

	t.Run("httpClient がない場合はエラーになる", func(t *testing.T) {
		_, err := NewImageSourceLoader(&mockReader{}, nil, nil, time.Hour)
		assert.Error(t, err)
	})

	t.Run("cache は省略できる", func(t *testing.T) {
		_, err := NewImageSourceLoader(&mockReader{}, &mockHTTPClient{}, nil, time.Hour)
		assert.NoError(t, err)
	})
}

func TestImageSourceLoader_LoadSource(t *testing.T) {
	ctx := context.Background()
	img := pngBytes(t)

	t.Run("HTTP(S) は HTTP クライアントから取得する", func(t *testing.T) {
		httpMock := &mockHTTPClient{data: img}
		reader := &mockReader{}
		loader, err := NewImageSourceLoader(reader, httpMock, nil, time.Hour)
		require.NoError(t, err)

		src, err := loader.LoadSource(ctx, "https://example.com/cat.png")
		require.NoError(t, err)
		assert.Equal(t, "image/png", src.MimeType)
		assert.Equal(t, "cat.png", src.Name)
		assert.Equal(t, []string{"https://example.com/cat.png"}, httpMock.fetched)
		assert.Empty(t, reader.opened)
	})

	t.Run("GCS とローカルパスは reader から取得する", func(t *testing.T) {
		reader := &mockReader{files: map[string][]byte{
			"gs://bucket/dog.png": img,
			"./local/dog.png":     img,
		}}
		httpMock := &mockHTTPClient{}
		loader, _ := NewImageSourceLoader(reader, httpMock, nil, time.Hour)

		for _, uri := range []string{"gs://bucket/dog.png", "./local/dog.png"} {
			src, err := loader.LoadSource(ctx, uri)
			require.NoError(t, err, uri)
			assert.True(t, src.Loaded())
		}
		assert.Empty(t, httpMock.fetched)
	})

	t.Run("キャッシュがある場合は取得をスキップする", func(t *testing.T) {
		cache := &mockCache{data: make(map[string]any)}
		reader := &mockReader{files: map[string][]byte{"s3://bucket/a.png": img}}
		loader, _ := NewImageSourceLoader(reader, &mockHTTPClient{}, cache, time.Hour)

		_, err := loader.LoadSource(ctx, "s3://bucket/a.png")
		require.NoError(t, err)
		_, err = loader.LoadSource(ctx, "s3://bucket/a.png")
		require.NoError(t, err)

		assert.Len(t, reader.opened, 1)
		_, ok := cache.Get(cacheKeySource + "s3://bucket/a.png")
		assert.True(t, ok, "should be cached")
	})

	t.Run("data URL はそのままデコードする", func(t *testing.T) {
		loader, _ := NewImageSourceLoader(&mockReader{}, &mockHTTPClient{}, nil, time.Hour)
		src, err := loader.LoadSource(ctx, imgutil.EncodeDataURL(img, "image/png"))
		require.NoError(t, err)
		assert.Equal(t, img, src.Data)
	})

	t.Run("画像でないデータは InputError になる", func(t *testing.T) {
		httpMock := &mockHTTPClient{data: []byte("<html>not an image</html>")}
		loader, _ := NewImageSourceLoader(&mockReader{}, httpMock, nil, time.Hour)

		_, err := loader.LoadSource(ctx, "https://example.com/page")
		var inErr *domain.InputError
		assert.True(t, errors.As(err, &inErr))
	})

	t.Run("空の URI は InputError になる", func(t *testing.T) {
		loader, _ := NewImageSourceLoader(&mockReader{}, &mockHTTPClient{}, nil, time.Hour)
		_, err := loader.LoadSource(ctx, "  ")
		var inErr *domain.InputError
		assert.True(t, errors.As(err, &inErr))
	})

	t.Run("取得に失敗した場合はエラーを返す", func(t *testing.T) {
		httpMock := &mockHTTPClient{err: errors.New("blocked private address")}
		loader, _ := NewImageSourceLoader(&mockReader{}, httpMock, nil, time.Hour)
		_, err := loader.LoadSource(ctx, "http://10.0.0.1/secret.png")
		assert.ErrorContains(t, err, "blocked private address")
	})
}
