package generator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/shouni/gemini-image-editor/pkg/domain"
	"github.com/shouni/gemini-image-editor/pkg/imgutil"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// ImageSourceLoader は SourceLoader の実装です。
// HTTP(S) は go-http-kit、ローカルパスと GCS/S3 は go-remote-io から読み込み、結果を TTL 付きでキャッシュします。
type ImageSourceLoader struct {
	reader     remoteio.InputReader
	httpClient HTTPClient
	cache      ImageCacher
	expiration time.Duration
}

// NewImageSourceLoader は依存関係を注入して ImageSourceLoader を初期化します。
func NewImageSourceLoader(reader remoteio.InputReader, httpClient HTTPClient, cache ImageCacher, cacheTTL time.Duration) (*ImageSourceLoader, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader is required")
	}
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	// cache は nil を許容（キャッシュなし動作）

	return &ImageSourceLoader{
		reader:     reader,
		httpClient: httpClient,
		cache:      cache,
		expiration: cacheTTL,
	}, nil
}

// LoadSource は uri から元画像を読み込みます。画像以外のデータは InputError になります。
func (l *ImageSourceLoader) LoadSource(ctx context.Context, uri string) (*domain.SourceImage, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, &domain.InputError{Field: "source", Reason: "画像の場所が指定されていません"}
	}

	// data URL はその場でデコードするだけなのでキャッシュしない
	if isDataURL(uri) {
		data, mimeType, err := imgutil.DecodeDataURL(uri)
		if err != nil {
			return nil, &domain.InputError{Field: "source", Reason: err.Error()}
		}
		return toSource(data, mimeType, "upload")
	}

	cacheKey := cacheKeySource + uri
	if l.cache != nil {
		if val, ok := l.cache.Get(cacheKey); ok {
			if src, ok := val.(*domain.SourceImage); ok {
				copied := *src
				return &copied, nil
			}
		}
	}

	data, err := l.fetchImageData(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("元画像の取得に失敗しました (%s): %w", uri, err)
	}

	src, err := toSource(data, "", filepath.Base(uri))
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "元画像を読み込みました", "uri", uri, "mime_type", src.MimeType, "bytes", len(src.Data))

	if l.cache != nil {
		l.cache.Set(cacheKey, src, l.expiration)
	}
	copied := *src
	return &copied, nil
}

func (l *ImageSourceLoader) fetchImageData(ctx context.Context, uri string) ([]byte, error) {
	// SSRF 対策は go-http-kit のトランスポートが行う
	if isHTTPURL(uri) {
		return l.httpClient.FetchBytes(ctx, uri)
	}

	rc, err := l.reader.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// toSource は MIME タイプを判定し、画像であることを確認して SourceImage を作ります。
func toSource(data []byte, mimeType, name string) (*domain.SourceImage, error) {
	if len(data) == 0 {
		return nil, &domain.InputError{Field: "source", Reason: "画像データが空です"}
	}
	detected := http.DetectContentType(data)
	if strings.HasPrefix(detected, "image/") {
		mimeType = detected
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, &domain.InputError{Field: "source", Reason: fmt.Sprintf("画像ではないデータです (%s)", detected)}
	}
	return &domain.SourceImage{Data: data, MimeType: mimeType, Name: name}, nil
}
