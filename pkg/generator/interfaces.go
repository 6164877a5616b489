package generator

import (
	"context"
	"time"

	"github.com/shouni/gemini-image-editor/pkg/domain"
)

// ImageEditor は元画像と編集指示から新しい画像を生成する編集コラボレーターです。
type ImageEditor interface {
	EditImage(ctx context.Context, req domain.EditRequest) (*domain.ImageResponse, error)
}

// SourceLoader はローカルパス、GCS/S3 URI、HTTP(S) URL、data URL から元画像を読み込みます。
type SourceLoader interface {
	LoadSource(ctx context.Context, uri string) (*domain.SourceImage, error)
}

// ImageCacher は、画像をキャッシュするためのインターフェースです。
type ImageCacher interface {
	// Get は、指定されたキーに紐づくアイテムを取得します。
	Get(key string) (any, bool)
	// Set は、指定されたキーと値、有効期限でアイテムを保存します。
	Set(key string, value any, d time.Duration)
}

// HTTPClient は、HTTPリクエストを実行し、URLからデータを取得するためのインターフェースです。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}
