package generator

const (
	// DefaultModel は画像編集に使う Gemini モデルです。
	DefaultModel = "gemini-2.5-flash-image"
	// DefaultCompressionQuality は元画像を JPEG 圧縮する場合の品質です。
	DefaultCompressionQuality = 75

	cacheKeySource = "source:"
)

// ImageOutput は Gemini レスポンスの内部解析結果
type ImageOutput struct {
	Data     []byte
	MimeType string
	UsedSeed int64
}
