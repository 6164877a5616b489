package generator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shouni/gemini-image-editor/pkg/domain"
	"github.com/shouni/gemini-image-editor/pkg/imgutil"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// GeminiEditor は元画像と編集指示を Gemini に送り、編集済み画像を受け取る ImageEditor の実装なのだ。
type GeminiEditor struct {
	aiClient gemini.GenerativeModel
	model    string
	compress bool
	quality  int
}

// EditorOption は GeminiEditor の任意設定なのだ。
type EditorOption func(*GeminiEditor)

// WithSourceCompression は送信前に元画像を JPEG に圧縮するのだ。
func WithSourceCompression(quality int) EditorOption {
	return func(g *GeminiEditor) {
		g.compress = true
		g.quality = quality
	}
}

// NewGeminiEditor は GeminiEditor を初期化するのだ。model が空なら DefaultModel を使うのだ。
func NewGeminiEditor(aiClient gemini.GenerativeModel, model string, opts ...EditorOption) (*GeminiEditor, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient (gemini.GenerativeModel) is required")
	}
	if model == "" {
		model = DefaultModel
	}

	g := &GeminiEditor{
		aiClient: aiClient,
		model:    model,
		quality:  DefaultCompressionQuality,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// EditImage は元画像パーツと指示文パーツを 1 回のリクエストにまとめて送るのだ。
// 失敗や拒否はすべて表示用メッセージを持つ *domain.GenerationError になるのだ。
func (g *GeminiEditor) EditImage(ctx context.Context, req domain.EditRequest) (*domain.ImageResponse, error) {
	if len(req.Source) == 0 {
		return nil, &domain.InputError{Field: "source", Reason: "元画像がありません"}
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, &domain.InputError{Field: "prompt", Reason: "指示文が空です"}
	}

	imgPart, err := g.prepareImagePart(req.Source, req.MimeType)
	if err != nil {
		return nil, err
	}
	parts := []*genai.Part{imgPart, {Text: req.Prompt}}

	slog.InfoContext(ctx, "Gemini画像編集リクエスト送信中",
		"model", g.model,
		"aspect_ratio", req.AspectRatio,
		"mime_type", imgPart.InlineData.MIMEType,
		"bytes", len(imgPart.InlineData.Data),
	)

	opts := gemini.GenerateOptions{
		AspectRatio: string(req.AspectRatio),
		Seed:        req.Seed,
	}
	resp, err := g.aiClient.GenerateWithParts(ctx, g.model, parts, opts)
	if err != nil {
		// 表示するのはコラボレーターのメッセージそのもの
		slog.WarnContext(ctx, "Gemini画像編集エラー", "model", g.model, "error", err)
		return nil, domain.NewGenerationError(err)
	}

	out, err := g.parseToResponse(resp, dereferenceSeed(req.Seed))
	if err != nil {
		return nil, domain.NewGenerationError(err)
	}

	return &domain.ImageResponse{
		Data:     out.Data,
		MimeType: out.MimeType,
		UsedSeed: out.UsedSeed,
	}, nil
}

// prepareImagePart は元画像を InlineData パーツにするのだ。圧縮が有効なら JPEG にしてから載せるのだ。
func (g *GeminiEditor) prepareImagePart(data []byte, mimeType string) (*genai.Part, error) {
	finalData := data
	if g.compress {
		if compressed, err := imgutil.CompressToJPEG(data, g.quality); err == nil {
			finalData = compressed
		} else {
			slog.Warn("元画像の圧縮に失敗したため、そのまま送信します", "error", err)
		}
	}

	detected := http.DetectContentType(finalData)
	if strings.HasPrefix(detected, "image/") {
		mimeType = detected
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, &domain.InputError{Field: "source", Reason: fmt.Sprintf("画像ではないデータです (%s)", detected)}
	}
	return &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: finalData}}, nil
}

// parseToResponse は最初の候補から画像パーツを探すのだ。
// 画像がなくテキストだけが返った場合は、モデルが拒否したものとして扱うのだ。
func (g *GeminiEditor) parseToResponse(resp *gemini.Response, seed int64) (*ImageOutput, error) {
	if resp == nil || resp.RawResponse == nil {
		return nil, fmt.Errorf("Gemini から空のレスポンスが返されました")
	}
	raw := resp.RawResponse
	if len(raw.Candidates) == 0 {
		if fb := raw.PromptFeedback; fb != nil && fb.BlockReason != "" {
			return nil, fmt.Errorf("Gemini がリクエストをブロックしました（理由: %s）", fb.BlockReason)
		}
		return nil, fmt.Errorf("Gemini から空のレスポンスが返されました")
	}

	candidate := raw.Candidates[0]
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return nil, fmt.Errorf("生成がブロックされました（理由: %v）", candidate.FinishReason)
	}
	if candidate.Content == nil {
		return nil, fmt.Errorf("Gemini から画像データが返されませんでした")
	}

	var texts []string
	for _, part := range candidate.Content.Parts {
		if part == nil {
			continue
		}
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return &ImageOutput{Data: part.InlineData.Data, MimeType: part.InlineData.MIMEType, UsedSeed: seed}, nil
		}
		if t := strings.TrimSpace(part.Text); t != "" {
			texts = append(texts, t)
		}
	}

	if len(texts) > 0 {
		return nil, fmt.Errorf("Gemini が画像生成を拒否しました: %s", strings.Join(texts, " "))
	}
	return nil, fmt.Errorf("Gemini から画像データが返されませんでした")
}
