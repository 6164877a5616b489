package imgutil

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"
	"github.com/shouni/gemini-image-editor/pkg/crop"
	"github.com/shouni/gemini-image-editor/pkg/domain"
)

// resizer は smartcrop の Resizer を imaging で実装します。
type resizer struct {
	filter imaging.ResampleFilter
}

func (r resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.filter)
}

// SuggestRegion は画像の内容から、アスペクト比 aspect に合う切り抜き範囲を提案します。
// 解析は重いので ctx の終了で打ち切れるようにしています。
func SuggestRegion(ctx context.Context, img image.Image, aspect domain.AspectRatio) (crop.Region, error) {
	if img == nil || img.Bounds().Empty() {
		return crop.Region{}, &domain.RasterError{Reason: "画像が読み込まれていません"}
	}
	w, h := aspect.Dimensions()
	if w <= 0 || h <= 0 {
		return crop.Region{}, &domain.InputError{Field: "aspectRatio", Reason: fmt.Sprintf("未対応のアスペクト比です: %q", aspect)}
	}

	analyzer := smartcrop.NewAnalyzer(resizer{filter: imaging.Lanczos})

	type cropResult struct {
		rect image.Rectangle
		err  error
	}
	resultChan := make(chan cropResult, 1)

	go func() {
		rect, err := analyzer.FindBestCrop(img, w, h)
		resultChan <- cropResult{rect: rect, err: err}
	}()

	select {
	case <-ctx.Done():
		return crop.Region{}, ctx.Err()
	case result := <-resultChan:
		if result.err != nil {
			return crop.Region{}, fmt.Errorf("切り抜き範囲の解析に失敗しました: %w", result.err)
		}
		return regionFromRect(img.Bounds(), result.rect), nil
	}
}

// regionFromRect はピクセル矩形を百分率の範囲に変換し、最小サイズと画像内に収まるよう補正します。
func regionFromRect(bounds, rect image.Rectangle) crop.Region {
	bw, bh := float64(bounds.Dx()), float64(bounds.Dy())
	rect = rect.Intersect(bounds)

	width := max(float64(rect.Dx())/bw*crop.Full, crop.MinSize)
	height := max(float64(rect.Dy())/bh*crop.Full, crop.MinSize)
	width, height = min(width, crop.Full), min(height, crop.Full)

	x := float64(rect.Min.X-bounds.Min.X) / bw * crop.Full
	y := float64(rect.Min.Y-bounds.Min.Y) / bh * crop.Full

	return crop.Region{
		X:      min(max(x, 0), crop.Full-width),
		Y:      min(max(y, 0), crop.Full-height),
		Width:  width,
		Height: height,
	}
}
