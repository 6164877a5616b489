package imgutil

import (
	"bytes"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/shouni/gemini-image-editor/pkg/crop"
	"github.com/shouni/gemini-image-editor/pkg/domain"
)

// PixelRect は百分率の切り抜き範囲を画像の実ピクセル座標に変換します。
// 左上と右下の辺をそれぞれ丸めるので、隣り合う範囲の間に隙間はできません。
func PixelRect(bounds image.Rectangle, r crop.Region) image.Rectangle {
	sx := float64(bounds.Dx()) / crop.Full
	sy := float64(bounds.Dy()) / crop.Full

	x0 := int(math.Round(r.X * sx))
	y0 := int(math.Round(r.Y * sy))
	x1 := int(math.Round((r.X + r.Width) * sx))
	y1 := int(math.Round((r.Y + r.Height) * sy))

	return image.Rect(x0, y0, x1, y1).Add(bounds.Min).Intersect(bounds)
}

// Rasterize は画像から範囲 r を切り出します。
func Rasterize(img image.Image, r crop.Region) (*image.NRGBA, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, &domain.RasterError{Reason: "画像が読み込まれていません"}
	}
	if err := r.Validate(); err != nil {
		return nil, &domain.RasterError{Reason: "切り抜き範囲が不正です", Err: err}
	}
	rect := PixelRect(img.Bounds(), r)
	if rect.Empty() {
		return nil, &domain.RasterError{Reason: "切り抜き結果が 0 ピクセルです"}
	}
	return imaging.Crop(img, rect), nil
}

// CropToPNG は画像データを範囲 r で切り抜き、PNG として返します。
func CropToPNG(data []byte, r crop.Region) ([]byte, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	out, err := Rasterize(img, r)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, out, imaging.PNG); err != nil {
		return nil, &domain.RasterError{Reason: "PNG へのエンコードに失敗しました", Err: err}
	}
	return buf.Bytes(), nil
}
