package imgutil

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/shouni/gemini-image-editor/pkg/domain"

	// アップロードされる webp を読めるようにする
	_ "golang.org/x/image/webp"
)

// Decode は画像データをデコードします。EXIF の向きを反映し、ブラウザでの表示と同じ向きにそろえます。
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, &domain.RasterError{Reason: "画像が読み込まれていません"}
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &domain.RasterError{Reason: "画像をデコードできません", Err: err}
	}
	return img, nil
}
