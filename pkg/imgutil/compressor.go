package imgutil

import (
	"bytes"
	"image/color"

	"github.com/disintegration/imaging"
)

// CompressToJPEG は画像データ（PNG, GIF, WebP, JPEG等）をJPEG形式に圧縮します。
// 透過部分は白で塗りつぶします。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}

	flat := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
	flat = imaging.Overlay(flat, img, flat.Bounds().Min, 1.0)

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, flat, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
