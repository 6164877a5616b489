package domain

import (
	"fmt"
	"strings"
)

// AspectRatio は出力画像のアスペクト比です。
type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectPortrait  AspectRatio = "3:4"
	AspectLandscape AspectRatio = "4:3"
	AspectTall      AspectRatio = "9:16"
	AspectWide      AspectRatio = "16:9"

	// DefaultAspectRatio は指定がない場合に使うアスペクト比です。
	DefaultAspectRatio = AspectPortrait
)

var aspectRatios = []AspectRatio{AspectSquare, AspectPortrait, AspectLandscape, AspectTall, AspectWide}

// AspectRatios はサポートするアスペクト比を表示順で返します。
func AspectRatios() []AspectRatio {
	out := make([]AspectRatio, len(aspectRatios))
	copy(out, aspectRatios)
	return out
}

// ParseAspectRatio は文字列をアスペクト比に変換します。空文字はデフォルト値になります。
func ParseAspectRatio(s string) (AspectRatio, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultAspectRatio, nil
	}
	for _, r := range aspectRatios {
		if string(r) == s {
			return r, nil
		}
	}
	return "", &InputError{Field: "aspectRatio", Reason: fmt.Sprintf("未対応のアスペクト比です: %s", s)}
}

// Valid はサポート対象のアスペクト比かどうかを返します。
func (a AspectRatio) Valid() bool {
	for _, r := range aspectRatios {
		if r == a {
			return true
		}
	}
	return false
}

// Dimensions は "W:H" の W と H を返します。
func (a AspectRatio) Dimensions() (w, h int) {
	switch a {
	case AspectSquare:
		return 1, 1
	case AspectPortrait:
		return 3, 4
	case AspectLandscape:
		return 4, 3
	case AspectTall:
		return 9, 16
	case AspectWide:
		return 16, 9
	}
	return 0, 0
}
