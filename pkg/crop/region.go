package crop

import (
	"fmt"
	"math"
)

const (
	// MinSize は切り抜き範囲の幅・高さの下限（%）です。
	MinSize = 10.0
	// Full は表示領域全体を表す 100% です。
	Full = 100.0

	epsilon = 1e-9
)

// Region は元画像の表示領域に対する百分率で表した切り抜き範囲です。
type Region struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultRegion は画像を読み込んだ直後や取り消し後に使う初期範囲です。
func DefaultRegion() Region {
	return Region{X: 10, Y: 10, Width: 80, Height: 80}
}

// Validate は範囲が 0〜100 に収まり、最小サイズを満たしているかを検証します。
func (r Region) Validate() error {
	for _, v := range []float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("切り抜き範囲に数値でない値が含まれています: %+v", r)
		}
	}
	switch {
	case r.X < -epsilon || r.Y < -epsilon:
		return fmt.Errorf("切り抜き範囲の原点が負です: %+v", r)
	case r.Width < MinSize-epsilon || r.Height < MinSize-epsilon:
		return fmt.Errorf("切り抜き範囲が最小サイズ %.0f%% を下回っています: %+v", MinSize, r)
	case r.X+r.Width > Full+epsilon || r.Y+r.Height > Full+epsilon:
		return fmt.Errorf("切り抜き範囲が画像の外にはみ出しています: %+v", r)
	}
	return nil
}

// Valid は Validate がエラーを返さないかを返します。
func (r Region) Valid() bool {
	return r.Validate() == nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
