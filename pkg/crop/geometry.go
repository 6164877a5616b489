package crop

import (
	"errors"
	"math"
)

// ErrEmptyContainer は表示領域のサイズが 0 でドラッグ量を百分率にできないことを示します。
var ErrEmptyContainer = errors.New("表示領域のサイズが 0 です")

// Delta はドラッグ量を表示領域に対する百分率で表したものです。
type Delta struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PercentDelta はドラッグ開始点から現在点までの移動量を表示領域の百分率に変換します。
func PercentDelta(start, current Point, container Size) (Delta, error) {
	if container.Width <= 0 || container.Height <= 0 {
		return Delta{}, ErrEmptyContainer
	}
	return Delta{
		X: (current.X - start.X) / container.Width * Full,
		Y: (current.Y - start.Y) / container.Height * Full,
	}, nil
}

// Apply はドラッグ開始時の範囲 anchor に操作 action と移動量 d を適用した新しい範囲を返します。
// 副作用はなく、結果は常に 0〜100 に収まり、幅・高さは MinSize 以上です。
func Apply(anchor Region, action Action, d Delta) Region {
	dx, dy := finite(d.X), finite(d.Y)
	next := anchor

	if action == ActionMove {
		next.X = clamp(anchor.X+dx, 0, Full-anchor.Width)
		next.Y = clamp(anchor.Y+dy, 0, Full-anchor.Height)
		return next
	}

	north, south, east, west := action.edges()
	if east {
		next.Width = clamp(anchor.Width+dx, MinSize, Full-anchor.X)
	}
	if south {
		next.Height = clamp(anchor.Height+dy, MinSize, Full-anchor.Y)
	}
	if west {
		actual := clamp(dx, -anchor.X, anchor.Width-MinSize)
		next.X = anchor.X + actual
		next.Width = anchor.Width - actual
	}
	if north {
		actual := clamp(dy, -anchor.Y, anchor.Height-MinSize)
		next.Y = anchor.Y + actual
		next.Height = anchor.Height - actual
	}
	return next
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
