package crop

// Point はクライアント座標（ピクセル）です。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size は表示領域の描画サイズ（ピクセル）です。
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// EventKind はポインターイベントの種類です。
type EventKind string

const (
	EventDown   EventKind = "down"
	EventMove   EventKind = "move"
	EventUp     EventKind = "up"
	EventCancel EventKind = "cancel"
)

// InputSource は入力デバイスの種類です。
type InputSource string

const (
	SourceMouse InputSource = "mouse"
	SourceTouch InputSource = "touch"
)

// PointerEvent はマウスとタッチの両方を表す入力イベントです。
type PointerEvent struct {
	Kind    EventKind   `json:"kind"`
	Source  InputSource `json:"source,omitempty"`
	ClientX float64     `json:"clientX"`
	ClientY float64     `json:"clientY"`
	Touches []Point     `json:"touches,omitempty"`
}

// Position はデバイスの違いを吸収した単一の座標を返します。
// タッチは最初の接点を使い、接点がない場合（touchend など）は false を返します。
func (e PointerEvent) Position() (Point, bool) {
	if e.Source == SourceTouch {
		if len(e.Touches) == 0 {
			return Point{}, false
		}
		return e.Touches[0], true
	}
	return Point{X: e.ClientX, Y: e.ClientY}, true
}
