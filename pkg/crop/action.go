package crop

import (
	"fmt"
	"strings"
)

// Action はドラッグ開始位置（移動領域またはハンドル）で決まる操作です。
type Action int

const (
	ActionNone Action = iota
	ActionMove
	ActionResizeN
	ActionResizeS
	ActionResizeE
	ActionResizeW
	ActionResizeNE
	ActionResizeNW
	ActionResizeSE
	ActionResizeSW
)

var actionNames = map[Action]string{
	ActionNone:     "none",
	ActionMove:     "move",
	ActionResizeN:  "n",
	ActionResizeS:  "s",
	ActionResizeE:  "e",
	ActionResizeW:  "w",
	ActionResizeNE: "ne",
	ActionResizeNW: "nw",
	ActionResizeSE: "se",
	ActionResizeSW: "sw",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseAction は "move", "ne", "resize-ne" などの表記を Action に変換します。
func ParseAction(s string) (Action, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "resize-")
	for a, n := range actionNames {
		if a != ActionNone && n == name {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("不明な切り抜き操作です: %q", s)
}

// MarshalText は JSON などへ名前で書き出します。
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText は名前から Action を復元します。
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// edges は操作が動かす辺を返します。角は 2 辺の組み合わせです。
func (a Action) edges() (north, south, east, west bool) {
	switch a {
	case ActionResizeN:
		north = true
	case ActionResizeS:
		south = true
	case ActionResizeE:
		east = true
	case ActionResizeW:
		west = true
	case ActionResizeNE:
		north, east = true, true
	case ActionResizeNW:
		north, west = true, true
	case ActionResizeSE:
		south, east = true, true
	case ActionResizeSW:
		south, west = true, true
	}
	return
}
