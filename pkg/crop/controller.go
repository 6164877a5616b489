package crop

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrGestureInProgress は既にドラッグ中に新しいドラッグを開始しようとしたことを示します。
	ErrGestureInProgress = errors.New("ドラッグ操作が既に進行中です")
	// ErrGestureReleased は終了済みのドラッグに対して移動を適用しようとしたことを示します。
	ErrGestureReleased = errors.New("ドラッグ操作は既に終了しています")
	// ErrNoPosition は開始イベントから座標が取れなかったことを示します。
	ErrNoPosition = errors.New("ポインターイベントに座標がありません")
)

// State はインタラクションコントローラーの状態です。
type State int

const (
	StateIdle State = iota
	StateDragging
)

func (s State) String() string {
	if s == StateDragging {
		return "dragging"
	}
	return "idle"
}

// MarshalText は JSON へ状態名で書き出します。
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*s = StateIdle
	case "dragging":
		*s = StateDragging
	default:
		return fmt.Errorf("不明な状態です: %s", b)
	}
	return nil
}

// Controller は切り抜き範囲とドラッグ操作を所有し、ジオメトリ計算へ振り分けます。
// 範囲を書き換えるのはこの型だけです。
type Controller struct {
	mu        sync.Mutex
	region    Region
	confirmed Region
	active    *Gesture
}

// NewController は初期範囲で待機状態のコントローラーを返します。
func NewController() *Controller {
	r := DefaultRegion()
	return &Controller{region: r, confirmed: r}
}

// Region は現在の切り抜き範囲を返します。
func (c *Controller) Region() Region {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.region
}

// State は現在の状態を返します。
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		return StateDragging
	}
	return StateIdle
}

// Gesture は 1 回のドラッグの状態です。Release されるまで有効です。
type Gesture struct {
	c             *Controller
	action        Action
	anchorPointer Point
	anchorRegion  Region
	once          sync.Once
}

// Begin は idle から dragging へ遷移し、現在の範囲をアンカーとして記録します。
// 呼び出し側は必ず Release を呼ぶこと（defer 推奨）。
func (c *Controller) Begin(action Action, at Point) (*Gesture, error) {
	if action == ActionNone {
		return nil, fmt.Errorf("切り抜き操作が指定されていません")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		return nil, ErrGestureInProgress
	}
	g := &Gesture{
		c:             c,
		action:        action,
		anchorPointer: at,
		anchorRegion:  c.region,
	}
	c.active = g
	return g, nil
}

// Action はこのドラッグの操作を返します。
func (g *Gesture) Action() Action { return g.action }

// Move は開始点からの移動量をアンカー範囲に適用します。途中のフレームの結果には積み上げません。
func (g *Gesture) Move(p Point, container Size) (Region, error) {
	d, err := PercentDelta(g.anchorPointer, p, container)
	if err != nil {
		return g.c.Region(), err
	}
	next := Apply(g.anchorRegion, g.action, d)

	g.c.mu.Lock()
	defer g.c.mu.Unlock()
	if g.c.active != g {
		return g.c.region, ErrGestureReleased
	}
	g.c.region = next
	return next, nil
}

// Release は dragging から idle へ無条件に戻します。複数回呼んでも安全です。
func (g *Gesture) Release() {
	g.once.Do(func() {
		g.c.mu.Lock()
		defer g.c.mu.Unlock()
		if g.c.active == g {
			g.c.active = nil
		}
	})
}

// commit はドラッグが有効なうちに終わった場合、その結果を確定範囲として記録します。
func (g *Gesture) commit() Region {
	g.c.mu.Lock()
	defer g.c.mu.Unlock()
	if g.c.active == g {
		g.c.confirmed = g.c.region
	}
	return g.c.region
}

// Cancel はドラッグを破棄し、最後に確定した範囲（なければ初期範囲）へ戻します。
func (c *Controller) Cancel() Region {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = nil
	c.region = c.confirmed
	return c.region
}

// Reset は新しい画像向けに範囲を初期状態へ作り直します。
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = nil
	c.region = DefaultRegion()
	c.confirmed = c.region
}

// Replace はドラッグ中でなければ範囲を r で作り直し、確定範囲にします（自動提案など）。
func (c *Controller) Replace(r Region) error {
	if err := r.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		return ErrGestureInProgress
	}
	c.region = r
	c.confirmed = r
	return nil
}

// Track は start から始まる 1 回のドラッグを events が終わるまで処理します。
// pointer-up、cancel、チャネルのクローズ（ポインターが離脱した・接続が切れた）、ctx の終了の
// いずれでも戻り、どの経路でもドラッグは必ず解放されます。
// pointer-up とクローズではその範囲を確定し、cancel では直前に確定した範囲へ戻します。
// onUpdate は移動のたびに新しい範囲で呼ばれます。
func (c *Controller) Track(ctx context.Context, action Action, start PointerEvent, container Size, events <-chan PointerEvent, onUpdate func(Region)) (Region, error) {
	if container.Width <= 0 || container.Height <= 0 {
		return c.Region(), ErrEmptyContainer
	}
	at, ok := start.Position()
	if !ok {
		return c.Region(), ErrNoPosition
	}
	g, err := c.Begin(action, at)
	if err != nil {
		return c.Region(), err
	}
	defer g.Release()

	for {
		select {
		case <-ctx.Done():
			return c.Region(), ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return g.commit(), nil
			}
			switch ev.Kind {
			case EventUp:
				return g.commit(), nil
			case EventCancel:
				return c.Cancel(), nil
			case EventMove:
				p, ok := ev.Position()
				if !ok {
					continue
				}
				r, err := g.Move(p, container)
				if err != nil {
					return r, err
				}
				if onUpdate != nil {
					onUpdate(r)
				}
			}
		}
	}
}
