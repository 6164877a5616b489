package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/shouni/gemini-image-editor/pkg/crop"
	"github.com/shouni/gemini-image-editor/pkg/editor"
)

// gestureMessage はクライアントから届くメッセージです。
// "start" でドラッグを開始し、以降の "pointer" を pointer-up / cancel まで流します。
type gestureMessage struct {
	Type      string            `json:"type"`
	Action    crop.Action       `json:"action,omitempty"`
	Container crop.Size         `json:"container"`
	Event     crop.PointerEvent `json:"event"`
}

// gestureUpdate はサーバーから返すメッセージです。
type gestureUpdate struct {
	Type   string      `json:"type"` // region, end, error
	Region crop.Region `json:"region"`
	State  crop.State  `json:"state"`
	Error  string      `json:"error,omitempty"`
}

type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) send(v gestureUpdate) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.conn.WriteJSON(v); err != nil {
		slog.Debug("ジェスチャー結果の送信に失敗しました", "error", err)
	}
}

// tracker は 1 回のドラッグを処理している Track への入力です。
type tracker struct {
	events chan crop.PointerEvent
	done   chan struct{}
}

// handleGesture はポインター操作のストリームを切り抜きコントローラーに流します。
// 接続が切れた場合も、処理中のドラッグは必ず解放されます。
func (s *Server) handleGesture(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket へのアップグレードに失敗しました", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	out := &wsWriter{conn: conn}
	ctrl := sess.Crop()

	var cur *tracker
	endCurrent := func() {
		if cur == nil {
			return
		}
		close(cur.events)
		<-cur.done
		cur = nil
	}
	defer endCurrent()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("ジェスチャー接続が切断されました", "session", sess.ID(), "error", err)
			}
			return
		}
		var msg gestureMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			out.send(gestureUpdate{Type: "error", Region: ctrl.Region(), State: ctrl.State(), Error: err.Error()})
			continue
		}

		switch msg.Type {
		case "start":
			endCurrent()
			cur = &tracker{events: make(chan crop.PointerEvent), done: make(chan struct{})}
			go func(t *tracker, msg gestureMessage) {
				defer close(t.done)
				region, err := ctrl.Track(ctx, msg.Action, msg.Event, msg.Container, t.events, func(r crop.Region) {
					out.send(gestureUpdate{Type: "region", Region: r, State: crop.StateDragging})
				})
				if err != nil {
					out.send(gestureUpdate{Type: "error", Region: region, State: ctrl.State(), Error: err.Error()})
					return
				}
				out.send(gestureUpdate{Type: "end", Region: region, State: ctrl.State()})
			}(cur, msg)

		case "pointer":
			if cur == nil {
				out.send(gestureUpdate{Type: "error", Region: ctrl.Region(), State: ctrl.State(), Error: "ドラッグが開始されていません"})
				continue
			}
			select {
			case cur.events <- msg.Event:
				if msg.Event.Kind == crop.EventUp || msg.Event.Kind == crop.EventCancel {
					<-cur.done
					cur = nil
				}
			case <-cur.done:
				// Track はすでに終了している（エラーなど）
				cur = nil
			}

		default:
			out.send(gestureUpdate{Type: "error", Region: ctrl.Region(), State: ctrl.State(), Error: "不明なメッセージです: " + msg.Type})
		}
	}
}
