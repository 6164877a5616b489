package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shouni/gemini-image-editor/pkg/crop"
	"github.com/shouni/gemini-image-editor/pkg/editor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialGesture(t *testing.T, env *testEnv) (*websocket.Conn, string, func()) {
	t.Helper()
	ts := httptest.NewServer(env.server.Handler())
	id := env.createSession(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/sessions/" + id + "/crop/gesture"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn, id, func() {
		conn.Close()
		ts.Close()
	}
}

func readUpdate(t *testing.T, conn *websocket.Conn) gestureUpdate {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var u gestureUpdate
	require.NoError(t, conn.ReadJSON(&u))
	return u
}

func mouseEvent(kind crop.EventKind, x, y float64) crop.PointerEvent {
	return crop.PointerEvent{Kind: kind, Source: crop.SourceMouse, ClientX: x, ClientY: y}
}

func sessionState(t *testing.T, env *testEnv, id string) editor.View {
	t.Helper()
	return decodeViewFromGet(t, env, "/api/sessions/"+id)
}

func TestServer_Gesture(t *testing.T) {
	container := crop.Size{Width: 500, Height: 500}

	t.Run("ドラッグの途中経過と終了を返すのだ", func(t *testing.T) {
		env := newTestEnv(t)
		conn, id, closeFn := dialGesture(t, env)
		defer closeFn()

		require.NoError(t, conn.WriteJSON(gestureMessage{
			Type: "start", Action: crop.ActionMove, Container: container,
			Event: mouseEvent(crop.EventDown, 100, 100),
		}))
		require.NoError(t, conn.WriteJSON(gestureMessage{Type: "pointer", Event: mouseEvent(crop.EventMove, 125, 100)}))

		u := readUpdate(t, conn)
		assert.Equal(t, "region", u.Type)
		assert.Equal(t, crop.StateDragging, u.State)
		assert.InDelta(t, 15.0, u.Region.X, 1e-9)

		require.NoError(t, conn.WriteJSON(gestureMessage{Type: "pointer", Event: mouseEvent(crop.EventUp, 125, 100)}))
		u = readUpdate(t, conn)
		assert.Equal(t, "end", u.Type)
		assert.Equal(t, crop.StateIdle, u.State)
		assert.InDelta(t, 15.0, u.Region.X, 1e-9)

		v := sessionState(t, env, id)
		assert.InDelta(t, 15.0, v.CropRegion.X, 1e-9)
		assert.Equal(t, crop.StateIdle, v.CropState)
	})

	t.Run("接続が切れてもドラッグは解放されるのだ", func(t *testing.T) {
		env := newTestEnv(t)
		conn, id, closeFn := dialGesture(t, env)
		defer closeFn()

		require.NoError(t, conn.WriteJSON(gestureMessage{
			Type: "start", Action: crop.ActionResizeE, Container: container,
			Event: mouseEvent(crop.EventDown, 100, 100),
		}))
		require.NoError(t, conn.WriteJSON(gestureMessage{Type: "pointer", Event: mouseEvent(crop.EventMove, 150, 100)}))
		assert.Equal(t, "region", readUpdate(t, conn).Type)
		require.NoError(t, conn.Close())

		assert.Eventually(t, func() bool {
			return sessionState(t, env, id).CropState == crop.StateIdle
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("開始前のポインターと不明なメッセージはエラーを返すのだ", func(t *testing.T) {
		env := newTestEnv(t)
		conn, _, closeFn := dialGesture(t, env)
		defer closeFn()

		require.NoError(t, conn.WriteJSON(gestureMessage{Type: "pointer", Event: mouseEvent(crop.EventMove, 1, 1)}))
		assert.Equal(t, "error", readUpdate(t, conn).Type)

		require.NoError(t, conn.WriteJSON(gestureMessage{Type: "zoom"}))
		assert.Equal(t, "error", readUpdate(t, conn).Type)
	})

	t.Run("サイズ0の表示領域ではドラッグを開始しないのだ", func(t *testing.T) {
		env := newTestEnv(t)
		conn, _, closeFn := dialGesture(t, env)
		defer closeFn()

		require.NoError(t, conn.WriteJSON(gestureMessage{
			Type: "start", Action: crop.ActionMove, Event: mouseEvent(crop.EventDown, 0, 0),
		}))
		u := readUpdate(t, conn)
		assert.Equal(t, "error", u.Type)
		assert.Equal(t, crop.StateIdle, u.State)
	})

	t.Run("WebSocket 以外のリクエストは拒否するのだ", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.createSession(t)
		rr := env.do(t, http.MethodGet, "/api/sessions/"+id+"/crop/gesture", "", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
