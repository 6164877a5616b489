package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shouni/gemini-image-editor/pkg/editor"
	"github.com/shouni/gemini-image-editor/pkg/generator"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

const defaultMaxUploadBytes = 20 << 20

// Server は編集セッションを HTTP API と WebSocket で公開します。
type Server struct {
	sessions       *editor.Manager
	loader         generator.SourceLoader
	writer         remoteio.OutputWriter
	mux            *http.ServeMux
	upgrader       websocket.Upgrader
	maxUploadBytes int64
	storage        storageRoot
}

// Option は Server の任意設定です。
type Option func(*Server)

// WithMaxUploadBytes はアップロードされる元画像の上限サイズを設定します。
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithStorageRoot は API から読み込み・書き出しできる保存先のルートを設定します。
// 指定しない場合、URI による読み込みは http(s) と data URL に限られ、書き出しはできません。
func WithStorageRoot(root string) Option {
	return func(s *Server) {
		s.storage = newStorageRoot(root)
	}
}

// New は依存関係を注入して Server を初期化します。
func New(sessions *editor.Manager, loader generator.SourceLoader, writer remoteio.OutputWriter, opts ...Option) (*Server, error) {
	if sessions == nil {
		return nil, fmt.Errorf("sessions is required")
	}
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if writer == nil {
		return nil, fmt.Errorf("writer is required")
	}

	s := &Server{
		sessions: sessions,
		loader:   loader,
		writer:   writer,
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		maxUploadBytes: defaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/presets", s.handlePresets)
	s.mux.HandleFunc("GET /api/aspect-ratios", s.handleAspectRatios)

	s.mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /api/sessions/{id}", s.withSession(s.handleGetSession))
	s.mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)

	s.mux.HandleFunc("PUT /api/sessions/{id}/source", s.withSession(s.handlePutSource))
	s.mux.HandleFunc("GET /api/sessions/{id}/source", s.withSession(s.handleGetSource))
	s.mux.HandleFunc("DELETE /api/sessions/{id}/source", s.withSession(s.handleDeleteSource))
	s.mux.HandleFunc("PUT /api/sessions/{id}/prompt", s.withSession(s.handlePutPrompt))
	s.mux.HandleFunc("PUT /api/sessions/{id}/settings", s.withSession(s.handlePutSettings))

	s.mux.HandleFunc("POST /api/sessions/{id}/generate", s.withSession(s.handleGenerate))
	s.mux.HandleFunc("POST /api/sessions/{id}/undo", s.withSession(s.handleUndo))
	s.mux.HandleFunc("POST /api/sessions/{id}/redo", s.withSession(s.handleRedo))
	s.mux.HandleFunc("GET /api/sessions/{id}/result", s.withSession(s.handleGetResult))
	s.mux.HandleFunc("POST /api/sessions/{id}/export", s.withSession(s.handleExport))

	s.mux.HandleFunc("POST /api/sessions/{id}/crop/suggest", s.withSession(s.handleCropSuggest))
	s.mux.HandleFunc("POST /api/sessions/{id}/crop/confirm", s.withSession(s.handleCropConfirm))
	s.mux.HandleFunc("POST /api/sessions/{id}/crop/cancel", s.withSession(s.handleCropCancel))
	s.mux.HandleFunc("GET /api/sessions/{id}/crop/gesture", s.withSession(s.handleGesture))
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe は addr で待ち受け、ctx が終了したらシャットダウンします。
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP サーバーを起動しました", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("HTTP サーバーを停止します")
		return httpServer.Shutdown(shutdownCtx)
	}
}
