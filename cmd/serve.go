package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shouni/gemini-image-editor/pkg/editor"
	"github.com/shouni/gemini-image-editor/pkg/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "画像編集 API (HTTP / WebSocket) を起動します",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "待ち受けアドレス (既定: 設定値)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := appConfig
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	deps, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.close()

	sessions, err := editor.NewManager(deps.editor, cfg.SessionTTL, editor.WithAspectRatio(cfg.DefaultAspectRatio()))
	if err != nil {
		return fmt.Errorf("セッション管理の初期化に失敗しました: %w", err)
	}
	srv, err := server.New(sessions, deps.loader, deps.writer,
		server.WithMaxUploadBytes(cfg.MaxUploadBytes),
		server.WithStorageRoot(cfg.StorageRoot),
	)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, cfg.Addr)
}
