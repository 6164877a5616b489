package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/gemini-image-editor/pkg/config"
	"github.com/shouni/gemini-image-editor/pkg/generator"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/go-remote-io/pkg/s3factory"
)

// appDeps はサブコマンドが使う依存関係の組です。
type appDeps struct {
	reader remoteio.InputReader
	writer remoteio.OutputWriter
	loader *generator.ImageSourceLoader
	editor *generator.GeminiEditor
	close  func()
}

// buildDeps は設定から Gemini クライアント、取得クライアント、保存先を組み立てます。
func buildDeps(ctx context.Context, cfg config.Config) (*appDeps, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API キーが設定されていません (%s)", config.EnvAPIKey)
	}

	reader, writer, closeStorage, err := newStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	aiClient, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:     cfg.APIKey,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		closeStorage()
		return nil, fmt.Errorf("Gemini クライアントの初期化に失敗しました: %w", err)
	}

	var editorOpts []generator.EditorOption
	if cfg.CompressSource {
		editorOpts = append(editorOpts, generator.WithSourceCompression(cfg.CompressionQuality))
	}
	ed, err := generator.NewGeminiEditor(aiClient, cfg.Model, editorOpts...)
	if err != nil {
		closeStorage()
		return nil, err
	}

	sourceCache := cache.New(cfg.SourceCacheTTL, 2*cfg.SourceCacheTTL)
	loader, err := generator.NewImageSourceLoader(reader, httpkit.New(cfg.FetchTimeout), sourceCache, cfg.SourceCacheTTL)
	if err != nil {
		closeStorage()
		return nil, err
	}

	return &appDeps{
		reader: reader,
		writer: writer,
		loader: loader,
		editor: ed,
		close:  closeStorage,
	}, nil
}

// newStorage は保存先に応じたリーダーとライターを返します。
// local はローカルパスのみ、gcs と s3 はそれぞれのクライアントを持つファクトリーから作ります。
func newStorage(ctx context.Context, backend string) (remoteio.InputReader, remoteio.OutputWriter, func(), error) {
	var (
		factory remoteio.IOFactory
		err     error
	)
	switch strings.ToLower(backend) {
	case config.StorageGCS:
		factory, err = gcsfactory.New(ctx)
	case config.StorageS3:
		factory, err = s3factory.New(ctx)
	default:
		return remoteio.NewUniversalInputReader(nil, nil), remoteio.NewUniversalIOWriter(nil, nil), func() {}, nil
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s ファクトリーの初期化に失敗しました: %w", backend, err)
	}

	closeFactory := func() {
		if err := factory.Close(); err != nil {
			slog.Warn("ストレージクライアントのクローズに失敗しました", "storage", backend, "error", err)
		}
	}
	reader, rErr := factory.InputReader()
	writer, wErr := factory.OutputWriter()
	if err := errors.Join(rErr, wErr); err != nil {
		closeFactory()
		return nil, nil, nil, fmt.Errorf("%s の入出力の初期化に失敗しました: %w", backend, err)
	}
	return reader, writer, closeFactory, nil
}
