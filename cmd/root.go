package cmd

import (
	"fmt"
	"io"

	"github.com/shouni/gemini-image-editor/pkg/config"
	"github.com/shouni/gemini-image-editor/pkg/logging"
	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"
)

const appName = "gemini-image-editor"

var (
	// appConfig は PersistentPreRunE で読み込まれ、各サブコマンドから参照される設定です。
	appConfig config.Config
	logCloser io.Closer

	storageFlag string
	logFileFlag string
	modelFlag   string
)

// addAppPersistentFlags はアプリ固有の永続フラグを登録します。
func addAppPersistentFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVar(&storageFlag, "storage", "", "リモート保存先 (local, gcs, s3)")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "ログを書き出すファイル (ローテーションあり)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "画像編集に使う Gemini モデル")
}

// initAppPreRunE は設定を読み込み、ロガーを初期化します。
func initAppPreRunE(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(clibase.Flags.ConfigFile)
	if err != nil {
		return err
	}
	applyPersistentFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("設定が不正です: %w", err)
	}

	logCloser = logging.Setup(logging.Options{
		Verbose: clibase.Flags.Verbose,
		LogFile: cfg.LogFile,
	})
	appConfig = cfg
	return nil
}

// applyPersistentFlags は明示的に指定されたフラグだけを設定へ上書きします。
func applyPersistentFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("storage") {
		cfg.Storage = storageFlag
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFileFlag
	}
	if flags.Changed("model") {
		cfg.Model = modelFlag
	}
}

// Execute はルートコマンドを実行します。
func Execute() {
	defer func() {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	}()
	clibase.Execute(appName, addAppPersistentFlags, initAppPreRunE,
		serveCmd,
		editCmd,
		presetsCmd,
	)
}
