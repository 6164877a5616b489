package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options はロガーの設定です。
type Options struct {
	Verbose bool
	// LogFile が空でなければ、標準エラーに加えてローテーションするファイルにも書き出す
	LogFile string
}

// Setup は slog の既定ロガーを設定します。戻り値の Closer はログファイルを閉じます。
func Setup(opts Options) io.Closer {
	logger, closer := New(os.Stderr, opts)
	slog.SetDefault(logger)
	return closer
}

// New は w（と必要ならログファイル）へ書き出すロガーを作ります。
func New(w io.Writer, opts Options) (*slog.Logger, io.Closer) {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	var closer io.Closer = nopCloser{}
	if opts.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    10, // MB
			MaxBackups: 2,
			MaxAge:     28, // days
			Compress:   true,
		}
		w = io.MultiWriter(w, file)
		closer = file
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
