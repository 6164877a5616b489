package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("verbose でなければ debug は出力しないのだ", func(t *testing.T) {
		buf := new(bytes.Buffer)
		logger, closer := New(buf, Options{})
		defer closer.Close()

		logger.Debug("hidden")
		logger.Info("shown", "key", "value")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "key=value")
	})

	t.Run("verbose なら debug も出力するのだ", func(t *testing.T) {
		buf := new(bytes.Buffer)
		logger, closer := New(buf, Options{Verbose: true})
		defer closer.Close()

		logger.Debug("visible")
		assert.Contains(t, buf.String(), "visible")
	})

	t.Run("ログファイルにも書き出すのだ", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "editor.log")
		buf := new(bytes.Buffer)
		logger, closer := New(buf, Options{LogFile: path})

		logger.Info("to file")
		require.NoError(t, closer.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "to file")
		assert.Contains(t, buf.String(), "to file")
	})
}
