package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shouni/gemini-image-editor/pkg/config"
	"github.com/shouni/gemini-image-editor/pkg/crop"
	"github.com/shouni/gemini-image-editor/pkg/domain"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegion(t *testing.T) {
	t.Run("百分率の4値を範囲に変換するのだ", func(t *testing.T) {
		r, err := parseRegion("10, 20, 30.5, 40")
		require.NoError(t, err)
		assert.Equal(t, crop.Region{X: 10, Y: 20, Width: 30.5, Height: 40}, r)
	})

	invalid := map[string]string{
		"値が足りない":  "10,20,30",
		"数値でない":   "a,b,c,d",
		"はみ出している": "50,50,60,10",
		"最小サイズ未満": "0,0,5,5",
	}
	for name, in := range invalid {
		t.Run(name+"場合は入力エラーなのだ", func(t *testing.T) {
			_, err := parseRegion(in)
			var inErr *domain.InputError
			assert.ErrorAs(t, err, &inErr)
		})
	}
}

func TestPrintCatalog(t *testing.T) {
	t.Run("すべてのプリセットとアスペクト比を表示するのだ", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printCatalog(&buf))
		out := buf.String()
		for _, p := range domain.Presets() {
			assert.Contains(t, out, p.Key)
		}
		assert.Contains(t, out, "3:4 (既定)")
		assert.True(t, strings.HasPrefix(out, "KEY"))
	})
}

func TestApplyPersistentFlags(t *testing.T) {
	t.Run("指定されたフラグだけを上書きするのだ", func(t *testing.T) {
		c := &cobra.Command{Use: "test"}
		addAppPersistentFlags(c)
		require.NoError(t, c.ParseFlags([]string{"--storage", "gcs"}))

		cfg := config.Default()
		cfg.Model = "from-config"
		applyPersistentFlags(c, &cfg)
		assert.Equal(t, config.StorageGCS, cfg.Storage)
		assert.Equal(t, "from-config", cfg.Model)
	})
}
