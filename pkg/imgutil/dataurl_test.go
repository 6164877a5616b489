package imgutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataURL(t *testing.T) {
	pngData := createDummyImageData(t, "png", 4, 4)

	t.Run("エンコードした data URL を元に戻せるのだ", func(t *testing.T) {
		url := EncodeDataURL(pngData, "image/png")
		assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

		data, mimeType, err := DecodeDataURL(url)
		require.NoError(t, err)
		assert.Equal(t, "image/png", mimeType)
		assert.Equal(t, pngData, data)
	})

	t.Run("MIME タイプが空なら中身から判定するのだ", func(t *testing.T) {
		url := EncodeDataURL(pngData, "")
		assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
	})

	t.Run("ヘッダーなしの base64 も受け付けるのだ", func(t *testing.T) {
		url := EncodeDataURL(pngData, "image/png")
		_, body, _ := strings.Cut(url, ",")
		data, mimeType, err := DecodeDataURL(body)
		require.NoError(t, err)
		assert.Equal(t, "image/png", mimeType)
		assert.Equal(t, pngData, data)
	})

	t.Run("不正な data URL はエラーになるのだ", func(t *testing.T) {
		for _, in := range []string{"data:image/png;base64", "data:text/plain,hello", "%%%", ""} {
			_, _, err := DecodeDataURL(in)
			assert.Error(t, err, in)
		}
	})
}
