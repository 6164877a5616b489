package imgutil

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

const dataURLScheme = "data:"

// EncodeDataURL は画像データを data:<mime>;base64,... 形式の文字列にします。
func EncodeDataURL(data []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return dataURLScheme + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL は data URL（またはヘッダーなしの base64 文字列）を画像データと MIME タイプに戻します。
// MIME タイプが書かれていない場合は中身から判定します。
func DecodeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	payload := s
	mimeType := ""

	if strings.HasPrefix(s, dataURLScheme) {
		header, body, ok := strings.Cut(strings.TrimPrefix(s, dataURLScheme), ",")
		if !ok {
			return nil, "", fmt.Errorf("data URL にデータ部がありません")
		}
		if !strings.HasSuffix(header, ";base64") {
			return nil, "", fmt.Errorf("base64 以外の data URL には対応していません")
		}
		mimeType = strings.TrimSuffix(header, ";base64")
		payload = body
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("base64 のデコードに失敗しました: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("画像データが空です")
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}
