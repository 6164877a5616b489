package generator

import "strings"

// dereferenceSeed は *int64 を安全に int64 に変換するのだ。
// nil の場合はデフォルト値（0）を返すのだよ。
func dereferenceSeed(s *int64) int64 {
	if s == nil {
		return 0
	}
	return *s
}

// isHTTPURL は go-http-kit で取得する URL かどうかを判定するのだ。
func isHTTPURL(uri string) bool {
	lower := strings.ToLower(uri)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// isDataURL は data URL かどうかを判定するのだ。
func isDataURL(uri string) bool {
	return strings.HasPrefix(strings.ToLower(uri), "data:")
}
