package generator

import "testing"

func TestSeedUtils(t *testing.T) {
	t.Run("dereferenceSeed: nil の場合は 0 を返すのだ", func(t *testing.T) {
		if got := dereferenceSeed(nil); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("dereferenceSeed: 値がある場合はその値を返すのだ", func(t *testing.T) {
		var val int64 = 999
		if got := dereferenceSeed(&val); got != 999 {
			t.Errorf("expected 999, got %v", got)
		}
	})
}

func TestURIKinds(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		wantHTTP bool
		wantData bool
	}{
		{"HTTPS URL", "https://example.com/a.png", true, false},
		{"大文字のスキーム", "HTTP://example.com/a.png", true, false},
		{"GCS URI", "gs://bucket/a.png", false, false},
		{"S3 URI", "s3://bucket/a.png", false, false},
		{"ローカルパス", "./images/a.png", false, false},
		{"data URL", "data:image/png;base64,AAAA", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isHTTPURL(tt.uri); got != tt.wantHTTP {
				t.Errorf("isHTTPURL(%q) = %v, want %v", tt.uri, got, tt.wantHTTP)
			}
			if got := isDataURL(tt.uri); got != tt.wantData {
				t.Errorf("isDataURL(%q) = %v, want %v", tt.uri, got, tt.wantData)
			}
		})
	}
}
