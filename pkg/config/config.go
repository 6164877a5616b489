package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shouni/gemini-image-editor/pkg/domain"
	"gopkg.in/yaml.v3"
)

// 保存先バックエンド
const (
	StorageLocal = "local"
	StorageGCS   = "gcs"
	StorageS3    = "s3"
)

// 環境変数名
const (
	EnvAPIKey         = "GEMINI_API_KEY"
	EnvModel          = "IMAGE_EDITOR_MODEL"
	EnvAddr           = "IMAGE_EDITOR_ADDR"
	EnvAspectRatio    = "IMAGE_EDITOR_ASPECT_RATIO"
	EnvStorage        = "IMAGE_EDITOR_STORAGE"
	EnvStorageRoot    = "IMAGE_EDITOR_STORAGE_ROOT"
	EnvLogFile        = "IMAGE_EDITOR_LOG_FILE"
	EnvCompressSource = "IMAGE_EDITOR_COMPRESS_SOURCE"
	EnvSessionTTL     = "IMAGE_EDITOR_SESSION_TTL"
)

// Config はアプリケーション全体の設定です。
// 既定値 → 設定ファイル (YAML) → 環境変数 → コマンドラインフラグの順に上書きされます。
type Config struct {
	APIKey             string        `yaml:"apiKey"`
	Model              string        `yaml:"model"`
	Addr               string        `yaml:"addr"`
	AspectRatio        string        `yaml:"aspectRatio"`
	CompressSource     bool          `yaml:"compressSource"`
	CompressionQuality int           `yaml:"compressionQuality"`
	FetchTimeout       time.Duration `yaml:"fetchTimeout"`
	SourceCacheTTL     time.Duration `yaml:"sourceCacheTTL"`
	SessionTTL         time.Duration `yaml:"sessionTTL"`
	MaxUploadBytes     int64         `yaml:"maxUploadBytes"`
	Storage            string        `yaml:"storage"`
	// StorageRoot は HTTP API から読み書きできる保存先のルート（ディレクトリまたは gs://、s3:// のプレフィックス）。
	// 空なら API からのパス指定の読み込みと書き出しは無効
	StorageRoot string `yaml:"storageRoot"`
	LogFile     string `yaml:"logFile"`
	MaxRetries  uint64 `yaml:"maxRetries"`
}

// Default は既定値の設定を返します。
func Default() Config {
	return Config{
		Model:              "gemini-2.5-flash-image",
		Addr:               ":8080",
		AspectRatio:        string(domain.DefaultAspectRatio),
		CompressionQuality: 75,
		FetchTimeout:       30 * time.Second,
		SourceCacheTTL:     10 * time.Minute,
		SessionTTL:         time.Hour,
		MaxUploadBytes:     20 << 20,
		Storage:            StorageLocal,
		MaxRetries:         1,
	}
}

// Load は既定値に設定ファイル（path が空なら省略）と環境変数を重ねた設定を返します。
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("設定ファイルの読み込みに失敗しました: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("設定ファイルの解析に失敗しました (%s): %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		EnvAPIKey:      &c.APIKey,
		EnvModel:       &c.Model,
		EnvAddr:        &c.Addr,
		EnvAspectRatio: &c.AspectRatio,
		EnvStorage:     &c.Storage,
		EnvStorageRoot: &c.StorageRoot,
		EnvLogFile:     &c.LogFile,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup(EnvCompressSource); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s の値が不正です: %w", EnvCompressSource, err)
		}
		c.CompressSource = b
	}
	if v, ok := lookup(EnvSessionTTL); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s の値が不正です: %w", EnvSessionTTL, err)
		}
		c.SessionTTL = d
	}
	return nil
}

// Validate は設定値の組み合わせを検証します。API キーの有無はサブコマンド側で確認します。
func (c Config) Validate() error {
	var errs []error
	if _, err := domain.ParseAspectRatio(c.AspectRatio); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Storage) {
	case StorageLocal, StorageGCS, StorageS3:
	default:
		errs = append(errs, fmt.Errorf("未対応の保存先です: %q (local, gcs, s3)", c.Storage))
	}
	if err := c.validateStorageRoot(); err != nil {
		errs = append(errs, err)
	}
	if c.CompressionQuality < 1 || c.CompressionQuality > 100 {
		errs = append(errs, fmt.Errorf("JPEG 品質は 1〜100 で指定してください: %d", c.CompressionQuality))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("fetchTimeout は正の値で指定してください: %s", c.FetchTimeout))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("sessionTTL は正の値で指定してください: %s", c.SessionTTL))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("maxUploadBytes は正の値で指定してください: %d", c.MaxUploadBytes))
	}
	if c.Model == "" {
		errs = append(errs, errors.New("model が空です"))
	}
	return errors.Join(errs...)
}

// validateStorageRoot は保存先ルートが保存先バックエンドと一致しているかを確認します。
func (c Config) validateStorageRoot() error {
	root := strings.TrimSpace(c.StorageRoot)
	if root == "" {
		return nil
	}
	switch strings.ToLower(c.Storage) {
	case StorageGCS:
		if !strings.HasPrefix(root, "gs://") {
			return fmt.Errorf("storage が gcs の場合、storageRoot は gs:// で始めてください: %q", root)
		}
	case StorageS3:
		if !strings.HasPrefix(root, "s3://") {
			return fmt.Errorf("storage が s3 の場合、storageRoot は s3:// で始めてください: %q", root)
		}
	default:
		if strings.Contains(root, "://") {
			return fmt.Errorf("storage が local の場合、storageRoot はディレクトリで指定してください: %q", root)
		}
	}
	return nil
}

// DefaultAspectRatio は検証済みのアスペクト比を返します。
func (c Config) DefaultAspectRatio() domain.AspectRatio {
	a, err := domain.ParseAspectRatio(c.AspectRatio)
	if err != nil {
		return domain.DefaultAspectRatio
	}
	return a
}
