package server

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/shouni/gemini-image-editor/pkg/domain"
)

// storageRoot は HTTP API から読み書きできる保存先を 1 か所に閉じ込めます。
// ルートはローカルディレクトリか gs://bucket/prefix、s3://bucket/prefix のいずれかです。
// 空の場合、サーバー側の保存先は一切使えません。
type storageRoot struct {
	root   string
	remote bool
}

func newStorageRoot(root string) storageRoot {
	root = strings.TrimSpace(root)
	remote := isRemoteURI(root)
	if remote {
		root = strings.TrimRight(root, "/")
	} else if root != "" {
		root = filepath.Clean(root)
	}
	return storageRoot{root: root, remote: remote}
}

func isRemoteURI(uri string) bool {
	return strings.HasPrefix(uri, "gs://") || strings.HasPrefix(uri, "s3://")
}

// resolve はクライアントが指定した相対パスをルート配下の URI に変換します。
// 絶対パス、ルート外を指す ".."、別のスキームはすべて InputError になります。
// リモートのルートでは、ルート配下を指す完全な URI も受け付けます。
func (s storageRoot) resolve(field, uri string) (string, error) {
	reject := func(reason string) error {
		return &domain.InputError{Field: field, Reason: fmt.Sprintf("%s: %q", reason, uri)}
	}
	if s.root == "" {
		return "", reject("サーバー側の保存先が設定されていません")
	}

	rel := strings.TrimSpace(uri)
	if s.remote && strings.HasPrefix(rel, s.root+"/") {
		rel = strings.TrimPrefix(rel, s.root+"/")
	}
	if rel == "" {
		return "", reject("保存先のパスが空です")
	}
	if strings.Contains(rel, "://") || strings.Contains(rel, ":") || strings.ContainsRune(rel, 0) {
		return "", reject("保存先ルート外の URI は指定できません")
	}

	slashed := strings.ReplaceAll(rel, `\`, "/")
	if path.IsAbs(slashed) || filepath.IsAbs(rel) {
		return "", reject("絶対パスは指定できません")
	}
	cleaned := path.Clean(slashed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", reject("保存先ルートの外は指定できません")
	}

	if s.remote {
		return s.root + "/" + cleaned, nil
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}
