package editor

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/shouni/gemini-image-editor/pkg/generator"
)

// ErrSessionNotFound は指定された ID のセッションが存在しない（または期限切れ）ことを示します。
var ErrSessionNotFound = errors.New("セッションが見つかりません")

// Manager はセッションを ID で管理します。一定時間使われなかったセッションは破棄されます。
type Manager struct {
	editor   generator.ImageEditor
	sessions *cache.Cache
	opts     []Option
}

// NewManager は idleTTL だけ使われなかったセッションを破棄する Manager を作ります。
func NewManager(editor generator.ImageEditor, idleTTL time.Duration, opts ...Option) (*Manager, error) {
	if editor == nil {
		return nil, fmt.Errorf("editor (generator.ImageEditor) is required")
	}
	if idleTTL <= 0 {
		return nil, fmt.Errorf("idleTTL must be positive: %s", idleTTL)
	}
	return &Manager{
		editor:   editor,
		sessions: cache.New(idleTTL, idleTTL/2),
		opts:     opts,
	}, nil
}

// Create は新しいセッションを作って登録します。
func (m *Manager) Create() (*Session, error) {
	s, err := NewSession(uuid.NewString(), m.editor, m.opts...)
	if err != nil {
		return nil, err
	}
	m.sessions.Set(s.ID(), s, cache.DefaultExpiration)
	return s, nil
}

// Get は ID のセッションを返し、有効期限を延長します。
func (m *Manager) Get(id string) (*Session, error) {
	val, ok := m.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s, ok := val.(*Session)
	if !ok {
		return nil, ErrSessionNotFound
	}
	m.sessions.Set(id, s, cache.DefaultExpiration)
	return s, nil
}

// Delete はセッションを破棄します。
func (m *Manager) Delete(id string) {
	m.sessions.Delete(id)
}

// Count は保持しているセッション数です。
func (m *Manager) Count() int {
	return m.sessions.ItemCount()
}
