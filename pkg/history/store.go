package history

import "github.com/shouni/gemini-image-editor/pkg/domain"

// Store は生成結果の線形な取り消し・やり直し履歴です。
// ゼロ値は空の履歴としてそのまま使えます。
// 排他制御は所有者（editor.Session）が行います。
type Store struct {
	entries []domain.HistoryEntry
	// pos は表示中の項目の次の位置。0 は元画像を表示している状態
	pos int
}

// New は空の履歴を返します。
func New() *Store {
	return &Store{}
}

// Append は現在位置より後ろを捨ててから entry を追加し、末尾へ移動します。
func (s *Store) Append(entry domain.HistoryEntry) {
	s.entries = append(s.entries[:s.pos], entry)
	s.pos = len(s.entries)
}

// Undo は 1 つ前へ戻ります。移動後の項目（元画像なら nil）と移動したかどうかを返します。
func (s *Store) Undo() (*domain.HistoryEntry, bool) {
	if !s.CanUndo() {
		return s.Current(), false
	}
	s.pos--
	return s.Current(), true
}

// Redo は 1 つ先へ進みます。
func (s *Store) Redo() (*domain.HistoryEntry, bool) {
	if !s.CanRedo() {
		return s.Current(), false
	}
	s.pos++
	return s.Current(), true
}

// Reset は履歴を空にします。新しい元画像を読み込んだときに使います。
func (s *Store) Reset() {
	s.entries = nil
	s.pos = 0
}

// Current は現在位置の項目を返します。元画像表示中は nil です。
func (s *Store) Current() *domain.HistoryEntry {
	if s.pos <= 0 || s.pos > len(s.entries) {
		return nil
	}
	e := s.entries[s.pos-1]
	return &e
}

// Cursor は表示中の項目の添字を返します。元画像表示中は -1 です。
func (s *Store) Cursor() int   { return s.pos - 1 }
func (s *Store) Len() int      { return len(s.entries) }
func (s *Store) CanUndo() bool { return s.pos > 0 }
func (s *Store) CanRedo() bool { return s.pos < len(s.entries) }

// Entries は履歴のコピーを返します。
func (s *Store) Entries() []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
