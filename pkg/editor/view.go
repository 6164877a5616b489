package editor

import (
	"github.com/shouni/gemini-image-editor/pkg/crop"
	"github.com/shouni/gemini-image-editor/pkg/domain"
	"github.com/shouni/gemini-image-editor/pkg/imgutil"
)

// View は表示層に渡すセッションの読み取り専用スナップショットです。
type View struct {
	ID          string             `json:"id"`
	HasSource   bool               `json:"hasSource"`
	SourceName  string             `json:"sourceName,omitempty"`
	Prompt      string             `json:"prompt"`
	AspectRatio domain.AspectRatio `json:"aspectRatio"`
	Seed        *int64             `json:"seed,omitempty"`
	Busy        bool               `json:"busy"`
	Error       string             `json:"error,omitempty"`
	Cursor      int                `json:"cursor"`
	HistoryLen  int                `json:"historyLength"`
	CanUndo     bool               `json:"canUndo"`
	CanRedo     bool               `json:"canRedo"`
	Result      string             `json:"result,omitempty"` // data URL
	UsedSeed    *int64             `json:"usedSeed,omitempty"`
	CropRegion  crop.Region        `json:"cropRegion"`
	CropState   crop.State         `json:"cropState"`
}

// Snapshot は現在の状態をまとめて返します。
func (s *Session) Snapshot() View {
	s.mu.Lock()
	v := View{
		ID:          s.id,
		HasSource:   s.source.Loaded(),
		Prompt:      s.prompt,
		AspectRatio: s.aspect,
		Busy:        s.busy,
		Error:       s.lastErr,
		Cursor:      s.history.Cursor(),
		HistoryLen:  s.history.Len(),
		CanUndo:     s.history.CanUndo(),
		CanRedo:     s.history.CanRedo(),
	}
	if s.source != nil {
		v.SourceName = s.source.Name
	}
	if s.seed != nil {
		seed := *s.seed
		v.Seed = &seed
	}
	if e := s.history.Current(); e != nil && e.Image != nil {
		v.Result = imgutil.EncodeDataURL(e.Image.Data, e.Image.MimeType)
		used := e.Image.UsedSeed
		v.UsedSeed = &used
	}
	s.mu.Unlock()

	v.CropRegion = s.crop.Region()
	v.CropState = s.crop.State()
	return v
}
