package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shouni/gemini-image-editor/pkg/crop"
	"github.com/shouni/gemini-image-editor/pkg/domain"
	"github.com/shouni/gemini-image-editor/pkg/generator"
	"github.com/shouni/gemini-image-editor/pkg/history"
	"github.com/shouni/gemini-image-editor/pkg/imgutil"
	"golang.org/x/sync/semaphore"
)

// ErrSourceReplaced は生成中に元画像が差し替えられたため、結果を捨てたことを示します。
var ErrSourceReplaced = errors.New("生成中に元画像が差し替えられたため結果を破棄しました")

// Session は 1 人の利用者の編集状態（元画像、指示文、履歴、切り抜き範囲）を保持します。
// 状態を守るミューテックスは Gemini の応答待ちの間は保持しないので、
// 生成中でも切り抜き操作や状態の取得はすぐに返ります。
type Session struct {
	id     string
	editor generator.ImageEditor
	gate   *semaphore.Weighted
	crop   *crop.Controller

	mu        sync.Mutex
	source    *domain.SourceImage
	sourceGen uint64
	prompt    string
	aspect    domain.AspectRatio
	seed      *int64
	history   *history.Store
	busy      bool
	lastErr   string
}

// Option は Session の初期設定です。
type Option func(*Session)

// WithAspectRatio は生成時の既定のアスペクト比を指定します。
func WithAspectRatio(a domain.AspectRatio) Option {
	return func(s *Session) {
		if a.Valid() {
			s.aspect = a
		}
	}
}

// NewSession は空のセッションを作ります。
func NewSession(id string, editor generator.ImageEditor, opts ...Option) (*Session, error) {
	if editor == nil {
		return nil, fmt.Errorf("editor (generator.ImageEditor) is required")
	}
	s := &Session{
		id:      id,
		editor:  editor,
		gate:    semaphore.NewWeighted(1),
		crop:    crop.NewController(),
		aspect:  domain.DefaultAspectRatio,
		history: history.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Session) ID() string { return s.id }

// Crop は切り抜き範囲を所有するコントローラーを返します。
func (s *Session) Crop() *crop.Controller { return s.crop }

// SetSource は元画像を差し替え、履歴と切り抜き範囲を作り直します。
func (s *Session) SetSource(src *domain.SourceImage) error {
	if !src.Loaded() {
		return &domain.InputError{Field: "source", Reason: "画像データまたは MIME タイプがありません"}
	}
	copied := *src

	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceSourceLocked(&copied)
	return nil
}

// ClearSource は元画像を取り除きます。
func (s *Session) ClearSource() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceSourceLocked(nil)
}

func (s *Session) replaceSourceLocked(src *domain.SourceImage) {
	s.source = src
	s.sourceGen++
	s.history.Reset()
	s.lastErr = ""
	s.crop.Reset()
}

// Source は現在の元画像を返します。読み込まれていなければ nil です。
func (s *Session) Source() *domain.SourceImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return nil
	}
	copied := *s.source
	return &copied
}

func (s *Session) SetPrompt(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompt = p
}

func (s *Session) Prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompt
}

// ApplyPreset はプリセットの指示文を指示文欄に入れます。
func (s *Session) ApplyPreset(name string) (domain.Preset, error) {
	p, ok := domain.LookupPreset(name)
	if !ok {
		return domain.Preset{}, &domain.InputError{Field: "preset", Reason: fmt.Sprintf("不明なプリセットです: %q", name)}
	}
	s.SetPrompt(p.Instruction)
	return p, nil
}

// SetAspectRatio は生成時のアスペクト比を設定します。空文字は既定値です。
func (s *Session) SetAspectRatio(v string) error {
	a, err := domain.ParseAspectRatio(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aspect = a
	return nil
}

func (s *Session) AspectRatio() domain.AspectRatio {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aspect
}

// SetSeed は生成に使うシードを設定します。nil でランダムです。
func (s *Session) SetSeed(seed *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seed == nil {
		s.seed = nil
		return
	}
	v := *seed
	s.seed = &v
}

// Busy は生成リクエストが処理中かどうかを返します。
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// LastError は直近の生成失敗の表示用メッセージです。
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Generate は現在の元画像と指示文で 1 回だけ生成を行い、成功すれば履歴に追加します。
//
// 元画像がない・指示文が空の場合は *domain.InputError を返し、リクエストは送らず、エラー表示も残しません。
// 別の生成が処理中なら domain.ErrBusy を返します。
// 失敗した場合は表示用メッセージを記録して *domain.GenerationError を返し、履歴は変えません。
func (s *Session) Generate(ctx context.Context) (*domain.HistoryEntry, error) {
	s.mu.Lock()
	src := s.source
	gen := s.sourceGen
	prompt := s.prompt
	aspect := s.aspect
	seed := s.seed
	s.mu.Unlock()

	if !src.Loaded() {
		return nil, &domain.InputError{Field: "source", Reason: "元画像が読み込まれていません"}
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, &domain.InputError{Field: "prompt", Reason: "指示文が空です"}
	}

	if !s.gate.TryAcquire(1) {
		return nil, domain.ErrBusy
	}
	defer s.gate.Release(1)

	s.mu.Lock()
	s.busy = true
	s.lastErr = ""
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	slog.InfoContext(ctx, "画像編集を開始します", "session", s.id, "aspect_ratio", aspect, "prompt_len", len(prompt))

	resp, err := s.editor.EditImage(ctx, domain.EditRequest{
		Source:      src.Data,
		MimeType:    src.MimeType,
		Prompt:      prompt,
		AspectRatio: aspect,
		Seed:        seed,
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.sourceGen {
		slog.WarnContext(ctx, "元画像が差し替えられたため生成結果を破棄します", "session", s.id)
		return nil, ErrSourceReplaced
	}

	if err != nil {
		var inErr *domain.InputError
		if errors.As(err, &inErr) {
			return nil, err
		}
		genErr := domain.NewGenerationError(err)
		s.lastErr = genErr.Message
		slog.WarnContext(ctx, "画像編集に失敗しました", "session", s.id, "error", err)
		return nil, genErr
	}
	if resp == nil || len(resp.Data) == 0 {
		genErr := domain.NewGenerationError(nil)
		s.lastErr = genErr.Message
		return nil, genErr
	}

	entry := domain.HistoryEntry{Image: resp, Prompt: prompt}
	s.history.Append(entry)
	slog.InfoContext(ctx, "画像編集が完了しました", "session", s.id, "cursor", s.history.Cursor(), "bytes", len(resp.Data))
	return &entry, nil
}

// Undo は履歴を 1 つ戻し、戻った先の指示文を指示文欄に戻します（元画像まで戻った場合はそのまま）。
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, moved := s.history.Undo()
	if moved && entry != nil {
		s.prompt = entry.Prompt
	}
	return moved
}

// Redo は履歴を 1 つ進め、その指示文を指示文欄に戻します。
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, moved := s.history.Redo()
	if moved && entry != nil {
		s.prompt = entry.Prompt
	}
	return moved
}

// CurrentResult は履歴の現在位置の画像です。元画像表示中は nil です。
func (s *Session) CurrentResult() *domain.ImageResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.history.Current(); e != nil {
		return e.Image
	}
	return nil
}

// History は履歴のコピーを返します。
func (s *Session) History() []domain.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}

// ConfirmCrop は現在の切り抜き範囲で元画像を切り抜き、PNG の新しい元画像に差し替えます。
// 失敗した場合（画像なし、デコード不可、0 ピクセル）は何も変更しません。
func (s *Session) ConfirmCrop(ctx context.Context) (*domain.SourceImage, error) {
	s.mu.Lock()
	src := s.source
	gen := s.sourceGen
	s.mu.Unlock()

	if !src.Loaded() {
		return nil, &domain.RasterError{Reason: "画像が読み込まれていません"}
	}
	region := s.crop.Region()

	data, err := imgutil.CropToPNG(src.Data, region)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.sourceGen {
		return nil, ErrSourceReplaced
	}
	cropped := &domain.SourceImage{Data: data, MimeType: "image/png", Name: src.Name}
	s.replaceSourceLocked(cropped)

	slog.InfoContext(ctx, "切り抜きを確定しました", "session", s.id, "region", region, "bytes", len(data))
	copied := *cropped
	return &copied, nil
}

// ApplyCrop は範囲 r を設定してから ConfirmCrop を行います。
func (s *Session) ApplyCrop(ctx context.Context, r crop.Region) (*domain.SourceImage, error) {
	if err := s.crop.Replace(r); err != nil {
		return nil, &domain.InputError{Field: "crop", Reason: err.Error()}
	}
	return s.ConfirmCrop(ctx)
}

// CancelCrop は切り抜きをやめ、範囲を初期状態に作り直します。
func (s *Session) CancelCrop() crop.Region {
	s.crop.Reset()
	return s.crop.Region()
}

// SuggestCrop は画像の内容から現在のアスペクト比に合う範囲を提案し、切り抜き範囲に設定します。
func (s *Session) SuggestCrop(ctx context.Context) (crop.Region, error) {
	s.mu.Lock()
	src := s.source
	aspect := s.aspect
	s.mu.Unlock()

	if !src.Loaded() {
		return crop.Region{}, &domain.RasterError{Reason: "画像が読み込まれていません"}
	}
	img, err := imgutil.Decode(src.Data)
	if err != nil {
		return crop.Region{}, err
	}
	r, err := imgutil.SuggestRegion(ctx, img, aspect)
	if err != nil {
		return crop.Region{}, err
	}
	if err := s.crop.Replace(r); err != nil {
		return crop.Region{}, err
	}
	return r, nil
}
