package domain

import (
	"errors"
	"fmt"
)

// ErrBusy は別の生成リクエストが処理中であることを示します。
var ErrBusy = errors.New("別の生成リクエストを処理中です")

// DefaultGenerationErrorMessage はコラボレーターがメッセージを返さなかった場合の表示文言です。
const DefaultGenerationErrorMessage = "画像の生成中に問題が発生しました。"

// InputError は入力不足（画像なし、空のプロンプトなど）でリクエストを発行しなかったことを示します。
// 利用者向けのエラー表示には使いません。
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("入力が不正です (%s): %s", e.Field, e.Reason)
}

// RasterError は切り抜き画像を作れなかったことを示します。
type RasterError struct {
	Reason string
	Err    error
}

func (e *RasterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("切り抜きに失敗しました: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("切り抜きに失敗しました: %s", e.Reason)
}

func (e *RasterError) Unwrap() error { return e.Err }

// GenerationError は編集コラボレーターの失敗または拒否です。Message は常に表示可能な文言です。
type GenerationError struct {
	Message string
	Err     error
}

// NewGenerationError は err から表示用メッセージを取り出して GenerationError を作ります。
func NewGenerationError(err error) *GenerationError {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = DefaultGenerationErrorMessage
	}
	return &GenerationError{Message: msg, Err: err}
}

func (e *GenerationError) Error() string {
	if e.Message == "" {
		return DefaultGenerationErrorMessage
	}
	return e.Message
}

func (e *GenerationError) Unwrap() error { return e.Err }
