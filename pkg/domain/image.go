package domain

// SourceImage は編集対象として読み込まれた元画像です。
type SourceImage struct {
	Data     []byte
	MimeType string
	Name     string // 表示・ログ用（ファイル名や URI）
}

// Loaded は画像データと MIME タイプが揃っているかを返します。
func (s *SourceImage) Loaded() bool {
	return s != nil && len(s.Data) > 0 && s.MimeType != ""
}

// EditRequest は外部の編集コラボレーターへ渡す 1 回分の編集要求です。
// 生成試行ごとに新しく組み立て、保持はしません。
type EditRequest struct {
	Source      []byte
	MimeType    string
	Prompt      string
	AspectRatio AspectRatio
	Seed        *int64 // nil でランダム
}

// ImageResponse は生成された画像データとそのメタデータです。
type ImageResponse struct {
	Data     []byte
	MimeType string
	UsedSeed int64 // 戻り値は情報欠落を防ぐため int64
}

// HistoryEntry は生成に成功した 1 回分の記録です。作成後は変更しません。
type HistoryEntry struct {
	Image  *ImageResponse
	Prompt string
}
