package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/shouni/gemini-image-editor/pkg/crop"
	"github.com/shouni/gemini-image-editor/pkg/domain"
	"github.com/shouni/gemini-image-editor/pkg/editor"
)

const maxRegionBodyBytes = 4 << 10

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *editor.Session)

// withSession はパスの {id} からセッションを引いてハンドラーに渡します。
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Get(r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		next(w, r, sess)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.sessions.Count()})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.Presets())
}

func (s *Server) handleAspectRatios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default": domain.DefaultAspectRatio,
		"values":  domain.AspectRatios(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+sess.ID())
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

type sourceRequest struct {
	// URI はローカルパス、gs://、s3://、http(s)://、data URL のいずれか
	URI     string `json:"uri"`
	DataURL string `json:"dataUrl"`
}

// sourceURI は読み込む URI を決めます。http(s) と data URL 以外は保存先ルート配下に限ります。
func (s *Server) sourceURI(req sourceRequest) (string, error) {
	if req.DataURL != "" {
		return req.DataURL, nil
	}
	uri := strings.TrimSpace(req.URI)
	lower := strings.ToLower(uri)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "data:") {
		return uri, nil
	}
	return s.storage.resolve("uri", uri)
}

// handlePutSource は元画像を読み込みます。
// 画像そのもの（Content-Type: image/*）か、JSON の {"uri": ...} / {"dataUrl": ...} を受け付けます。
func (s *Server) handlePutSource(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var (
		src *domain.SourceImage
		err error
	)
	switch {
	case mediaType == "application/json":
		var req sourceRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		uri, uriErr := s.sourceURI(req)
		if uriErr != nil {
			writeError(w, uriErr)
			return
		}
		src, err = s.loader.LoadSource(r.Context(), uri)
	default:
		src, err = s.readRawSource(r)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	if err := sess.SetSource(src); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) readRawSource(r *http.Request) (*domain.SourceImage, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &domain.InputError{Field: "source", Reason: fmt.Sprintf("画像が大きすぎます (上限 %d バイト)", maxErr.Limit)}
		}
		return nil, fmt.Errorf("アップロードの読み込みに失敗しました: %w", err)
	}
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, &domain.InputError{Field: "source", Reason: fmt.Sprintf("画像ではないデータです (%s)", mimeType)}
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload"
	}
	return &domain.SourceImage{Data: data, MimeType: mimeType, Name: name}, nil
}

func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	src := sess.Source()
	if src == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "元画像が読み込まれていません"})
		return
	}
	writeImage(w, src.Data, src.MimeType)
}

func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	sess.ClearSource()
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

type promptRequest struct {
	Prompt *string `json:"prompt"`
	Preset string  `json:"preset"`
}

func (s *Server) handlePutPrompt(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	var req promptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	switch {
	case req.Preset != "":
		if _, err := sess.ApplyPreset(req.Preset); err != nil {
			writeError(w, err)
			return
		}
	case req.Prompt != nil:
		sess.SetPrompt(*req.Prompt)
	default:
		writeError(w, &domain.InputError{Field: "prompt", Reason: "prompt または preset を指定してください"})
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

type settingsRequest struct {
	AspectRatio *string `json:"aspectRatio"`
	Seed        *int64  `json:"seed"`
	ClearSeed   bool    `json:"clearSeed"`
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	var req settingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.AspectRatio != nil {
		if err := sess.SetAspectRatio(*req.AspectRatio); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.ClearSeed {
		sess.SetSeed(nil)
	} else if req.Seed != nil {
		sess.SetSeed(req.Seed)
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// handleGenerate は生成が終わるまで待ってから結果のスナップショットを返します。
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	if _, err := sess.Generate(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	sess.Undo()
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	sess.Redo()
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	res := sess.CurrentResult()
	if res == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "表示中の生成結果がありません"})
		return
	}
	if r.URL.Query().Has("download") {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="edited-%s%s"`, sess.ID(), extension(res.MimeType)))
	}
	writeImage(w, res.Data, res.MimeType)
}

type exportRequest struct {
	URI string `json:"uri"`
}

// handleExport は表示中の生成結果を保存先ルート配下に書き出します。
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	var req exportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.URI) == "" {
		writeError(w, &domain.InputError{Field: "uri", Reason: "書き出し先を指定してください"})
		return
	}
	dest, err := s.storage.resolve("uri", req.URI)
	if err != nil {
		writeError(w, err)
		return
	}
	res := sess.CurrentResult()
	if res == nil {
		writeError(w, &domain.InputError{Field: "result", Reason: "表示中の生成結果がありません"})
		return
	}
	if err := s.writer.Write(r.Context(), dest, bytes.NewReader(res.Data), res.MimeType); err != nil {
		writeError(w, fmt.Errorf("生成結果の書き出しに失敗しました (%s): %w", dest, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"uri": dest, "bytes": len(res.Data)})
}

func (s *Server) handleCropSuggest(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	if _, err := sess.SuggestCrop(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// handleCropConfirm は現在の範囲（ボディに範囲があればその範囲）で切り抜きを確定します。
// Content-Length のないチャンク転送でも、ボディが空かどうかで判断します。
func (s *Server) handleCropConfirm(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRegionBodyBytes))
	if err != nil {
		writeError(w, &domain.InputError{Field: "body", Reason: err.Error()})
		return
	}

	if len(bytes.TrimSpace(body)) > 0 {
		var region crop.Region
		if err := decodeJSONFrom(bytes.NewReader(body), &region); err != nil {
			writeError(w, err)
			return
		}
		_, err = sess.ApplyCrop(r.Context(), region)
	} else {
		_, err = sess.ConfirmCrop(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleCropCancel(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	sess.CancelCrop()
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func writeImage(w http.ResponseWriter, data []byte, mimeType string) {
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func extension(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
