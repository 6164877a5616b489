package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/shouni/gemini-image-editor/pkg/crop"
	"github.com/shouni/gemini-image-editor/pkg/domain"
	"github.com/shouni/gemini-image-editor/pkg/editor"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("レスポンスの書き込みに失敗しました", "error", err)
	}
}

// writeError はエラーの種類を HTTP ステータスに対応付けて返します。
func writeError(w http.ResponseWriter, err error) {
	var (
		inErr  *domain.InputError
		rErr   *domain.RasterError
		genErr *domain.GenerationError
	)
	switch {
	case errors.As(err, &inErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: inErr.Error(), Field: inErr.Field})
	case errors.Is(err, editor.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrBusy),
		errors.Is(err, editor.ErrSourceReplaced),
		errors.Is(err, crop.ErrGestureInProgress):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.As(err, &rErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: rErr.Error()})
	case errors.As(err, &genErr):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: genErr.Message})
	default:
		slog.Error("リクエストの処理に失敗しました", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

// decodeJSON はリクエストボディを v にデコードします。失敗は InputError です。
func decodeJSON(r *http.Request, v any) error {
	return decodeJSONFrom(r.Body, v)
}

func decodeJSONFrom(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &domain.InputError{Field: "body", Reason: err.Error()}
	}
	return nil
}
