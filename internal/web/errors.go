package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spacesedan/sentitable/internal/logging"
	"github.com/spacesedan/sentitable/internal/widget"
)

type errorResponse struct {
	Error string `json:"error"`
}

// respondError logs err and writes a JSON error. Unknown widgets map to 404.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if errors.Is(err, widget.ErrNotFound) {
		status = http.StatusNotFound
	}
	logging.FromContext(r.Context()).Warn("[Server] Request failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("error", err.Error()))

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("[Server] json encode error", slog.String("error", err.Error()))
	}
}
