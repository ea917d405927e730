package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/spacesedan/sentitable/internal/models"
	"github.com/spacesedan/sentitable/internal/table"
	"github.com/spacesedan/sentitable/internal/widget"
)

type createWidgetRequest struct {
	APIKey  string              `json:"apiKey"`
	Width   int                 `json:"width"`
	Height  int                 `json:"height"`
	Binding *models.DataBinding `json:"dataBinding"`
}

type resizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type propsRequest struct {
	APIKey *string `json:"apiKey"`
}

type renderResponse struct {
	ID         string `json:"id"`
	Rendered   bool   `json:"rendered"`
	Generation uint64 `json:"generation"`
}

type healthResponse struct {
	Status     string `json:"status"`
	Classifier string `json:"classifier"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.healthy != nil && !s.healthy.Load() {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Classifier: s.classifier})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Classifier: s.classifier})
}

// handleCreateWidget accepts an optional body carrying the initial props.
func (s *Server) handleCreateWidget(w http.ResponseWriter, r *http.Request) {
	var req createWidgetRequest
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, &req); err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}
	}

	wg := s.registry.Create()
	if req.APIKey != "" {
		wg.SetAPIKey(req.APIKey)
	}
	if req.Binding != nil {
		wg.SetDataBinding(req.Binding)
	}

	rendered := false
	if req.Width != 0 || req.Height != 0 {
		rendered = wg.OnResize(req.Width, req.Height)
	} else if req.Binding != nil {
		rendered = wg.OnAfterUpdate(map[string]any{"dataBinding": true})
	}
	writeJSON(w, http.StatusCreated, renderResponse{ID: wg.ID(), Rendered: rendered, Generation: wg.Generation()})
}

func (s *Server) handleDeleteWidget(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetBinding(w http.ResponseWriter, r *http.Request) {
	wg, ok := s.widget(w, r)
	if !ok {
		return
	}
	var b models.DataBinding
	if err := decodeBody(w, r, &b); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	wg.SetDataBinding(&b)
	rendered := wg.OnAfterUpdate(map[string]any{"dataBinding": true})
	writeJSON(w, http.StatusOK, renderResponse{ID: wg.ID(), Rendered: rendered, Generation: wg.Generation()})
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	wg, ok := s.widget(w, r)
	if !ok {
		return
	}
	var req resizeRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if req.Width < 0 || req.Height < 0 {
		respondError(w, r, fmt.Errorf("width and height must not be negative"), http.StatusBadRequest)
		return
	}

	rendered := wg.OnResize(req.Width, req.Height)
	writeJSON(w, http.StatusOK, renderResponse{ID: wg.ID(), Rendered: rendered, Generation: wg.Generation()})
}

func (s *Server) handleUpdateProps(w http.ResponseWriter, r *http.Request) {
	wg, ok := s.widget(w, r)
	if !ok {
		return
	}
	var req propsRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	changed := map[string]any{}
	if req.APIKey != nil {
		wg.SetAPIKey(*req.APIKey)
		changed["apiKey"] = true
	}
	rendered := wg.OnAfterUpdate(changed)
	writeJSON(w, http.StatusOK, renderResponse{ID: wg.ID(), Rendered: rendered, Generation: wg.Generation()})
}

func (s *Server) handleTableJSON(w http.ResponseWriter, r *http.Request) {
	wg, ok := s.widget(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, wg.Snapshot())
}

func (s *Server) handleTableText(w http.ResponseWriter, r *http.Request) {
	wg, ok := s.widget(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	table.WriteText(w, wg.Snapshot())
}

func (s *Server) handleWidgetPage(w http.ResponseWriter, r *http.Request) {
	wg, ok := s.widget(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := widgetPage("Sentiment table", wg.Snapshot()).Render(r.Context(), w); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
	}
}

func (s *Server) widget(w http.ResponseWriter, r *http.Request) (*widget.Widget, bool) {
	wg, err := s.registry.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return nil, false
	}
	return wg, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
