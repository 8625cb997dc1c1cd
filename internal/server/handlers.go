package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/abhisek/roadmapper/internal/assistant"
	"github.com/abhisek/roadmapper/internal/dashboard"
	"github.com/abhisek/roadmapper/internal/external"
	"github.com/abhisek/roadmapper/internal/graphview"
	"github.com/abhisek/roadmapper/internal/progress"
	"github.com/abhisek/roadmapper/internal/review"
	"github.com/abhisek/roadmapper/internal/roadmap"
	"github.com/abhisek/roadmapper/internal/status"
	"github.com/abhisek/roadmapper/internal/syncstatus"
)

const (
	maxBodyBytes = 64 << 10
	nextLimit    = 5
)

type problemJSON struct {
	ItemID  string                `json:"itemId"`
	Kind    roadmap.IntegrityKind `json:"kind"`
	Ref     string                `json:"ref,omitempty"`
	Message string                `json:"message"`
}

type roadmapResponse struct {
	Items    []roadmap.Item `json:"items"`
	Roots    []string       `json:"roots"`
	Problems []problemJSON  `json:"problems"`
}

type dashboardResponse struct {
	Stats dashboard.Stats  `json:"stats"`
	Next  []dashboard.Card `json:"next"`
	View  dashboard.View   `json:"view"`
	Due   []string         `json:"reviewsDue,omitempty"`
}

type progressResponse struct {
	ID      string        `json:"id"`
	Value   float64       `json:"value"`
	Status  status.Status `json:"status"`
	Warning string        `json:"warning,omitempty"`
}

type progressRequest struct {
	Value *float64 `json:"value"`
}

type viewRequest struct {
	View dashboard.View `json:"view"`
}

type askRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRoadmap(w http.ResponseWriter, r *http.Request) {
	g := s.shell.Graph()
	resp := roadmapResponse{
		Items:    g.Items(),
		Roots:    []string{},
		Problems: []problemJSON{},
	}
	for _, it := range g.Roots() {
		resp.Roots = append(resp.Roots, it.ID)
	}
	for _, p := range g.Integrity().Problems {
		resp.Problems = append(resp.Problems, problemJSON{
			ItemID:  p.ItemID,
			Kind:    p.Kind,
			Ref:     p.Ref,
			Message: p.Error(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGraph builds the graph view for a client-owned expansion state.
// ?expanded=a,b expands exactly those items, ?collapsed=a,b expands all but
// those, and neither expands the roots.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	g := s.shell.Graph()
	q := r.URL.Query()

	var exp *graphview.Expansion
	switch {
	case q.Has("expanded"):
		exp = graphview.NewExpansion(splitIDs(q.Get("expanded"))...)
	case q.Has("collapsed"):
		exp = graphview.NewExpansion()
		exp.ExpandAll(g)
		for _, id := range splitIDs(q.Get("collapsed")) {
			exp.Collapse(id)
		}
	default:
		exp = graphview.RootsExpanded(g)
	}

	writeJSON(w, http.StatusOK, graphview.Build(g, s.shell.Projection(), s.shell.Progress(), exp))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	resp := dashboardResponse{
		Stats: s.shell.Stats(),
		Next:  s.shell.Next(nextLimit),
		View:  s.shell.View(),
	}
	if resp.Next == nil {
		resp.Next = []dashboard.Card{}
	}
	if rv := s.shell.Reviews(); rv != nil {
		resp.Due = rv.Due()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.View.Valid() {
		writeError(w, http.StatusBadRequest, "unknown view")
		return
	}
	s.shell.SetView(req.View)
	writeJSON(w, http.StatusOK, map[string]dashboard.View{"view": s.shell.View()})
}

func (s *Server) handleKanban(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]dashboard.Column{"columns": s.shell.Kanban()})
}

func (s *Server) handleProgressList(w http.ResponseWriter, r *http.Request) {
	p := s.shell.Progress()
	proj := s.shell.Projection()
	items := s.shell.Graph().Items()
	out := make([]progressResponse, 0, len(items))
	for _, it := range items {
		out = append(out, progressResponse{ID: it.ID, Value: p.Get(it.ID), Status: proj.Status(it.ID)})
	}
	writeJSON(w, http.StatusOK, map[string][]progressResponse{"progress": out})
}

func (s *Server) handleProgressGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.shell.Graph().Has(id) {
		writeError(w, http.StatusNotFound, "unknown item "+id)
		return
	}
	writeJSON(w, http.StatusOK, s.progressOf(id))
}

func (s *Server) handleProgressSet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.shell.Graph().Has(id) {
		writeError(w, http.StatusNotFound, "unknown item "+id)
		return
	}
	var req progressRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Value == nil {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}

	err := s.shell.Progress().Set(r.Context(), id, *req.Value)
	// Another request may still be delivering changes, in which case ours
	// has not reached the shell yet.
	s.shell.Refresh()
	var perr *progress.PersistError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, s.progressOf(id))
	case errors.As(err, &perr):
		resp := s.progressOf(id)
		resp.Warning = perr.Error()
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, progress.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("set progress", zap.String("item", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) progressOf(id string) progressResponse {
	return progressResponse{
		ID:     id,
		Value:  s.shell.Progress().Get(id),
		Status: s.shell.Projection().Status(id),
	}
}

func (s *Server) handleReviewsDue(w http.ResponseWriter, r *http.Request) {
	rv := s.shell.Reviews()
	if rv == nil {
		writeJSON(w, http.StatusOK, map[string][]string{"due": {}})
		return
	}
	due := rv.Due()
	if due == nil {
		due = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"due": due})
}

func (s *Server) handleReviewDone(w http.ResponseWriter, r *http.Request) {
	rv := s.shell.Reviews()
	if rv == nil {
		writeError(w, http.StatusServiceUnavailable, "reviews are disabled")
		return
	}
	id := mux.Vars(r)["id"]
	err := rv.MarkReviewed(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, rv.State(id))
	case errors.Is(err, review.ErrNotTracked):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if s.assistant == nil {
		writeError(w, http.StatusServiceUnavailable, "assistant is disabled")
		return
	}
	var req askRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	answer, err := s.assistant.Ask(r.Context(), req.Prompt)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if s.assistant == nil {
		writeError(w, http.StatusServiceUnavailable, "assistant is disabled")
		return
	}
	sug, err := s.assistant.SuggestNext(r.Context(), s.shell)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sug)
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	if s.sync == nil {
		writeError(w, http.StatusServiceUnavailable, syncstatus.ErrDisabled.Error())
		return
	}
	st, err := s.sync.Fetch(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, assistant.ErrEmptyPrompt):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, assistant.ErrNothingActionable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, syncstatus.ErrDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case external.Is(err):
		s.logger.Warn("external service failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}

func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
