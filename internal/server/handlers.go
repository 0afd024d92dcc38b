package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sw33tLie/metascope/internal/utils"
	"github.com/sw33tLie/metascope/pkg/insights"
	"github.com/sw33tLie/metascope/pkg/pipeline"
	"github.com/sw33tLie/metascope/pkg/platforms"
	"github.com/sw33tLie/metascope/pkg/selection"
)

type errorBody struct {
	Error string `json:"error"`
}

// pageView is the page-list entry handed to clients. Unlike insights.Page
// it carries the page token, which the insights and posts routes expect back.
type pageView struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	AccessToken        string `json:"access_token"`
	InstagramAccountID string `json:"instagram_business_account,omitempty"`
}

type selectionView struct {
	State      string          `json:"state"`
	Error      string          `json:"error,omitempty"`
	Generation uint64          `json:"generation"`
	Selected   *insights.Page  `json:"selected"`
	Pages      []insights.Page `json:"pages"`
}

type dashboardView struct {
	Loading bool           `json:"loading"`
	View    *pipeline.View `json:"view"`
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	pages, err := s.Pages.ListPages(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]pageView, 0, len(pages))
	for _, p := range pages {
		out = append(out, pageView{ID: p.ID, Name: p.Name, AccessToken: p.AccessToken, InstagramAccountID: p.InstagramAccountID})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": out})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	src, ok := s.source(w, r)
	if !ok {
		return
	}
	in, err := pipeline.FetchInsights(r.Context(), src, chi.URLParam(r, "id"), r.URL.Query().Get("access_token"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	src, ok := s.source(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := src.ValidateID(id); err != nil {
		writeError(w, err)
		return
	}
	posts, err := pipeline.FetchPosts(r.Context(), src, id, r.URL.Query().Get("access_token"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": posts})
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSelectionView(s.Selection.Snapshot()))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	err := s.Selection.SelectByID(chi.URLParam(r, "pageId"))
	switch {
	case errors.Is(err, selection.ErrNotReady):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
		return
	case errors.Is(err, selection.ErrUnknownPage):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return
	case err != nil:
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSelectionView(s.Selection.Snapshot()))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	out := dashboardView{Loading: s.Dashboard.Loading()}
	if v, ok := s.Dashboard.View(); ok {
		out.View = &v
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) source(w http.ResponseWriter, r *http.Request) (platforms.Source, bool) {
	kind, err := platforms.ParseKind(chi.URLParam(r, "platform"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return nil, false
	}
	src, ok := s.Sources[kind]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "platform not configured: " + string(kind)})
		return nil, false
	}
	return src, true
}

func toSelectionView(snap selection.Snapshot) selectionView {
	pages := snap.Pages
	if pages == nil {
		pages = []insights.Page{}
	}
	return selectionView{
		State:      snap.State.String(),
		Error:      snap.Err,
		Generation: snap.Generation,
		Selected:   snap.Page,
		Pages:      pages,
	}
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var (
		valErr *platforms.ValidationError
		upErr  *platforms.UpstreamFetchError
		malErr *platforms.MalformedResponseError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &valErr):
		status = http.StatusBadRequest
	case errors.As(err, &upErr), errors.As(err, &malErr):
		status = http.StatusBadGateway
	case errors.Is(err, platforms.ErrNoPages):
		status = http.StatusNotFound
	}
	if status >= 500 {
		utils.Log.Warnf("Request failed (%s): %v", platforms.Category(err), err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
