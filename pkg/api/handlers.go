package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/folders"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/outline"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/store"
)

// FamilySummary is one entry of the family listing.
type FamilySummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ParentID    string `json:"parentId,omitempty"`
	MemberCount int    `json:"memberCount"`
}

// OutlineResponse is the body of the outline endpoint.
type OutlineResponse struct {
	Family string        `json:"family"`
	Name   string        `json:"name,omitempty"`
	Rows   []outline.Row `json:"rows"`
	Stats  outline.Stats `json:"stats"`
	Cached bool          `json:"cached"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listFamilies(w http.ResponseWriter, r *http.Request) {
	viewer, err := viewerOf(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if s.runner.Store == nil {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidConfig, "no family store configured"))
		return
	}
	all, err := store.Scoped(s.runner.Store, viewer).Families(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]FamilySummary, len(all))
	for i, f := range all {
		out[i] = FamilySummary{ID: f.ID, Name: f.Name, ParentID: f.ParentID, MemberCount: len(f.Members())}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getFolder(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	folder, err := s.runner.Folder(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (s *Server) getOutline(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out, hit, err := s.runner.OutlineWithCacheInfo(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OutlineResponse{
		Family: out.FamilyID,
		Name:   out.FamilyName,
		Rows:   out.Rows,
		Stats:  out.Stats,
		Cached: hit,
	})
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(chi.URLParam(r, "format"))
	if err := pipeline.ValidateFormat(format); err != nil {
		s.fail(w, r, err)
		return
	}
	opts, err := s.options(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts.Formats = []string{format}

	var folder *folders.Folder
	folder, err = s.runner.Folder(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out, outlineHit, err := s.runner.OutlineFromFolderWithCacheInfo(r.Context(), folder, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	artifacts, renderHit, err := s.runner.RenderWithCacheInfo(r.Context(), out, folder, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.Header().Set(HeaderCache, cacheHeader(outlineHit, renderHit))
	if r.URL.Query().Has("download") {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.FamilyID+"."+format))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// options builds pipeline options from the path, the viewer header and the
// query string, on top of the server defaults.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := s.opts
	opts.FamilyID = chi.URLParam(r, "familyID")
	if err := errors.ValidateFamilyID(opts.FamilyID); err != nil {
		return opts, err
	}
	viewer, err := viewerOf(r)
	if err != nil {
		return opts, err
	}
	opts.Viewer = viewer

	q := r.URL.Query()
	if v := q.Get("depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "depth must be a non-negative integer, got %q", v)
		}
		opts.MaxDepth = n
	}
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "seed must be an unsigned integer, got %q", v)
		}
		opts.Seed = n
	}
	if v := q.Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "scale must be a positive number, got %q", v)
		}
		opts.Scale = f
	}
	if v := q.Get("label"); v != "" {
		opts.GenerationLabel = v
	}
	if v := q.Get("locale"); v != "" {
		opts.Locale = v
	}
	if v := q.Get("policy"); v != "" {
		opts.Policy = v
	}
	if v := q.Get("title"); v != "" {
		opts.Title = v
	}
	if v := q.Get("direction"); v != "" {
		opts.Direction = v
	}
	opts.Plain = q.Has("plain")
	opts.Detailed = q.Has("detailed")
	opts.Refresh = q.Has("refresh")
	return opts, nil
}

func viewerOf(r *http.Request) (string, error) {
	viewer := strings.TrimSpace(r.Header.Get(HeaderViewer))
	if err := errors.ValidateViewerID(viewer); err != nil {
		return "", err
	}
	return viewer, nil
}

func cacheHeader(hits ...bool) string {
	for _, h := range hits {
		if !h {
			return "miss"
		}
	}
	return "hit"
}

// Status returns the HTTP status for err.
func Status(err error) int {
	switch {
	case errors.Is(err, errors.ErrCodeInvalidConfig):
		return http.StatusInternalServerError
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		// Internal details stay in the log.
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "err", err)
		msg = "internal error"
	}
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	writeJSON(w, status, errorBody{Code: string(code), Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
