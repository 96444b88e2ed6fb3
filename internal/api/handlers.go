package api

import (
	"net/http"

	"github.com/apex/log"

	"github.com/sprite-ai/hydrodiff/internal/check"
	"github.com/sprite-ai/hydrodiff/internal/mismatch"
	"github.com/sprite-ai/hydrodiff/internal/model"
	"github.com/sprite-ai/hydrodiff/internal/normalize"
	"github.com/sprite-ai/hydrodiff/internal/report"
)

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Compare ---

type compareRequest struct {
	ServerHTML  string   `json:"server_html"`
	ClientHTML  string   `json:"client_html"`
	RootMarkers []string `json:"root_markers,omitempty"`
	NoFilter    bool     `json:"no_filter,omitempty"`
	KeepMeta    bool     `json:"keep_meta,omitempty"`
}

type compareResponse struct {
	Mismatches []model.MismatchRecord `json:"mismatches"`
	ExitCode   int                    `json:"exit_code"`
}

func (req compareRequest) predicate() mismatch.Predicate {
	switch {
	case req.NoFilter:
		return mismatch.MatchAll
	case len(req.RootMarkers) > 0:
		return mismatch.ContainsAny(req.RootMarkers...)
	default:
		return mismatch.DefaultPredicate()
	}
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := readJSON(w, r, &req); err != nil {
		s.metrics.rejected()
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	if req.ServerHTML == "" && req.ClientHTML == "" {
		s.metrics.rejected()
		writeError(w, http.StatusBadRequest, "server_html or client_html is required")
		return
	}

	rep := check.Compare(req.ServerHTML, req.ClientHTML, check.Options{
		Normalize: normalize.Policy{CanonicalMeta: !req.KeepMeta},
		Predicate: req.predicate(),
	})

	s.metrics.observe(len(rep.Mismatches))
	log.WithField("mismatches", len(rep.Mismatches)).Debug("api compare")

	writeJSON(w, http.StatusOK, compareResponse{
		Mismatches: report.Document(rep).Mismatches,
		ExitCode:   report.ExitCode(rep),
	})
}

// --- Normalize ---

type normalizeRequest struct {
	HTML     string `json:"html"`
	KeepMeta bool   `json:"keep_meta,omitempty"`
}

type normalizeResponse struct {
	HTML string `json:"html"`
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	n := normalize.New(normalize.Policy{CanonicalMeta: !req.KeepMeta})
	writeJSON(w, http.StatusOK, normalizeResponse{HTML: n.Normalize(req.HTML)})
}
