// Package server exposes the closure table's hierarchical queries over
// HTTP. It is a thin read-only layer on top of a store.Store; all heavy
// lifting happened at build time.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/voltlab/gridclosure/pkg/store"
)

// Server serves hierarchical queries against a store.
type Server struct {
	store  store.Store
	logger *log.Logger
}

// New creates a Server reading from st.
func New(st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{store: st, logger: logger}
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Route("/nodes/{id}", func(r chi.Router) {
		r.Get("/descendants", s.handleDescendants)
		r.Get("/ancestors", s.handleAncestors)
		r.Get("/at-depth/{depth}", s.handleAtDepth)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.Counts(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleDescendants(w http.ResponseWriter, r *http.Request) {
	id, ok := s.nodeID(w, r)
	if !ok {
		return
	}
	maxDepth := 0
	if v := r.URL.Query().Get("depth"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 1 {
			s.writeErrorMessage(w, http.StatusBadRequest, "depth must be a positive integer")
			return
		}
		maxDepth = d
	}
	rels, err := s.store.Descendants(r.Context(), id, maxDepth)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeRelations(w, id, rels)
}

func (s *Server) handleAncestors(w http.ResponseWriter, r *http.Request) {
	id, ok := s.nodeID(w, r)
	if !ok {
		return
	}
	rels, err := s.store.Ancestors(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeRelations(w, id, rels)
}

func (s *Server) handleAtDepth(w http.ResponseWriter, r *http.Request) {
	id, ok := s.nodeID(w, r)
	if !ok {
		return
	}
	depth, err := strconv.Atoi(chi.URLParam(r, "depth"))
	if err != nil || depth < 1 {
		s.writeErrorMessage(w, http.StatusBadRequest, "depth must be a positive integer")
		return
	}
	rels, err := s.store.AtDepth(r.Context(), id, depth)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeRelations(w, id, rels)
}

func (s *Server) nodeID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "node id must be an integer")
		return 0, false
	}
	return id, true
}

type relationsResponse struct {
	NodeID    int              `json:"node_id"`
	Count     int              `json:"count"`
	Relations []store.Relation `json:"relations"`
}

func (s *Server) writeRelations(w http.ResponseWriter, id int, rels []store.Relation) {
	if rels == nil {
		rels = []store.Relation{}
	}
	s.writeJSON(w, http.StatusOK, relationsResponse{
		NodeID:    id,
		Count:     len(rels),
		Relations: rels,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Error("request failed", "err", err)
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
