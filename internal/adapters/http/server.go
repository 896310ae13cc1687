// Package http exposes the resolver and context builder over a small JSON
// API, for content authors inspecting the graph while writing sequences.
package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rvielma/cultivar/internal/config"
	"github.com/rvielma/cultivar/internal/index"
	"github.com/rvielma/cultivar/internal/resolver"
	"github.com/rvielma/cultivar/internal/window"
	"github.com/rvielma/cultivar/pkg/domain"
	"github.com/rvielma/cultivar/pkg/ports"
)

// Server answers graph inspection requests.
type Server struct {
	index    *index.Index
	resolver *resolver.Resolver
	window   *window.Builder
	loader   ports.SequenceLoader
	size     int
}

// NewHandler builds the HTTP handler. registry, when non-nil, is served at
// /metrics.
func NewHandler(ix *index.Index, res *resolver.Resolver, win *window.Builder, loader ports.SequenceLoader, windowSize int, registry *prometheus.Registry) http.Handler {
	s := &Server{index: ix, resolver: res, window: win, loader: loader, size: windowSize}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.health)
	r.Get("/sequences", s.sequences)
	r.Post("/resolve", s.resolve)
	r.Post("/preview", s.preview)
	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	return r
}

// resolveRequest is the body of POST /resolve and POST /preview.
type resolveRequest struct {
	Target string        `json:"target"`
	State  *stateRequest `json:"state,omitempty"`
}

type stateRequest struct {
	Entry     string         `json:"entry,omitempty"`
	EntryNode int            `json:"entry_node,omitempty"`
	Mode      string         `json:"mode,omitempty"`
	Vars      map[string]any `json:"vars,omitempty"`
	MaxDepth  int            `json:"max_depth,omitempty"`
}

type resolveResponse struct {
	Target   string                    `json:"target"`
	Found    bool                      `json:"found"`
	Path     []string                  `json:"path"`
	Selected []domain.ResolvedPathNode `json:"nodes"`
}

type previewResponse struct {
	Target  string               `json:"target"`
	Found   bool                 `json:"found"`
	Context []domain.ContextTurn `json:"context"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) sequences(w http.ResponseWriter, _ *http.Request) {
	ids, err := s.loader.ListSequences()
	if err != nil {
		http.Error(w, fmt.Sprintf("list sequences: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sequences": ids})
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	target, state, ok := s.decodeTarget(w, r)
	if !ok {
		return
	}

	path, found, err := s.resolver.Resolve(state, target)
	if err != nil {
		http.Error(w, fmt.Sprintf("resolve: %v", err), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{
		Target:   target.String(),
		Found:    found,
		Path:     path.Addresses(),
		Selected: path,
	})
}

func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	target, state, ok := s.decodeTarget(w, r)
	if !ok {
		return
	}

	path, found, err := s.resolver.Resolve(state, target)
	if err != nil {
		http.Error(w, fmt.Sprintf("resolve: %v", err), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{
		Target:  target.String(),
		Found:   found,
		Context: s.window.Build(path, s.size),
	})
}

func (s *Server) decodeTarget(w http.ResponseWriter, r *http.Request) (domain.NodeAddress, domain.StateSpec, bool) {
	var body resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return domain.NodeAddress{}, domain.StateSpec{}, false
	}

	target, err := config.ParseAddress(body.Target, "")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return domain.NodeAddress{}, domain.StateSpec{}, false
	}

	state := domain.NewStateSpec(target.Sequence)
	if body.State != nil {
		if body.State.Entry != "" {
			state.EntrySequence = body.State.Entry
		}
		state.EntryNode = body.State.EntryNode
		if body.State.Mode == string(domain.BranchAlwaysDefault) {
			state.Mode = domain.BranchAlwaysDefault
		}
		state.Vars = body.State.Vars
		state.MaxDepth = body.State.MaxDepth
	}
	return target, state, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
