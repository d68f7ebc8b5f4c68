// Package server exposes the placement engine over HTTP.
//
// The API accepts floorplan manifests in the same TOML format the CLI
// reads and returns placed layouts as JSON. Requests share one Runner,
// so repeated placements of the same manifest hit the layout cache.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/macroplace/pkg/errors"
	"github.com/matzehuels/macroplace/pkg/manifest"
	"github.com/matzehuels/macroplace/pkg/place"
	"github.com/matzehuels/macroplace/pkg/render/plan"
)

// maxManifestBytes caps the request body size.
const maxManifestBytes = 1 << 20

// Server routes placement requests to a shared Runner.
type Server struct {
	runner *place.Runner
	logger *log.Logger
}

// New creates a server around runner. A nil logger falls back to the
// default logger.
func New(runner *place.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Handler builds the HTTP routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/place", s.handlePlace)
		r.Post("/render", s.handleRender)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handlePlace anneals a TOML manifest from the request body and returns
// the winning layout as JSON.
//
// Query parameters:
//   - runs: number of independent runs (default 10)
//   - seed: base random seed (overrides the manifest)
//   - fill: grow soft macros into dead space ("true"/"false")
//   - align: snap macros to the outline and to each other
//   - refresh: bypass the cache lookup
func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	opts, _, err := s.parsePlaceRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	layout, cached, err := s.runner.PlaceWithCacheInfo(r.Context(), *opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	data, err := place.MarshalLayout(layout)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cacheStatus(cached))
	_, _ = w.Write(data)
}

// handleRender anneals a manifest and returns the floorplan as SVG.
// It accepts the same query parameters as handlePlace plus:
//   - labels: draw macro names
//   - edges: draw net connections
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, prob, err := s.parsePlaceRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	layout, cached, err := s.runner.PlaceWithCacheInfo(r.Context(), *opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var po []plan.SVGOption
	if len(prob.Blockages) > 0 {
		po = append(po, plan.WithBlockages(prob.Blockages))
	}
	if len(prob.Config.Fences) > 0 {
		po = append(po, plan.WithFences(prob.Config.Fences))
	}
	if len(prob.Config.Guides) > 0 {
		po = append(po, plan.WithGuides(prob.Config.Guides))
	}
	if boolParam(r, "edges") && len(prob.Config.Nets) > 0 {
		po = append(po, plan.WithNets(prob.Config.Nets, prob.MacroNames()))
	}
	if boolParam(r, "labels") {
		po = append(po, plan.WithLabels())
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("X-Cache", cacheStatus(cached))
	_, _ = w.Write(plan.RenderSVG(layout, po...))
}

// parsePlaceRequest reads the manifest body and query parameters into
// placement options. The parsed problem rides along for render overlays.
func (s *Server) parsePlaceRequest(r *http.Request) (*place.Options, *manifest.Problem, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxManifestBytes))
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(body) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "empty request body; expected a TOML manifest")
	}

	prob, err := manifest.Parse(body)
	if err != nil {
		return nil, nil, err
	}

	opts := &place.Options{
		Config:        prob.Config,
		Soft:          prob.Soft,
		Hard:          prob.Hard,
		Blockages:     prob.Blockages,
		FillDeadSpace: boolParam(r, "fill"),
		Align:         boolParam(r, "align"),
		Refresh:       boolParam(r, "refresh"),
	}
	if v := r.URL.Query().Get("runs"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, nil, errors.New(errors.ErrCodeInvalidInput, "runs must be an integer, got %q", v)
		}
		opts.NumRuns = n
	}
	if v := r.URL.Query().Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, nil, errors.New(errors.ErrCodeInvalidInput, "seed must be an unsigned integer, got %q", v)
		}
		opts.Config.Schedule.Seed = seed
	}
	return opts, prob, nil
}

// errorBody is the JSON shape of an API error.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps structured error codes onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidOutline, errors.ErrCodeInvalidMacro,
		errors.ErrCodeInvalidShape, errors.ErrCodeInvalidWeight, errors.ErrCodeInvalidSchedule,
		errors.ErrCodeInvalidNet, errors.ErrCodeInvalidManifest, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidPath:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeUnsupported:
		status = http.StatusUnprocessableEntity
	}

	s.logger.Errorf("request failed: %v", err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := errorBody{Error: errors.UserMessage(err), Code: string(errors.GetCode(err))}
	data, _ := json.Marshal(body)
	_, _ = w.Write(data)
}

func cacheStatus(cached bool) string {
	if cached {
		return "HIT"
	}
	return "MISS"
}

func boolParam(r *http.Request, name string) bool {
	return r.URL.Query().Get(name) == "true" || r.URL.Query().Get(name) == "1"
}
