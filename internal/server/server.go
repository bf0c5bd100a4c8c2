package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"outagemonitor/internal/models"
	"outagemonitor/internal/source"
	"outagemonitor/internal/telemetry"
)

// RefreshReporter exposes recent refresh attempts of the cached page.
type RefreshReporter interface {
	Latest() (models.RefreshStatus, bool)
	History() []models.RefreshStatus
}

// Options wires the server's collaborators.
type Options struct {
	Addr           string
	Source         source.Source
	Refresher      RefreshReporter
	Location       *time.Location
	DateLayout     string
	CORSOrigins    []string
	StreamInterval time.Duration
	Logger         zerolog.Logger
	Metrics        *telemetry.Metrics
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Now      func() time.Time
}

// Server wraps HTTP serving of the outage API.
type Server struct {
	httpServer     *http.Server
	router         chi.Router
	source         source.Source
	refresher      RefreshReporter
	loc            *time.Location
	dateLayout     string
	corsOrigins    []string
	streamInterval time.Duration
	log            zerolog.Logger
	metrics        *telemetry.Metrics
	gatherer       prometheus.Gatherer
	now            func() time.Time
}

// New creates a configured HTTP server for the outage API.
func New(opts Options) *Server {
	s := &Server{
		source:         opts.Source,
		refresher:      opts.Refresher,
		loc:            opts.Location,
		dateLayout:     opts.DateLayout,
		corsOrigins:    opts.CORSOrigins,
		streamInterval: opts.StreamInterval,
		log:            opts.Logger,
		metrics:        opts.Metrics,
		gatherer:       opts.Gatherer,
		now:            opts.Now,
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.dateLayout == "" {
		s.dateLayout = "02.01.2006"
	}
	if s.streamInterval <= 0 {
		s.streamInterval = defaultStreamInterval
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run blocks and serves HTTP traffic.
func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts the server down.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.metrics.Middleware)

	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.registerOutageRoutes(r)
	r.Route("/api", s.registerOutageRoutes)
	return r
}

func (s *Server) registerOutageRoutes(r chi.Router) {
	r.Get("/outage", s.handleOutage)
	r.Get("/outage/summary", s.handleSummary)
	r.Get("/outage/ws", s.handleStream)
	r.Get("/outage/queue/{id}", s.handleQueue)
	r.Get("/outage/queue/{id}/timeline", s.handleTimeline)
}

type healthResponse struct {
	Status  string                 `json:"status"`
	Latest  *models.RefreshStatus  `json:"latest,omitempty"`
	History []models.RefreshStatus `json:"history,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if s.refresher != nil {
		if latest, ok := s.refresher.Latest(); ok {
			resp.Latest = &latest
			if !latest.OK {
				resp.Status = "degraded"
			}
		}
		resp.History = limitHistory(s.refresher.History(), parseLimit(r, 20))
	}
	writeJSON(w, http.StatusOK, resp)
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

func limitHistory(entries []models.RefreshStatus, limit int) []models.RefreshStatus {
	if limit <= 0 || len(entries) <= limit {
		return entries
	}
	return entries[len(entries)-limit:]
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
