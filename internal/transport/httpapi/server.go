package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"channel_reporter/internal/domain/model"
)

const shutdownTimeout = 5 * time.Second

type StatsSource interface {
	Snapshot() model.StatsSnapshot
}

type JobState interface {
	BulkRunning() bool
}

type Dependencies struct {
	Stats    StatsSource
	Jobs     JobState
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

type healthResponse struct {
	Status      string `json:"status"`
	UptimeSec   int64  `json:"uptime_sec"`
	BulkRunning bool   `json:"bulk_running"`
}

type statsResponse struct {
	Total       int64     `json:"total"`
	Success     int64     `json:"success"`
	Failure     int64     `json:"failure"`
	Today       int64     `json:"today"`
	SuccessRate float64   `json:"success_rate"`
	StartedAt   time.Time `json:"started_at"`
	DayBoundary time.Time `json:"day_boundary"`
}

func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		response := healthResponse{Status: "ok"}
		if deps.Stats != nil {
			response.UptimeSec = int64(deps.Stats.Snapshot().Uptime() / time.Second)
		}
		if deps.Jobs != nil {
			response.BulkRunning = deps.Jobs.BulkRunning()
		}
		writeJSON(w, http.StatusOK, response)
	})

	r.Get("/v1/stats", func(w http.ResponseWriter, _ *http.Request) {
		if deps.Stats == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		snapshot := deps.Stats.Snapshot()
		writeJSON(w, http.StatusOK, statsResponse{
			Total:       snapshot.Total,
			Success:     snapshot.Success,
			Failure:     snapshot.Failure,
			Today:       snapshot.Day,
			SuccessRate: snapshot.SuccessRate(),
			StartedAt:   snapshot.StartedAt,
			DayBoundary: snapshot.DayBoundary,
		})
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

type Server struct {
	server *http.Server
	logger *slog.Logger
}

func NewServer(addr string, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server started", "addr", s.server.Addr)
		err := s.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(started).Milliseconds(),
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
