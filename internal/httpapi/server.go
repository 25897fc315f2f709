// Package httpapi exposes the chat command dispatcher and read-only reports over HTTP.
//
// Routes:
//
//	GET  /healthz
//	POST /api/v1/commands                 {"user_id": "...", "text": "/add_water 1"}
//	GET  /api/v1/users/{userID}/target
//	GET  /api/v1/users/{userID}/log       ?date=YYYY-MM-DD
//	GET  /api/v1/users/{userID}/progress  ?date=YYYY-MM-DD
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/elstrm2/NutritionTracker/internal/apperror"
	"github.com/elstrm2/NutritionTracker/internal/bot"
	"github.com/elstrm2/NutritionTracker/internal/service"
)

const maxBodyBytes = 64 << 10

// HealthFunc reports whether the backing store is reachable.
type HealthFunc func(ctx context.Context) error

type Server struct {
	router     *chi.Mux
	dispatcher *bot.Dispatcher
	tracker    *service.Tracker
	health     HealthFunc
	logger     *slog.Logger
	maxLen     int
}

type CommandRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// CommandResponse carries the reply split into transport-sized messages.
type CommandResponse struct {
	Replies []string `json:"replies"`
}

type TargetResponse struct {
	Calories  float64   `json:"calories"`
	ProteinG  float64   `json:"protein_g"`
	FatG      float64   `json:"fat_g"`
	CarbsG    float64   `json:"carbs_g"`
	WaterL    float64   `json:"water_l"`
	CreatedAt time.Time `json:"created_at"`
}

func New(dispatcher *bot.Dispatcher, tracker *service.Tracker, health HealthFunc, logger *slog.Logger, maxMessageLength int) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		dispatcher: dispatcher,
		tracker:    tracker,
		health:     health,
		logger:     logger,
		maxLen:     maxMessageLength,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(requestLogger(s.logger))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/commands", s.handleCommand)
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/target", s.handleTarget)
			r.Get("/log", s.handleLog)
			r.Get("/progress", s.handleProgress)
		})
	})
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting", slog.String("addr", addr))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("http server stopped")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.logger.Warn("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_json"})
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, s.logger, apperror.Validation("user_id", apperror.ReasonMalformed))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, s.logger, apperror.Validation("text", apperror.ReasonMalformed))
		return
	}

	reply := s.dispatcher.Handle(r.Context(), bot.Command{UserID: req.UserID, Text: req.Text})
	writeJSON(w, http.StatusOK, CommandResponse{Replies: reply.Chunks(s.maxLen)})
}

func (s *Server) handleTarget(w http.ResponseWriter, r *http.Request) {
	snap, err := s.tracker.LatestTarget(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, TargetResponse{
		Calories:  snap.Calories,
		ProteinG:  snap.ProteinG,
		FatG:      snap.FatG,
		CarbsG:    snap.CarbsG,
		WaterL:    snap.WaterL,
		CreatedAt: snap.CreatedAt,
	})
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	log, err := s.tracker.DailyLog(r.Context(), chi.URLParam(r, "userID"), date)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	p, err := s.tracker.DailyProgress(r.Context(), chi.URLParam(r, "userID"), date)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// queryDate reads ?date=; absent means the user's today.
func queryDate(r *http.Request) (*service.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		return nil, nil
	}
	d, err := service.ParseLocalDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
