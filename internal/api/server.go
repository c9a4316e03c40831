// Package api serves the knowledge base as JSON over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Dencchi/f1-knowledge-base/internal/app"
	"github.com/Dencchi/f1-knowledge-base/internal/metrics"
	"github.com/Dencchi/f1-knowledge-base/internal/models"
)

// Server exposes the query services of an App
type Server struct {
	app    *app.App
	logger *logrus.Entry
	server *http.Server
}

// NewServer creates an API server over the app's services
func NewServer(a *app.App) *Server {
	return &Server{
		app:    a,
		logger: a.Logger.WithField("component", "api"),
	}
}

// Routes builds the router
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	if s.app.Config.Metrics.Enabled {
		r.Handle(s.app.Config.Metrics.Path, metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/overview", s.handleOverview)
		r.Get("/seasons", s.handleSeasons)
		r.Route("/seasons/{year}", func(r chi.Router) {
			r.Get("/standings/{kind}", s.handleStandings)
			r.Get("/champion", s.handleChampion)
			r.Get("/calendar", s.handleCalendar)
			r.Get("/drivers", s.handleSeasonDrivers)
			r.Get("/rounds/{round}", s.handleRace)
		})
		r.Get("/teams/{ref}/lineup", s.handleLineup)
		r.Get("/drivers/{ref}", s.handleDriver)
		r.Get("/constructors/{ref}", s.handleConstructor)
		r.Get("/circuits/{ref}", s.handleCircuit)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	readTimeout := time.Duration(s.app.Config.Server.ReadTimeoutSecond) * time.Second
	s.server = &http.Server{
		Addr:              ":" + strconv.Itoa(s.app.Config.Server.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: readTimeout,
		ReadTimeout:       readTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.server.Addr).Info("API server starting")
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("API server shutting down")
		return s.server.Shutdown(shutdownCtx)
	}
}

// instrument counts responses per route pattern and status
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordAPIRequest(route, strconv.Itoa(status))

		s.logger.WithFields(logrus.Fields{
			"route":       route,
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  middleware.GetReqID(r.Context()),
		}).Debug("Request served")
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// fail maps domain errors to status codes
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, models.ErrInvalidRef), errors.Is(err, models.ErrInvalidYear):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, err)
	default:
		s.logger.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func pathInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, chi.URLParam(r, name))
	}
	return v, nil
}

// queryInt returns 0 when the parameter is absent
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}
