package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lepinkainen/cinemabot/internal/metrics"
	"github.com/lepinkainen/cinemabot/internal/resolver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd exposes the resolver and history over HTTP.
type ServeCmd struct {
	Addr string `help:"Listen address" default:":8080"`
}

func (s *ServeCmd) Run(_ *Globals) error {
	a, err := loadApp(true)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	reg := prometheus.NewRegistry()
	metrics.Register(reg)

	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           newRouter(a, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", s.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRouter builds the HTTP API. gatherer backs the /metrics endpoint.
func newRouter(a *app, gatherer prometheus.Gatherer) http.Handler {
	h := &handlers{app: a}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/search", h.search)
	r.Get("/history/{user}", h.history)
	r.Get("/top/{user}", h.top)
	r.Get("/settings/{user}", h.getSettings)
	r.Put("/settings/{user}", h.putSettings)

	return r
}

type handlers struct {
	app *app
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "invalid_query", "q is required")
		return
	}
	userID, err := parseUser(r.URL.Query().Get("user"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_user", err.Error())
		return
	}

	toggles := h.app.toggles(r.Context(), userID)
	res := h.app.resolver.Resolve(r.Context(), userID, query, toggles)

	// Temporary posters are gone once the response is written.
	defer h.app.release(res)

	body := searchResponse{Result: res, Text: res.Text()}
	if res.PosterTemporary {
		body.PosterPath = ""
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	userID, limit, ok := userAndLimit(w, r)
	if !ok {
		return
	}
	searches, err := h.app.history.ListRecentSearches(r.Context(), userID, limit)
	if err != nil {
		slog.Error("Failed to list searches", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "history_failed", "failed to read history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": userID, "searches": searches})
}

func (h *handlers) top(w http.ResponseWriter, r *http.Request) {
	userID, limit, ok := userAndLimit(w, r)
	if !ok {
		return
	}
	stats, err := h.app.history.ListTopMovies(r.Context(), userID, limit)
	if err != nil {
		slog.Error("Failed to list movies", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "history_failed", "failed to read statistics")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": userID, "movies": stats})
}

func (h *handlers) getSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUser(chi.URLParam(r, "user"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_user", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.app.toggles(r.Context(), userID))
}

func (h *handlers) putSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUser(chi.URLParam(r, "user"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_user", err.Error())
		return
	}

	// Absent fields keep their current value.
	var patch struct {
		Metadata *bool `json:"metadata"`
		Links    *bool `json:"links"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "expected JSON object with metadata and/or links")
		return
	}

	toggles := h.app.toggles(r.Context(), userID)
	if patch.Metadata != nil {
		toggles.Metadata = *patch.Metadata
	}
	if patch.Links != nil {
		toggles.Links = *patch.Links
	}
	if err := h.app.history.SetToggles(r.Context(), userID, toggles); err != nil {
		slog.Error("Failed to save settings", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "settings_failed", "failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, toggles)
}

type searchResponse struct {
	resolver.Result
	Text string `json:"text"`
}

func parseUser(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("user must be an integer")
	}
	return id, nil
}

func userAndLimit(w http.ResponseWriter, r *http.Request) (int64, int, bool) {
	userID, err := parseUser(chi.URLParam(r, "user"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_user", err.Error())
		return 0, 0, false
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 100 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be between 1 and 100")
			return 0, 0, false
		}
	}
	return userID, limit, true
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
