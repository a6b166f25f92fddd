package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"reportdash/internal/dashboard"
	"reportdash/internal/errorview"
	"reportdash/internal/render"
	"reportdash/internal/trace"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Latest() (*dashboard.Result, bool)
	Reload(ctx context.Context) (*dashboard.Result, error)
	Trace() *trace.Collector
	Ready() bool
}

const msgNotLoaded = "dataset not loaded yet"

// NewMux builds the router.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOrDefault(corsAllowedOrigins, []string{"*"}),
			AllowedMethods: corsOrDefault(corsAllowedMethods, []string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			AllowedHeaders: corsOrDefault(corsAllowedHeaders, []string{"Accept", "Content-Type", "X-Log-Level"}),
			MaxAge:         300,
		}))
	}

	h := &handlers{svc: svc}
	r.Get("/", h.page)
	r.Route("/api", func(r chi.Router) {
		r.Get("/dataset", h.dataset)
		r.Get("/board", h.board)
		r.Post("/reload", h.reload)
		r.Get("/trace", h.traceJSON)
	})
	r.Get("/debug/trace", h.traceText)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

type handlers struct {
	svc Service
}

// page godoc
// @Summary      Dashboard board page
// @Description  Renders the latest board as HTML, or the failure page (503) when no report could be loaded.
// @Tags         dashboard
// @Produce      html
// @Success      200  {string}  string
// @Failure      503  {string}  string
// @Router       / [get]
func (h *handlers) page(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	res, ok := h.svc.Latest()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	switch {
	case !ok:
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("<!DOCTYPE html><title>Loading</title><p>Loading dashboard data...</p>"))
		logRequestEnd(r, "page", http.StatusServiceUnavailable, start, nil)
	case res.Failure != nil:
		w.WriteHeader(http.StatusServiceUnavailable)
		if err := res.Failure.WriteHTML(w); err != nil {
			logError("render failure page", err)
		}
		logRequestEnd(r, "page", http.StatusServiceUnavailable, start, nil)
	default:
		if err := render.WriteHTML(w, res.Board); err != nil {
			logError("render board", err)
		}
		logRequestEnd(r, "page", http.StatusOK, start, nil)
	}
}

// dataset godoc
// @Summary      Latest dataset
// @Description  Returns the parsed reports of the latest load cycle; failed resources are null.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  types.DatasetResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /api/dataset [get]
func (h *handlers) dataset(w http.ResponseWriter, r *http.Request) {
	res, ok := h.latestAnnounced(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, datasetResponse(res))
}

// board godoc
// @Summary      Rendered board
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  types.BoardResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /api/board [get]
func (h *handlers) board(w http.ResponseWriter, r *http.Request) {
	res, ok := h.latestAnnounced(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res.Board)
}

func (h *handlers) latestAnnounced(w http.ResponseWriter) (*dashboard.Result, bool) {
	res, ok := h.svc.Latest()
	if !ok {
		writeJSONError(w, http.StatusServiceUnavailable, msgNotLoaded)
		return nil, false
	}
	if res.Failure != nil {
		writeJSONError(w, http.StatusServiceUnavailable, dashboard.ErrNoData.Error())
		return nil, false
	}
	return res, true
}

// reload godoc
// @Summary      Run a load cycle
// @Description  Retrieves every configured report again and announces the result.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  types.ReloadResponse
// @Failure      500  {object}  types.ErrorResponse
// @Router       /api/reload [post]
func (h *handlers) reload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	// Join server base context with request context so shutdown cancels work too.
	ctx, cancel := reloadContext(r)
	defer cancel()
	res, err := h.svc.Reload(ctx)
	if err != nil {
		status := http.StatusInternalServerError
		var he HTTPError
		if errors.As(err, &he) {
			status = he.StatusCode()
		}
		countReload("error")
		writeJSONError(w, status, err.Error())
		logRequestEnd(r, "reload", status, start, err)
		return
	}
	switch {
	case res.Failure != nil:
		countReload("failed")
	case res.IsSample:
		countReload("sample")
	default:
		countReload("ok")
	}
	writeJSON(w, http.StatusOK, reloadResponse(res))
	logRequestEnd(r, "reload", http.StatusOK, start, nil)
}

// traceJSON godoc
// @Summary      Diagnostic trace
// @Tags         debug
// @Produce      json
// @Success      200  {object}  types.TraceResponse
// @Router       /api/trace [get]
func (h *handlers) traceJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, traceResponse(h.svc.Trace()))
}

func (h *handlers) traceText(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(errorview.New(h.svc.Trace()).TraceText()))
}
