// Package httpapi implements the HTTP handlers for the tracker service.
//
// All application routes expect an x-user-id header forwarded by the Gateway.
//
// Routes:
//
//	GET    /health                        → liveness
//	POST   /applications                  → create an application
//	GET    /applications                  → list (filters, paging, sort)
//	GET    /applications/summary          → counts per status
//	GET    /applications/{id}             → one application with its history
//	PUT    /applications/{id}             → partial update
//	PUT    /applications/{id}/status      → policy-checked status change
//	DELETE /applications/{id}             → delete with history
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gustavobragaia/job-application/internal/kanban"
)

const userIDHeader = "x-user-id"

// Handler holds shared dependencies.
type Handler struct {
	svc     *kanban.Service
	logger  *slog.Logger
	version string
}

// Option configures the Handler.
type Option func(*Handler)

// WithLogger sets the logger used for internal errors.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(h *Handler) { h.version = v }
}

// NewHandler returns a configured Handler.
func NewHandler(svc *kanban.Service, opts ...Option) *Handler {
	h := &Handler{svc: svc, logger: slog.Default(), version: "dev"}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns a chi.Router with every tracker-service route mounted.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	r.Route("/applications", func(r chi.Router) {
		r.Use(requireUser)
		r.Post("/", h.createApplication)
		r.Get("/", h.listApplications)
		r.Get("/summary", h.summary)
		r.Get("/{id}", h.getApplication)
		r.Put("/{id}", h.updateApplication)
		r.Put("/{id}/status", h.changeStatus)
		r.Delete("/{id}", h.deleteApplication)
	})
	return r
}

// ─── Individual handlers ──────────────────────────────────────────────────────

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	jsonOK(w, map[string]string{
		"status":  "ok",
		"service": "tracker-service",
		"version": h.version,
	})
}

func (h *Handler) createApplication(w http.ResponseWriter, r *http.Request) {
	var in kanban.NewApplication
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := in.Validate(); err != nil {
		h.serviceError(w, r, err)
		return
	}

	app, err := h.svc.Create(r.Context(), userID(r), in)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	jsonStatus(w, http.StatusCreated, map[string]any{"application": app})
}

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	f, err := parseListFilter(r)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	page, err := h.svc.List(r.Context(), userID(r), f)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	jsonOK(w, page)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Summary(r.Context(), userID(r))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	jsonOK(w, map[string]any{"summary": sum})
}

func (h *Handler) getApplication(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	jsonOK(w, map[string]any{"application": detail})
}

func (h *Handler) updateApplication(w http.ResponseWriter, r *http.Request) {
	var p kanban.Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := p.Validate(); err != nil {
		h.serviceError(w, r, err)
		return
	}

	app, err := h.svc.UpdateApplication(r.Context(), userID(r), chi.URLParam(r, "id"), p)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	jsonOK(w, map[string]any{"application": app})
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ToStatus string  `json:"toStatus"`
		Reason   *string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ToStatus == "" {
		jsonError(w, "body must contain toStatus", http.StatusBadRequest)
		return
	}

	to, err := kanban.ParseStatus(body.ToStatus)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	app, err := h.svc.ChangeStatus(r.Context(), userID(r), chi.URLParam(r, "id"), to, body.Reason)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	jsonOK(w, map[string]any{"application": app})
}

func (h *Handler) deleteApplication(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		h.serviceError(w, r, err)
		return
	}
	jsonOK(w, map[string]bool{"ok": true})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// requireUser rejects requests without the Gateway's identity header.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(userIDHeader) == "" {
			jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userID(r *http.Request) string { return r.Header.Get(userIDHeader) }

func parseListFilter(r *http.Request) (kanban.ListFilter, error) {
	q := r.URL.Query()
	f := kanban.ListFilter{
		Company: q.Get("company"),
		Role:    q.Get("role"),
		Query:   q.Get("q"),
		SortBy:  kanban.SortField(q.Get("sortBy")),
		Order:   kanban.SortOrder(q.Get("order")),
	}
	if s := q.Get("status"); s != "" {
		st := kanban.Status(s)
		f.Status = &st
	}

	var err error
	if f.Page, err = positiveInt(q.Get("page"), "page"); err != nil {
		return f, err
	}
	if f.Limit, err = positiveInt(q.Get("limit"), "limit"); err != nil {
		return f, err
	}
	return f, f.Validate()
}

// positiveInt parses an optional query parameter; empty yields 0.
func positiveInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &kanban.ValidationError{Msg: name + " must be a positive integer"}
	}
	return n, nil
}

// serviceError maps domain errors to status codes. Anything unrecognised is
// logged and reported as a generic 500.
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *kanban.ValidationError
		te *kanban.TransitionError
	)
	switch {
	case errors.Is(err, kanban.ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &te):
		jsonError(w, te.Error(), http.StatusConflict)
	case errors.As(err, &ve):
		jsonError(w, ve.Msg, http.StatusBadRequest)
	default:
		h.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		jsonError(w, "internal server error", http.StatusInternalServerError)
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	jsonStatus(w, http.StatusOK, v)
}

func jsonStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	jsonStatus(w, code, map[string]string{"error": msg})
}
