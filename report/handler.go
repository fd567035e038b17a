package report

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lunchline/lunchline/internal/ordering"
	"github.com/lunchline/lunchline/internal/platform/httpx"
	"github.com/lunchline/lunchline/internal/rbac"
)

// Handler manages report endpoints.
type Handler struct {
	client   *Client
	ordering *ordering.Service
	rbac     rbac.Middleware
	logger   *slog.Logger
}

// NewHandler creates a report handler.
func NewHandler(client *Client, orderingService *ordering.Service, mw rbac.Middleware, logger *slog.Logger) *Handler {
	return &Handler{client: client, ordering: orderingService, rbac: mw, logger: logger}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAdmin)
		r.Get("/ping", h.ping)
		r.Get("/periods/{index}/pdf", h.periodPDF)
	})
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) periodPDF(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid period index")
		return
	}
	periods, err := h.ordering.ClosingPeriods(r.Context(), index+1)
	if err != nil {
		h.logger.Error("resolve period", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if index >= len(periods) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no such period")
		return
	}
	period := periods[index]

	orders, err := h.ordering.PeriodOrders(r.Context(), period)
	if err != nil {
		h.logger.Error("load period orders", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	html, err := PeriodHTML(period, orders)
	if err != nil {
		h.logger.Error("render period html", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	pdf, err := h.client.RenderHTML(r.Context(), html)
	if err != nil {
		h.logger.Error("render period pdf", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=period-orders.pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
