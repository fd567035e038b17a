package menus

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lunchline/lunchline/internal/ordering"
	"github.com/lunchline/lunchline/internal/platform/httpx"
	"github.com/lunchline/lunchline/internal/rbac"
	"github.com/lunchline/lunchline/internal/vendors"
)

// Handler exposes daily menu endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw rbac.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		rbac:      mw,
		validator: validator.New(),
	}
}

// MountRoutes registers menu routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireUser)
		r.Get("/", h.listByDate)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAdmin)
		r.Put("/", h.replaceDay)
	})
}

type menuResponse struct {
	ID         int64  `json:"id"`
	VendorID   int64  `json:"vendor_id"`
	VendorName string `json:"vendor_name,omitempty"`
	MenuDate   string `json:"menu_date"`
	Name       string `json:"name"`
	PriceYen   int    `json:"price_yen"`
}

func toMenuResponses(items []MenuWithVendor) []menuResponse {
	resp := make([]menuResponse, 0, len(items))
	for i := range items {
		resp = append(resp, menuResponse{
			ID:         items[i].ID,
			VendorID:   items[i].VendorID,
			VendorName: items[i].VendorName,
			MenuDate:   ordering.FormatISODate(items[i].MenuDate),
			Name:       items[i].Name,
			PriceYen:   items[i].PriceYen,
		})
	}
	return resp
}

func (h *Handler) listByDate(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "date query parameter is required")
		return
	}
	date, err := ordering.ParseISODate(raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "date must use YYYY-MM-DD")
		return
	}
	items, err := h.service.ListByDate(r.Context(), date)
	if err != nil {
		h.logger.Error("list menus", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toMenuResponses(items))
}

func (h *Handler) replaceDay(w http.ResponseWriter, r *http.Request) {
	principal, _ := rbac.PrincipalFromContext(r.Context())

	var in ReplaceDayInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	items, err := h.service.ReplaceDay(r.Context(), in, principal.UserID)
	if err != nil {
		switch {
		case errors.Is(err, ordering.ErrInvalidDateFormat):
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "menu_date must use YYYY-MM-DD")
		case errors.Is(err, vendors.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", "vendor not found")
		default:
			h.logger.Error("replace menu day", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, toMenuResponses(items))
}
