package settings

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lunchline/lunchline/internal/platform/httpx"
	"github.com/lunchline/lunchline/internal/rbac"
)

// Handler exposes the system settings endpoints. All routes are admin only.
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

// MountRoutes registers settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAdmin)
		r.Get("/", h.show)
		r.Put("/", h.update)
	})
}

type settingsResponse struct {
	MaxOrderDaysAhead *int   `json:"max_order_days_ahead"`
	ClosingDay        *int   `json:"closing_day"`
	UpdatedAt         string `json:"updated_at,omitempty"`
}

func toSettingsResponse(s Settings) settingsResponse {
	resp := settingsResponse{
		MaxOrderDaysAhead: s.MaxOrderDaysAhead,
		ClosingDay:        s.ClosingDay,
	}
	if !s.UpdatedAt.IsZero() {
		resp.UpdatedAt = s.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	current, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("load settings", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toSettingsResponse(current))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	principal, ok := rbac.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var in UpdateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	saved, err := h.service.Update(r.Context(), in, principal.UserID)
	if err != nil {
		switch {
		case errors.Is(err, ErrClosingDayRange), errors.Is(err, ErrNegativeDaysAhead):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		default:
			h.logger.Error("update settings", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, toSettingsResponse(saved))
}
