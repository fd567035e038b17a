package calendar

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lunchline/lunchline/internal/ordering"
	"github.com/lunchline/lunchline/internal/platform/httpx"
	"github.com/lunchline/lunchline/internal/rbac"
)

// Handler exposes the ordering calendar endpoints.
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

// MountRoutes registers calendar routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireUser)
		r.Get("/month", h.listMonth)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAdmin)
		r.Put("/days", h.upsertDay)
	})
}

type dayResponse struct {
	TargetDate   string  `json:"target_date"`
	IsAvailable  bool    `json:"is_available"`
	DeadlineTime *string `json:"deadline_time,omitempty"`
	Note         *string `json:"note,omitempty"`
}

func toDayResponse(d *Day) dayResponse {
	return dayResponse{
		TargetDate:   ordering.FormatISODate(d.TargetDate),
		IsAvailable:  d.IsAvailable,
		DeadlineTime: d.DeadlineTime,
		Note:         d.Note,
	}
}

func (h *Handler) listMonth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil || year < 2000 || year > 2100 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid year")
		return
	}
	monthNum, err := strconv.Atoi(q.Get("month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid month")
		return
	}

	days, err := h.service.ListMonth(r.Context(), year, time.Month(monthNum))
	if err != nil {
		h.logger.Error("list calendar month", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	resp := make([]dayResponse, 0, len(days))
	for i := range days {
		resp = append(resp, toDayResponse(&days[i]))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) upsertDay(w http.ResponseWriter, r *http.Request) {
	principal, ok := rbac.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var in UpsertDayInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	day, err := h.service.UpsertDay(r.Context(), in, principal.UserID)
	if err != nil {
		switch {
		case errors.Is(err, ordering.ErrInvalidDateFormat):
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "target_date must use YYYY-MM-DD")
		case errors.Is(err, ordering.ErrInvalidTimeFormat):
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "deadline_time must use HH:MM")
		default:
			h.logger.Error("upsert calendar day", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, toDayResponse(day))
}
