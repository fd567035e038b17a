package ordering

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lunchline/lunchline/internal/observability"
	"github.com/lunchline/lunchline/internal/platform/httpx"
	"github.com/lunchline/lunchline/internal/rbac"
)

// Handler exposes order and closing-period endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
	metrics   *observability.Metrics
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw rbac.Middleware, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		rbac:      mw,
		validator: validator.New(),
		metrics:   metrics,
	}
}

// MountRoutes registers order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireUser)
		r.Get("/orders", h.list)
		r.Post("/orders", h.create)
		r.Get("/orders/check", h.checkDate)
		r.Get("/orders/{id}", h.get)
		r.Put("/orders/{id}", h.update)
		r.Post("/orders/{id}/cancel", h.cancel)
		r.Get("/periods", h.listPeriods)
		r.Get("/periods/current", h.currentPeriod)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAdmin)
		r.Post("/orders/{id}/reassign", h.reassign)
		r.Get("/periods/{index}/orders", h.periodOrders)
		r.Get("/periods/{index}/export", h.exportPeriod)
	})
}

type createOrderBody struct {
	UserID    *int64  `json:"user_id"`
	OrderDate string  `json:"order_date" validate:"required"`
	MenuID    *int64  `json:"menu_id"`
	Note      *string `json:"note"`
}

type updateOrderBody struct {
	MenuID *int64  `json:"menu_id"`
	Note   *string `json:"note"`
}

type reassignBody struct {
	NewUserID int64 `json:"new_user_id" validate:"required"`
}

type orderResponse struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"user_id"`
	UserName    string  `json:"user_name,omitempty"`
	MenuID      *int64  `json:"menu_id,omitempty"`
	MenuName    *string `json:"menu_name,omitempty"`
	OrderDate   string  `json:"order_date"`
	Status      string  `json:"status"`
	Note        *string `json:"note,omitempty"`
	CancelledBy *int64  `json:"cancelled_by,omitempty"`
	CancelledAt *string `json:"cancelled_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Total  int             `json:"total"`
}

type decisionResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

type periodResponse struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Label     string `json:"label"`
}

type periodLocationResponse struct {
	Current *periodResponse `json:"current,omitempty"`
	Next    *periodResponse `json:"next,omitempty"`
}

func toOrderResponse(o *Order) orderResponse {
	resp := orderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		MenuID:    o.MenuID,
		OrderDate: FormatISODate(o.OrderDate),
		Status:    string(o.Status),
		Note:      o.Note,
		CreatedAt: o.CreatedAt.Format(time.RFC3339),
	}
	resp.CancelledBy = o.CancelledBy
	if o.CancelledAt != nil {
		at := o.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &at
	}
	return resp
}

func toPeriodResponse(p ClosingPeriod) periodResponse {
	return periodResponse{
		StartDate: FormatISODate(p.StartDate),
		EndDate:   FormatISODate(p.EndDate),
		Label:     p.Label,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var body createOrderBody
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	target := actor.ID
	if body.UserID != nil {
		target = *body.UserID
	}
	order, err := h.service.Create(r.Context(), CreateOrderRequest{
		TargetUserID: target,
		OrderDate:    body.OrderDate,
		MenuID:       body.MenuID,
		Note:         body.Note,
	}, actor)
	if err != nil {
		h.respondError(w, err, "create order")
		return
	}
	httpx.JSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	order, err := h.service.Get(r.Context(), id, actor)
	if err != nil {
		h.respondError(w, err, "get order")
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	req := ListOrdersRequest{}
	q := r.URL.Query()
	if v := q.Get("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user_id")
			return
		}
		req.UserID = &id
	}
	if v := q.Get("from"); v != "" {
		from, err := ParseISODate(v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid from date")
			return
		}
		req.DateFrom = &from
	}
	if v := q.Get("to"); v != "" {
		to, err := ParseISODate(v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid to date")
			return
		}
		req.DateTo = &to
	}
	if v := q.Get("status"); v != "" {
		status := OrderStatus(v)
		if status != OrderStatusPlaced && status != OrderStatusCancelled {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid status")
			return
		}
		req.Status = &status
	}
	if v := q.Get("limit"); v != "" {
		req.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		req.Offset, _ = strconv.Atoi(v)
	}

	orders, total, err := h.service.List(r.Context(), req, actor)
	if err != nil {
		h.respondError(w, err, "list orders")
		return
	}
	resp := orderListResponse{Orders: make([]orderResponse, 0, len(orders)), Total: total}
	for i := range orders {
		item := toOrderResponse(&orders[i].Order)
		item.UserName = orders[i].UserName
		item.MenuName = orders[i].MenuName
		resp.Orders = append(resp.Orders, item)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	var body updateOrderBody
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	order, err := h.service.Update(r.Context(), id, UpdateOrderRequest{MenuID: body.MenuID, Note: body.Note}, actor)
	if err != nil {
		h.respondError(w, err, "update order")
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	order, err := h.service.Cancel(r.Context(), id, actor)
	if err != nil {
		h.respondError(w, err, "cancel order")
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) reassign(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	var body reassignBody
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	order, err := h.service.Reassign(r.Context(), id, body.NewUserID, actor)
	if err != nil {
		h.respondError(w, err, "reassign order")
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) checkDate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "date query parameter is required")
		return
	}
	op := OpCreate
	switch r.URL.Query().Get("op") {
	case "", "create":
	case "edit":
		op = OpEdit
	case "cancel":
		op = OpCancel
	default:
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown op")
		return
	}
	decision, err := h.service.CheckDate(r.Context(), date, actor, op)
	if err != nil {
		h.respondError(w, err, "check date")
		return
	}
	httpx.JSON(w, http.StatusOK, decisionResponse{
		Allowed: decision.Allowed,
		Reason:  string(decision.Reason),
	})
}

func (h *Handler) listPeriods(w http.ResponseWriter, r *http.Request) {
	count := 6
	if v := r.URL.Query().Get("count"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 24 {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "count must be between 1 and 24")
			return
		}
		count = parsed
	}
	periods, err := h.service.ClosingPeriods(r.Context(), count)
	if err != nil {
		h.respondError(w, err, "list periods")
		return
	}
	resp := make([]periodResponse, 0, len(periods))
	for _, p := range periods {
		resp = append(resp, toPeriodResponse(p))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) currentPeriod(w http.ResponseWriter, r *http.Request) {
	loc, err := h.service.CurrentPeriod(r.Context(), 6)
	if err != nil {
		h.respondError(w, err, "current period")
		return
	}
	current := toPeriodResponse(loc.Current)
	resp := periodLocationResponse{Current: &current}
	if loc.Next != nil {
		p := toPeriodResponse(*loc.Next)
		resp.Next = &p
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) periodOrders(w http.ResponseWriter, r *http.Request) {
	period, ok := h.resolvePeriod(w, r)
	if !ok {
		return
	}
	orders, err := h.service.PeriodOrders(r.Context(), period)
	if err != nil {
		h.respondError(w, err, "period orders")
		return
	}
	resp := orderListResponse{Orders: make([]orderResponse, 0, len(orders)), Total: len(orders)}
	for i := range orders {
		item := toOrderResponse(&orders[i].Order)
		item.UserName = orders[i].UserName
		item.MenuName = orders[i].MenuName
		resp.Orders = append(resp.Orders, item)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) exportPeriod(w http.ResponseWriter, r *http.Request) {
	period, ok := h.resolvePeriod(w, r)
	if !ok {
		return
	}
	orders, err := h.service.PeriodOrders(r.Context(), period)
	if err != nil {
		h.respondError(w, err, "export period")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="period-orders.csv"`)
	if r.URL.Query().Get("summary") == "1" {
		err = WritePeriodSummaryCSV(w, period, orders)
	} else {
		err = WritePeriodCSV(w, period, orders)
	}
	if err != nil {
		h.logger.Error("write period csv", slog.Any("error", err))
	}
}

func (h *Handler) resolvePeriod(w http.ResponseWriter, r *http.Request) (ClosingPeriod, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid period index")
		return ClosingPeriod{}, false
	}
	periods, err := h.service.ClosingPeriods(r.Context(), index+1)
	if err != nil {
		h.respondError(w, err, "resolve period")
		return ClosingPeriod{}, false
	}
	if index >= len(periods) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no such period")
		return ClosingPeriod{}, false
	}
	return periods[index], true
}

func (h *Handler) respondError(w http.ResponseWriter, err error, action string) {
	var denial *DenialError
	switch {
	case errors.As(err, &denial):
		h.metrics.CountDenial(string(denial.Reason))
		httpx.Denial(w, string(denial.Reason), denialDetail(denial.Reason))
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "order not found")
	case errors.Is(err, ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "not allowed for this order")
	case errors.Is(err, ErrDuplicateOrder):
		httpx.Problem(w, http.StatusConflict, "Conflict", "an order already exists for this date")
	case errors.Is(err, ErrInvalidDateFormat):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "dates must use YYYY-MM-DD")
	default:
		h.logger.Error(action, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func denialDetail(reason DenialReason) string {
	switch reason {
	case ReasonInvalidDate:
		return "the date is not a valid calendar date"
	case ReasonPastDate:
		return "orders cannot target past dates"
	case ReasonTooFarAhead:
		return "the date is beyond the ordering horizon"
	case ReasonDateUnavailable:
		return "ordering is not available on this date"
	case ReasonDeadlinePassed:
		return "the same-day deadline has passed"
	default:
		return ""
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func actorFromRequest(r *http.Request) (Actor, bool) {
	principal, ok := rbac.PrincipalFromContext(r.Context())
	if !ok {
		return Actor{}, false
	}
	return Actor{ID: principal.UserID, IsAdmin: principal.IsAdmin}, true
}
