package handler

import (
	"encoding/json"
	"net/http"

	"agri-mandi/internal/model"
	"agri-mandi/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r, h.logger)
	if !ok {
		return
	}

	var req model.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	order, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /api/orders requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r, h.logger)
	if !ok {
		return
	}

	limit, offset := pagination(r)

	orders, err := h.service.List(r.Context(), actor, limit, offset)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// Get handles GET /api/orders/{id} requests.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := parseID(w, r, "id", h.logger)
	if !ok {
		return
	}

	order, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Transition handles POST /api/orders/{id}/transition requests.
func (h *OrderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := parseID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	order, err := h.service.Transition(r.Context(), actor, id, &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Confirm handles POST /api/orders/{id}/confirm requests. It is a
// convenience alias for a transition to confirmed.
func (h *OrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := parseID(w, r, "id", h.logger)
	if !ok {
		return
	}

	order, err := h.service.Transition(r.Context(), actor, id, &model.TransitionRequest{
		ToStatus: model.StatusConfirmed,
	})
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Cancel handles POST /api/orders/{id}/cancel requests.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := parseID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.CancelRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
			return
		}
	}

	order, err := h.service.Cancel(r.Context(), actor, id, &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// RecordPayment handles POST /api/orders/{id}/payment requests.
func (h *OrderHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := parseID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.PaymentResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	order, err := h.service.RecordPayment(r.Context(), actor, id, &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// History handles GET /api/orders/{id}/history requests.
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := parseID(w, r, "id", h.logger)
	if !ok {
		return
	}

	history, err := h.service.History(r.Context(), actor, id)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, history)
}

// Status handles GET /api/orders/{id}/status requests.
func (h *OrderHandler) Status(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := parseID(w, r, "id", h.logger)
	if !ok {
		return
	}

	status, err := h.service.Status(r.Context(), actor, id)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, status)
}
