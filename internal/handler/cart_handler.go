package handler

import (
	"encoding/json"
	"net/http"

	"agri-mandi/internal/model"
	"agri-mandi/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles cart HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Summary handles GET /api/cart requests.
func (h *CartHandler) Summary(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r, h.logger)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), actor)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r, h.logger)
	if !ok {
		return
	}

	var req model.AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	item, err := h.service.AddItem(r.Context(), actor, &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// RemoveItem handles DELETE /api/cart/items/{productId} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r, h.logger)
	if !ok {
		return
	}

	productID, ok := parseID(w, r, "productId", h.logger)
	if !ok {
		return
	}

	if err := h.service.RemoveItem(r.Context(), actor, productID); err != nil {
		respondError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /api/cart requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.Clear(r.Context(), actor); err != nil {
		respondError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
