package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"agri-mandi/internal/middleware"
	"agri-mandi/internal/model"
	"agri-mandi/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProductHandler handles catalogue HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products requests.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	products, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// Get handles GET /api/products/{id} requests.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", h.logger)
	if !ok {
		return
	}

	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Create handles POST /api/products requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r, h.logger)
	if !ok {
		return
	}

	var req model.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	product, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// Restock handles POST /api/products/{id}/restock requests.
func (h *ProductHandler) Restock(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r, h.logger)
	if !ok {
		return
	}

	id, ok := parseID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.RestockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.service.Restock(r.Context(), actor, id, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pagination extracts limit and offset query parameters.
func pagination(r *http.Request) (limit, offset int) {
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, _ = strconv.Atoi(v)
	}
	return limit, offset
}

// parseID parses a UUID path parameter, writing a 400 response on failure.
func parseID(w http.ResponseWriter, r *http.Request, param string, logger zerolog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid "+param+" path parameter", logger)
		return uuid.Nil, false
	}
	return id, true
}

// actorOrFail extracts the actor identity, writing a 401 response when absent.
func actorOrFail(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (uuid.UUID, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "missing actor identity", logger)
		return uuid.Nil, false
	}
	return actor, true
}
