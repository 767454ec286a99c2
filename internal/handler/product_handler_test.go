package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"agri-mandi/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of service.ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, sellerID uuid.UUID, req *model.CreateProductRequest) (*model.Product, error) {
	args := m.Called(ctx, sellerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Restock(ctx context.Context, sellerID, productID uuid.UUID, req *model.RestockRequest) error {
	args := m.Called(ctx, sellerID, productID, req)
	return args.Error(0)
}

// productRouter mounts a product handler on a chi mux for testing.
func productRouter(svc *MockProductService) http.Handler {
	h := NewProductHandler(svc, zerolog.Nop())
	r := chi.NewRouter()
	r.Get("/api/products", h.List)
	r.Post("/api/products", h.Create)
	r.Get("/api/products/{id}", h.Get)
	r.Post("/api/products/{id}/restock", h.Restock)
	return r
}

func TestProductHandler_List(t *testing.T) {
	svc := new(MockProductService)
	router := productRouter(svc)

	products := []model.Product{
		{ID: uuid.New(), Name: "Basmati Rice", Unit: model.UnitKg, PricePerUnit: 45.50},
	}
	svc.On("List", mock.Anything, 0, 0).Return(products, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got []model.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Basmati Rice", got[0].Name)
}

func TestProductHandler_Get_NotFound(t *testing.T) {
	svc := new(MockProductService)
	router := productRouter(svc)

	id := uuid.New()
	svc.On("Get", mock.Anything, id).Return(nil, model.ErrProductNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+id.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), model.ErrCodeProductNotFound)
}

func TestProductHandler_Create(t *testing.T) {
	svc := new(MockProductService)
	router := productRouter(svc)

	sellerID := uuid.New()
	product := &model.Product{ID: uuid.New(), SellerID: sellerID, Name: "Alphonso Mango"}

	svc.On("Create", mock.Anything, sellerID, mock.AnythingOfType("*model.CreateProductRequest")).Return(product, nil)

	req := actorRequest(http.MethodPost, "/api/products", sellerID, model.CreateProductRequest{
		Name:             "Alphonso Mango",
		Unit:             model.UnitDozen,
		PricePerUnit:     350,
		MinOrderQuantity: 1,
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestProductHandler_Restock(t *testing.T) {
	svc := new(MockProductService)
	router := productRouter(svc)

	sellerID := uuid.New()
	productID := uuid.New()

	svc.On("Restock", mock.Anything, sellerID, productID, mock.AnythingOfType("*model.RestockRequest")).Return(nil)

	req := actorRequest(http.MethodPost, "/api/products/"+productID.String()+"/restock", sellerID, model.RestockRequest{Quantity: 25})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}

func TestProductHandler_Restock_NonOwner(t *testing.T) {
	svc := new(MockProductService)
	router := productRouter(svc)

	sellerID := uuid.New()
	productID := uuid.New()

	svc.On("Restock", mock.Anything, sellerID, productID, mock.Anything).Return(model.ErrPermissionDenied)

	req := actorRequest(http.MethodPost, "/api/products/"+productID.String()+"/restock", sellerID, model.RestockRequest{Quantity: 25})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
