package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"agri-mandi/internal/cache"
	"agri-mandi/internal/coupon"
	"agri-mandi/internal/handler"
	"agri-mandi/internal/model"
	"agri-mandi/internal/notify"
	"agri-mandi/internal/repository"
	"agri-mandi/internal/router"
	"agri-mandi/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key"

func setupTestServer(t *testing.T, testDB *TestDB) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	// Initialize repositories
	productRepo := repository.NewProductRepository(testDB.Pool, logger)
	cartRepo := repository.NewCartRepository(testDB.Pool, logger)
	addressRepo := repository.NewAddressRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)

	// An empty coupon catalogue: every code is invalid
	validator := coupon.NewValidatorWithStore(coupon.NewMapStore(0), logger)
	t.Cleanup(func() {
		validator.Close()
	})

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, addressRepo, validator,
		cache.NewNopCache(), notify.NewNopDispatcher(), logger)

	// Initialize handlers
	productHandler := handler.NewProductHandler(productService, logger)
	cartHandler := handler.NewCartHandler(cartService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)

	// Create router
	return router.New(productHandler, cartHandler, orderHandler, testAPIKey, logger)
}

// doJSON issues an authenticated JSON request on behalf of the given actor.
func doJSON(server http.Handler, method, target string, actor uuid.UUID, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("X-API-Key", testAPIKey)
	req.Header.Set("X-Actor-ID", actor.String())
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func TestAPI_Authentication(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	t.Run("health check requires no credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing API key is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing actor identity is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.Header.Set("X-API-Key", testAPIKey)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestOrderAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	t.Run("place, confirm, and track an order over HTTP", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		buyerID := uuid.New()
		sellerID := uuid.New()
		product := SeedProduct(t, testDB.Pool, sellerID, 100, 5)
		address := SeedAddress(t, testDB.Pool, buyerID)

		w := doJSON(server, http.MethodPost, "/api/orders", buyerID, model.CreateOrderRequest{
			ProductID:         product.ID,
			Quantity:          10,
			DeliveryAddressID: address.ID,
			PaymentMethod:     "upi",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var order model.Order
		require.NoError(t, json.NewDecoder(w.Body).Decode(&order))
		assert.Equal(t, model.StatusPending, order.OrderStatus)
		assert.InDelta(t, 527.75, order.TotalAmount, 0.001)
		assert.Equal(t, 90.0, StockOf(t, testDB.Pool, product.ID))

		// Seller confirms
		w = doJSON(server, http.MethodPost, "/api/orders/"+order.ID.String()+"/transition", sellerID,
			model.TransitionRequest{ToStatus: model.StatusConfirmed})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		// Buyer polls status
		w = doJSON(server, http.MethodGet, "/api/orders/"+order.ID.String()+"/status", buyerID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var status model.OrderStatusResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
		assert.Equal(t, model.StatusConfirmed, status.Status)

		// Ledger is visible to both parties
		w = doJSON(server, http.MethodGet, "/api/orders/"+order.ID.String()+"/history", sellerID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var history []model.OrderStatusHistory
		require.NoError(t, json.NewDecoder(w.Body).Decode(&history))
		require.Len(t, history, 2)
		assert.Equal(t, model.StatusConfirmed, history[1].ToStatus)
	})

	t.Run("stranger cannot read another party's order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		buyerID := uuid.New()
		product := SeedProduct(t, testDB.Pool, uuid.New(), 100, 5)
		address := SeedAddress(t, testDB.Pool, buyerID)

		w := doJSON(server, http.MethodPost, "/api/orders", buyerID, model.CreateOrderRequest{
			ProductID:         product.ID,
			Quantity:          10,
			DeliveryAddressID: address.ID,
			PaymentMethod:     "upi",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var order model.Order
		require.NoError(t, json.NewDecoder(w.Body).Decode(&order))

		w = doJSON(server, http.MethodGet, "/api/orders/"+order.ID.String(), uuid.New(), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), model.ErrCodePermissionDenied)
	})

	t.Run("invalid coupon surfaces as 400", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		buyerID := uuid.New()
		product := SeedProduct(t, testDB.Pool, uuid.New(), 100, 5)
		address := SeedAddress(t, testDB.Pool, buyerID)

		w := doJSON(server, http.MethodPost, "/api/orders", buyerID, model.CreateOrderRequest{
			ProductID:         product.ID,
			Quantity:          10,
			DeliveryAddressID: address.ID,
			PaymentMethod:     "upi",
			CouponCode:        "NOSUCHCODE",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), model.ErrCodeInvalidCoupon)
		assert.Equal(t, 100.0, StockOf(t, testDB.Pool, product.ID))
	})

	t.Run("invalid transition surfaces as 409", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		buyerID := uuid.New()
		product := SeedProduct(t, testDB.Pool, uuid.New(), 100, 5)
		address := SeedAddress(t, testDB.Pool, buyerID)

		w := doJSON(server, http.MethodPost, "/api/orders", buyerID, model.CreateOrderRequest{
			ProductID:         product.ID,
			Quantity:          10,
			DeliveryAddressID: address.ID,
			PaymentMethod:     "upi",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var order model.Order
		require.NoError(t, json.NewDecoder(w.Body).Decode(&order))

		w = doJSON(server, http.MethodPost, "/api/orders/"+order.ID.String()+"/transition", buyerID,
			model.TransitionRequest{ToStatus: model.StatusDelivered})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), model.ErrCodeInvalidTransition)
	})

	t.Run("payment result recorded by buyer", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		buyerID := uuid.New()
		product := SeedProduct(t, testDB.Pool, uuid.New(), 100, 5)
		address := SeedAddress(t, testDB.Pool, buyerID)

		w := doJSON(server, http.MethodPost, "/api/orders", buyerID, model.CreateOrderRequest{
			ProductID:         product.ID,
			Quantity:          10,
			DeliveryAddressID: address.ID,
			PaymentMethod:     "upi",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var order model.Order
		require.NoError(t, json.NewDecoder(w.Body).Decode(&order))

		w = doJSON(server, http.MethodPost, "/api/orders/"+order.ID.String()+"/payment", buyerID,
			model.PaymentResultRequest{
				Status:          model.PaymentPaid,
				PaymentRef:      "pay_9f31c2",
				GatewayResponse: map[string]any{"rrn": "415612349876"},
			})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var updated model.Order
		require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
		assert.Equal(t, model.PaymentPaid, updated.PaymentStatus)
		assert.NotNil(t, updated.PaymentDate)
	})
}

func TestCartAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	t.Run("add, view, and remove cart items over HTTP", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		buyerID := uuid.New()
		product := SeedProduct(t, testDB.Pool, uuid.New(), 100, 5)

		w := doJSON(server, http.MethodPost, "/api/cart/items", buyerID, model.AddCartItemRequest{
			ProductID: product.ID,
			Quantity:  10,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = doJSON(server, http.MethodGet, "/api/cart", buyerID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var summary model.CartSummary
		require.NoError(t, json.NewDecoder(w.Body).Decode(&summary))
		assert.Equal(t, 1, summary.ItemCount)
		assert.InDelta(t, 455.00, summary.Subtotal, 0.001)

		w = doJSON(server, http.MethodDelete, "/api/cart/items/"+product.ID.String(), buyerID, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = doJSON(server, http.MethodGet, "/api/cart", buyerID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.NewDecoder(w.Body).Decode(&summary))
		assert.Zero(t, summary.ItemCount)
	})

	t.Run("cart add respects stock", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		buyerID := uuid.New()
		product := SeedProduct(t, testDB.Pool, uuid.New(), 20, 5)

		w := doJSON(server, http.MethodPost, "/api/cart/items", buyerID, model.AddCartItemRequest{
			ProductID: product.ID,
			Quantity:  25,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), model.ErrCodeOutOfStock)
	})
}
