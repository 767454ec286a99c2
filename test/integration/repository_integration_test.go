package integration

import (
	"context"
	"testing"
	"time"

	"agri-mandi/internal/model"
	"agri-mandi/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewProductRepository(testDB.Pool, logger)

	ctx := context.Background()

	t.Run("GetAll returns only purchasable listings", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		sellerID := uuid.New()
		SeedProduct(t, testDB.Pool, sellerID, 100, 5)

		hidden := SeedProduct(t, testDB.Pool, sellerID, 100, 5)
		_, err := testDB.Pool.Exec(ctx, "UPDATE products SET listing_status = 'draft' WHERE id = $1", hidden.ID)
		require.NoError(t, err)

		deleted := SeedProduct(t, testDB.Pool, sellerID, 100, 5)
		_, err = testDB.Pool.Exec(ctx, "UPDATE products SET is_deleted = TRUE WHERE id = $1", deleted.ID)
		require.NoError(t, err)

		products, err := repo.GetAll(ctx, 10, 0)
		require.NoError(t, err)
		assert.Len(t, products, 1)
	})

	t.Run("GetByID returns nil for absent or deleted product", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		product, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, product)

		deleted := SeedProduct(t, testDB.Pool, uuid.New(), 100, 5)
		_, err = testDB.Pool.Exec(ctx, "UPDATE products SET is_deleted = TRUE WHERE id = $1", deleted.ID)
		require.NoError(t, err)

		product, err = repo.GetByID(ctx, deleted.ID)
		require.NoError(t, err)
		assert.Nil(t, product)
	})

	t.Run("Reserve decrements stock atomically", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		product := SeedProduct(t, testDB.Pool, uuid.New(), 100, 5)

		tx, err := testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.Reserve(ctx, tx, product.ID, 30))
		require.NoError(t, tx.Commit(ctx))

		assert.Equal(t, 70.0, StockOf(t, testDB.Pool, product.ID))
	})

	t.Run("Reserve fails when stock is insufficient", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		product := SeedProduct(t, testDB.Pool, uuid.New(), 20, 5)

		tx, err := testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		err = repo.Reserve(ctx, tx, product.ID, 25)
		assert.ErrorIs(t, err, model.ErrStockConflict)
		require.NoError(t, tx.Rollback(ctx))

		assert.Equal(t, 20.0, StockOf(t, testDB.Pool, product.ID))
	})

	t.Run("Reserve to zero flips listing to soldout", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		product := SeedProduct(t, testDB.Pool, uuid.New(), 50, 5)

		tx, err := testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.Reserve(ctx, tx, product.ID, 50))
		require.NoError(t, tx.Commit(ctx))

		reloaded, err := repo.GetByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ListingSoldOut, reloaded.ListingStatus)
		assert.Equal(t, 0.0, reloaded.QuantityAvailable)
	})

	t.Run("Release restores stock and reactivates soldout listings", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		product := SeedProduct(t, testDB.Pool, uuid.New(), 50, 5)

		tx, err := testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.Reserve(ctx, tx, product.ID, 50))
		require.NoError(t, tx.Commit(ctx))

		tx, err = testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.Release(ctx, tx, product.ID, 50))
		require.NoError(t, tx.Commit(ctx))

		reloaded, err := repo.GetByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ListingActive, reloaded.ListingStatus)
		assert.Equal(t, 50.0, reloaded.QuantityAvailable)
	})

	t.Run("Restock on unknown product", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		err := repo.Restock(ctx, uuid.New(), 10)
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})
}

func TestCartRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewCartRepository(testDB.Pool, logger)

	ctx := context.Background()

	newItem := func(buyerID, productID uuid.UUID, quantity float64, expiresAt time.Time) *model.CartItem {
		now := time.Now()
		return &model.CartItem{
			ID:        uuid.New(),
			BuyerID:   buyerID,
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: 45.50,
			ExpiresAt: expiresAt,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	t.Run("Upsert replaces existing entry for same product", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		buyerID := uuid.New()
		product := SeedProduct(t, testDB.Pool, uuid.New(), 100, 5)
		expiry := time.Now().Add(7 * 24 * time.Hour)

		require.NoError(t, repo.Upsert(ctx, newItem(buyerID, product.ID, 10, expiry)))
		require.NoError(t, repo.Upsert(ctx, newItem(buyerID, product.ID, 25, expiry)))

		items, err := repo.ListActive(ctx, buyerID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 25.0, items[0].Quantity)
	})

	t.Run("ListActive hides expired entries", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		buyerID := uuid.New()
		fresh := SeedProduct(t, testDB.Pool, uuid.New(), 100, 5)
		stale := SeedProduct(t, testDB.Pool, uuid.New(), 100, 5)

		require.NoError(t, repo.Upsert(ctx, newItem(buyerID, fresh.ID, 10, time.Now().Add(time.Hour))))
		require.NoError(t, repo.Upsert(ctx, newItem(buyerID, stale.ID, 10, time.Now().Add(-time.Hour))))

		items, err := repo.ListActive(ctx, buyerID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, fresh.ID, items[0].ProductID)
	})

	t.Run("PurgeExpired removes only expired rows", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		buyerID := uuid.New()
		fresh := SeedProduct(t, testDB.Pool, uuid.New(), 100, 5)
		stale := SeedProduct(t, testDB.Pool, uuid.New(), 100, 5)

		require.NoError(t, repo.Upsert(ctx, newItem(buyerID, fresh.ID, 10, time.Now().Add(time.Hour))))
		require.NoError(t, repo.Upsert(ctx, newItem(buyerID, stale.ID, 10, time.Now().Add(-time.Hour))))

		require.NoError(t, repo.PurgeExpired(ctx, buyerID))

		var count int
		require.NoError(t, testDB.Pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM cart_items WHERE buyer_id = $1", buyerID).Scan(&count))
		assert.Equal(t, 1, count)
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		buyerID := uuid.New()
		product := SeedProduct(t, testDB.Pool, uuid.New(), 100, 5)

		require.NoError(t, repo.Upsert(ctx, newItem(buyerID, product.ID, 10, time.Now().Add(time.Hour))))
		require.NoError(t, repo.Delete(ctx, buyerID, product.ID))
		require.NoError(t, repo.Delete(ctx, buyerID, product.ID))

		items, err := repo.ListActive(ctx, buyerID)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("Clear removes all entries for the buyer only", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		buyerID := uuid.New()
		otherBuyer := uuid.New()
		p1 := SeedProduct(t, testDB.Pool, uuid.New(), 100, 5)
		p2 := SeedProduct(t, testDB.Pool, uuid.New(), 100, 5)

		expiry := time.Now().Add(time.Hour)
		require.NoError(t, repo.Upsert(ctx, newItem(buyerID, p1.ID, 10, expiry)))
		require.NoError(t, repo.Upsert(ctx, newItem(buyerID, p2.ID, 10, expiry)))
		require.NoError(t, repo.Upsert(ctx, newItem(otherBuyer, p1.ID, 10, expiry)))

		require.NoError(t, repo.Clear(ctx, buyerID))

		items, err := repo.ListActive(ctx, buyerID)
		require.NoError(t, err)
		assert.Empty(t, items)

		items, err = repo.ListActive(ctx, otherBuyer)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})
}

func TestOrderRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)
	addressRepo := repository.NewAddressRepository(testDB.Pool, logger)

	ctx := context.Background()

	newOrder := func(buyerID, sellerID, productID uuid.UUID, number string) *model.Order {
		now := time.Now()
		return &model.Order{
			ID:              uuid.New(),
			OrderNumber:     number,
			BuyerID:         buyerID,
			SellerID:        sellerID,
			ProductID:       productID,
			QuantityOrdered: 10,
			Unit:            model.UnitKg,
			UnitPrice:       45.50,
			Subtotal:        455.00,
			TaxRate:         0.05,
			TaxAmount:       22.75,
			DeliveryCharges: 50.00,
			TotalAmount:     527.75,
			OrderStatus:     model.StatusPending,
			PaymentStatus:   model.PaymentUnpaid,
			PaymentMethod:   "upi",
			DeliveryName:    "Ramesh Patel",
			DeliveryPhone:   "9876543210",
			DeliveryAddress: "14 Mandi Road",
			DeliveryCity:    "Nashik",
			DeliveryState:   "Maharashtra",
			DeliveryPincode: "422001",
			PlacedAt:        now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
	}

	t.Run("Create and GetByID round trip", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		buyerID := uuid.New()
		product := SeedProduct(t, testDB.Pool, uuid.New(), 100, 5)
		order := newOrder(buyerID, product.SellerID, product.ID, "ORD-2026-000001")
		order.GatewayResponse = map[string]any{"provider": "razorpay"}

		tx, err := testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, orderRepo.Create(ctx, tx, order))
		require.NoError(t, tx.Commit(ctx))

		got, err := orderRepo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, order.OrderNumber, got.OrderNumber)
		assert.Equal(t, model.StatusPending, got.OrderStatus)
		assert.InDelta(t, 527.75, got.TotalAmount, 0.001)
		assert.Equal(t, "razorpay", got.GatewayResponse["provider"])
	})

	t.Run("GetByID returns nil for unknown order", func(t *testing.T) {
		got, err := orderRepo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("order numbers are unique", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		product := SeedProduct(t, testDB.Pool, uuid.New(), 100, 5)

		tx, err := testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, orderRepo.Create(ctx, tx, newOrder(uuid.New(), product.SellerID, product.ID, "ORD-2026-000777")))
		require.NoError(t, tx.Commit(ctx))

		tx, err = testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		err = orderRepo.Create(ctx, tx, newOrder(uuid.New(), product.SellerID, product.ID, "ORD-2026-000777"))
		assert.Error(t, err)
		_ = tx.Rollback(ctx)
	})

	t.Run("AppendHistory preserves chronological order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		product := SeedProduct(t, testDB.Pool, uuid.New(), 100, 5)
		buyerID := uuid.New()
		order := newOrder(buyerID, product.SellerID, product.ID, "ORD-2026-000002")

		tx, err := testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, orderRepo.Create(ctx, tx, order))

		base := time.Now()
		entries := []*model.OrderStatusHistory{
			{ID: uuid.New(), OrderID: order.ID, ToStatus: model.StatusPending, ChangedBy: &buyerID, CreatedAt: base},
			{ID: uuid.New(), OrderID: order.ID, FromStatus: model.StatusPending, ToStatus: model.StatusConfirmed, CreatedAt: base.Add(time.Second)},
			{ID: uuid.New(), OrderID: order.ID, FromStatus: model.StatusConfirmed, ToStatus: model.StatusCancelled, CreatedAt: base.Add(2 * time.Second)},
		}
		for _, e := range entries {
			require.NoError(t, orderRepo.AppendHistory(ctx, tx, e))
		}
		require.NoError(t, tx.Commit(ctx))

		history, err := orderRepo.History(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, model.StatusPending, history[0].ToStatus)
		assert.Equal(t, model.StatusConfirmed, history[1].ToStatus)
		assert.Equal(t, model.StatusCancelled, history[2].ToStatus)
		assert.Equal(t, model.StatusConfirmed, history[2].FromStatus)
	})

	t.Run("ListByParty sees orders from both sides", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		buyerID := uuid.New()
		product := SeedProduct(t, testDB.Pool, uuid.New(), 100, 5)
		order := newOrder(buyerID, product.SellerID, product.ID, "ORD-2026-000003")

		tx, err := testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, orderRepo.Create(ctx, tx, order))
		require.NoError(t, tx.Commit(ctx))

		asBuyer, err := orderRepo.ListByParty(ctx, buyerID, 10, 0)
		require.NoError(t, err)
		assert.Len(t, asBuyer, 1)

		asSeller, err := orderRepo.ListByParty(ctx, product.SellerID, 10, 0)
		require.NoError(t, err)
		assert.Len(t, asSeller, 1)

		asStranger, err := orderRepo.ListByParty(ctx, uuid.New(), 10, 0)
		require.NoError(t, err)
		assert.Empty(t, asStranger)
	})

	t.Run("UpdateStatus persists timestamps and cancellation fields", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		buyerID := uuid.New()
		product := SeedProduct(t, testDB.Pool, uuid.New(), 100, 5)
		order := newOrder(buyerID, product.SellerID, product.ID, "ORD-2026-000004")

		tx, err := testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, orderRepo.Create(ctx, tx, order))
		require.NoError(t, tx.Commit(ctx))

		tx, err = testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		locked, err := orderRepo.GetByIDForUpdate(ctx, tx, order.ID)
		require.NoError(t, err)
		require.NotNil(t, locked)

		now := time.Now()
		locked.OrderStatus = model.StatusCancelled
		locked.CancellationReason = "changed my mind"
		locked.CancelledBy = &buyerID
		locked.CancelledAt = &now
		locked.UpdatedAt = now
		require.NoError(t, orderRepo.UpdateStatus(ctx, tx, locked))
		require.NoError(t, tx.Commit(ctx))

		got, err := orderRepo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusCancelled, got.OrderStatus)
		assert.Equal(t, "changed my mind", got.CancellationReason)
		require.NotNil(t, got.CancelledBy)
		assert.Equal(t, buyerID, *got.CancelledBy)
		require.NotNil(t, got.CancelledAt)
	})

	t.Run("address lookup is scoped to the owner", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		buyerID := uuid.New()
		address := SeedAddress(t, testDB.Pool, buyerID)

		got, err := addressRepo.GetByID(ctx, address.ID, buyerID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, address.ContactName, got.ContactName)

		got, err = addressRepo.GetByID(ctx, address.ID, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
