package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"agri-mandi/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	poolConfig.MaxConns = 10

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	// Create schema
	applySchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// applySchema runs the initial migration file against the test database.
func applySchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "000001_init.up.sql"))
	if err != nil {
		t.Fatalf("failed to read migration file: %v", err)
	}

	if _, err := pool.Exec(context.Background(), string(schema)); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_status_history", "orders", "cart_items", "delivery_addresses", "products"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// SeedProduct inserts one listing and returns it.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, sellerID uuid.UUID, available, minQty float64) *model.Product {
	t.Helper()

	now := time.Now()
	product := &model.Product{
		ID:                uuid.New(),
		SellerID:          sellerID,
		Name:              "Basmati Rice",
		Unit:              model.UnitKg,
		PricePerUnit:      45.50,
		QuantityAvailable: available,
		MinOrderQuantity:  minQty,
		ListingStatus:     model.ListingActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO products (id, seller_id, name, unit, price_per_unit, quantity_available,
			min_order_quantity, max_order_quantity, listing_status, is_deleted, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		product.ID, product.SellerID, product.Name, product.Unit, product.PricePerUnit,
		product.QuantityAvailable, product.MinOrderQuantity, product.MaxOrderQuantity,
		product.ListingStatus, product.IsDeleted, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	return product
}

// SeedAddress inserts one delivery address for the buyer and returns it.
func SeedAddress(t *testing.T, pool *pgxpool.Pool, buyerID uuid.UUID) *model.DeliveryAddress {
	t.Helper()

	address := &model.DeliveryAddress{
		ID:           uuid.New(),
		BuyerID:      buyerID,
		ContactName:  "Ramesh Patel",
		ContactPhone: "9876543210",
		AddressLine:  "14 Mandi Road",
		City:         "Nashik",
		State:        "Maharashtra",
		Pincode:      "422001",
		IsActive:     true,
		CreatedAt:    time.Now(),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO delivery_addresses (id, buyer_id, contact_name, contact_phone, address_line,
			city, state, pincode, landmark, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		address.ID, address.BuyerID, address.ContactName, address.ContactPhone, address.AddressLine,
		address.City, address.State, address.Pincode, address.Landmark, address.IsActive, address.CreatedAt,
	)
	if err != nil {
		t.Fatalf("failed to seed address: %v", err)
	}

	return address
}

// StockOf reads the current available quantity of a listing.
func StockOf(t *testing.T, pool *pgxpool.Pool, productID uuid.UUID) float64 {
	t.Helper()

	var quantity float64
	err := pool.QueryRow(context.Background(),
		"SELECT quantity_available FROM products WHERE id = $1", productID).Scan(&quantity)
	if err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return quantity
}
