package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"agri-mandi/internal/cache"
	"agri-mandi/internal/coupon"
	"agri-mandi/internal/model"
	"agri-mandi/internal/notify"
	"agri-mandi/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// Pricing constants applied to every order.
const (
	taxRate          = 0.05
	deliveryCharges  = 50.0
	packagingCharges = 0.0
)

// orderNumberAttempts bounds retries when the generated order number collides.
const orderNumberAttempts = 5

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	addressRepo repository.AddressRepository
	validator   coupon.Validator
	statusCache cache.StatusCache
	dispatcher  notify.Dispatcher
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	addressRepo repository.AddressRepository,
	validator coupon.Validator,
	statusCache cache.StatusCache,
	dispatcher notify.Dispatcher,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		addressRepo: addressRepo,
		validator:   validator,
		statusCache: statusCache,
		dispatcher:  dispatcher,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// Create places an order for the given buyer. Stock reservation, the order
// row, and the first ledger entry commit in one transaction, so a failure at
// any point leaves inventory untouched.
func (s *orderService) Create(ctx context.Context, buyerID uuid.UUID, req *model.CreateOrderRequest) (*model.Order, error) {
	if err := validateOrderRequest(req); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", req.ProductID.String()).Msg("failed to load product")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if product == nil || !product.Purchasable() {
		return nil, model.ErrProductNotFound
	}

	if err := validateQuantityBounds(product, req.Quantity); err != nil {
		return nil, err
	}
	if req.Quantity > product.QuantityAvailable {
		return nil, model.ErrOutOfStock
	}

	address, err := s.addressRepo.GetByID(ctx, req.DeliveryAddressID, buyerID)
	if err != nil {
		s.logger.Error().Err(err).Str("address_id", req.DeliveryAddressID.String()).Msg("failed to load delivery address")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if address == nil {
		return nil, model.ErrAddressNotFound
	}

	subtotal := round2(req.Quantity * product.PricePerUnit)

	var discount float64
	if req.CouponCode != "" {
		discount, err = s.validator.Validate(ctx, req.CouponCode, subtotal)
		if err != nil {
			s.logger.Warn().
				Str("coupon_code", req.CouponCode).
				Err(err).
				Msg("coupon rejected")
			return nil, err
		}
	}

	taxAmount := round2(subtotal * taxRate)
	total := round2(subtotal + taxAmount + deliveryCharges + packagingCharges - discount)

	now := time.Now()
	order := &model.Order{
		ID:               uuid.New(),
		BuyerID:          buyerID,
		SellerID:         product.SellerID,
		ProductID:        product.ID,
		QuantityOrdered:  req.Quantity,
		Unit:             product.Unit,
		UnitPrice:        product.PricePerUnit,
		Subtotal:         subtotal,
		DiscountAmount:   discount,
		TaxRate:          taxRate,
		TaxAmount:        taxAmount,
		DeliveryCharges:  deliveryCharges,
		PackagingCharges: packagingCharges,
		TotalAmount:      total,
		CouponCode:       req.CouponCode,
		OrderStatus:      model.StatusPending,
		PaymentStatus:    model.PaymentUnpaid,
		PaymentMethod:    req.PaymentMethod,
		DeliveryName:     address.ContactName,
		DeliveryPhone:    address.ContactPhone,
		DeliveryAddress:  address.AddressLine,
		DeliveryCity:     address.City,
		DeliveryState:    address.State,
		DeliveryPincode:  address.Pincode,
		PlacedAt:         now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.productRepo.Reserve(ctx, tx, product.ID, req.Quantity); err != nil {
		if errors.Is(err, model.ErrStockConflict) {
			s.logger.Warn().
				Str("product_id", product.ID.String()).
				Float64("quantity", req.Quantity).
				Msg("stock reservation lost race")
			return nil, model.ErrStockConflict
		}
		s.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to reserve stock")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.insertOrderWithNumber(ctx, tx, order); err != nil {
		return nil, err
	}

	entry := &model.OrderStatusHistory{
		ID:        uuid.New(),
		OrderID:   order.ID,
		ToStatus:  model.StatusPending,
		ChangedBy: &buyerID,
		Reason:    "order placed",
		CreatedAt: now,
	}
	if err = s.orderRepo.AppendHistory(ctx, tx, entry); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to append status history")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("buyer_id", buyerID.String()).
		Float64("total_amount", order.TotalAmount).
		Msg("order created")

	s.statusCache.SetStatus(ctx, order.ID, order.OrderStatus)
	s.dispatcher.Dispatch(ctx, notify.NewEnvelope(notify.EventOrderCreated, order, notify.OrderCreatedPayload{
		BuyerID:     order.BuyerID,
		SellerID:    order.SellerID,
		ProductID:   order.ProductID,
		Quantity:    order.QuantityOrdered,
		TotalAmount: order.TotalAmount,
	}))

	return order, nil
}

// insertOrderWithNumber inserts the order, regenerating the human-readable
// order number on a unique-constraint collision.
func (s *orderService) insertOrderWithNumber(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.OrderNumber = newOrderNumber(order.PlacedAt)

		err := s.orderRepo.Create(ctx, tx, order)
		if err == nil {
			return nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			s.logger.Debug().
				Str("order_number", order.OrderNumber).
				Msg("order number collision, regenerating")
			continue
		}

		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to insert order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	return fmt.Errorf("failed to create order: exhausted order number attempts")
}

// Get retrieves an order visible to the given actor.
func (s *orderService) Get(ctx context.Context, actor, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if !order.InvolvesActor(actor) {
		return nil, model.ErrPermissionDenied
	}

	return order, nil
}

// List retrieves orders the given actor is a party to.
func (s *orderService) List(ctx context.Context, actor uuid.UUID, limit, offset int) ([]model.Order, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	orders, err := s.orderRepo.ListByParty(ctx, actor, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Str("actor", actor.String()).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// Transition moves an order to a new status on behalf of the actor. The
// status update, timestamp stamping, stock release on cancellation, and the
// ledger row commit in one transaction under a row lock.
func (s *orderService) Transition(ctx context.Context, actor, orderID uuid.UUID, req *model.TransitionRequest) (*model.Order, error) {
	if !model.ValidOrderStatus(req.ToStatus) {
		return nil, model.ErrInvalidTransition
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to transition order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to transition order: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}
	if !order.InvolvesActor(actor) {
		err = model.ErrPermissionDenied
		return nil, err
	}

	fromStatus := order.OrderStatus
	if !model.CanTransition(fromStatus, req.ToStatus) {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("from_status", string(fromStatus)).
			Str("to_status", string(req.ToStatus)).
			Msg("transition rejected")
		err = model.ErrInvalidTransition
		return nil, err
	}

	now := time.Now()
	order.OrderStatus = req.ToStatus
	order.UpdatedAt = now

	switch req.ToStatus {
	case model.StatusConfirmed:
		order.ConfirmedAt = &now
	case model.StatusShipped:
		order.ShippedAt = &now
	case model.StatusDelivered:
		order.DeliveredAt = &now
	case model.StatusRefunded:
		order.PaymentStatus = model.PaymentRefunded
	case model.StatusCancelled:
		order.CancellationReason = req.Reason
		order.CancelledBy = &actor
		order.CancelledAt = &now

		if err = s.productRepo.Release(ctx, tx, order.ProductID, order.QuantityOrdered); err != nil {
			s.logger.Error().
				Err(err).
				Str("order_id", orderID.String()).
				Str("product_id", order.ProductID.String()).
				Msg("failed to release reserved stock")
			return nil, fmt.Errorf("failed to transition order: %w", err)
		}
	}

	if err = s.orderRepo.UpdateStatus(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to transition order: %w", err)
	}

	entry := &model.OrderStatusHistory{
		ID:         uuid.New(),
		OrderID:    order.ID,
		FromStatus: fromStatus,
		ToStatus:   req.ToStatus,
		ChangedBy:  &actor,
		Reason:     req.Reason,
		CreatedAt:  now,
	}
	if err = s.orderRepo.AppendHistory(ctx, tx, entry); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to append status history")
		return nil, fmt.Errorf("failed to transition order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to transition order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("from_status", string(fromStatus)).
		Str("to_status", string(req.ToStatus)).
		Str("actor", actor.String()).
		Msg("order transitioned")

	s.statusCache.SetStatus(ctx, order.ID, order.OrderStatus)
	s.dispatcher.Dispatch(ctx, notify.NewEnvelope(notify.EventOrderStatusChanged, order, notify.StatusChangedPayload{
		FromStatus: fromStatus,
		ToStatus:   req.ToStatus,
		Actor:      &actor,
		Reason:     req.Reason,
	}))

	return order, nil
}

// Cancel cancels an order, releasing its reserved stock.
func (s *orderService) Cancel(ctx context.Context, actor, orderID uuid.UUID, req *model.CancelRequest) (*model.Order, error) {
	reason := ""
	if req != nil {
		reason = req.Reason
	}
	return s.Transition(ctx, actor, orderID, &model.TransitionRequest{
		ToStatus: model.StatusCancelled,
		Reason:   reason,
	})
}

// RecordPayment records a payment-gateway outcome against the order. Only
// the buyer may report payment results, and `refunded` is set exclusively by
// the refund transition. The update runs under the same row lock as
// Transition so it cannot overwrite a concurrent refund.
func (s *orderService) RecordPayment(ctx context.Context, actor, orderID uuid.UUID, req *model.PaymentResultRequest) (*model.Order, error) {
	if !model.ValidPaymentStatus(req.Status) {
		return nil, model.NewDomainError(model.ErrCodeMissingField, fmt.Sprintf("Unknown payment status: %s", req.Status))
	}
	if req.Status == model.PaymentRefunded {
		return nil, model.NewDomainError(model.ErrCodeInvalidTransition,
			"Payment status refunded is set by the refund transition, not by the gateway")
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}
	if order.BuyerID != actor {
		err = model.ErrPermissionDenied
		return nil, err
	}
	if order.PaymentStatus == model.PaymentRefunded {
		err = model.ErrInvalidTransition
		return nil, err
	}

	now := time.Now()
	order.PaymentStatus = req.Status
	order.PaymentRef = req.PaymentRef
	order.GatewayResponse = req.GatewayResponse
	order.UpdatedAt = now
	if req.Status == model.PaymentPaid {
		order.PaymentDate = &now
	}

	if err = s.orderRepo.UpdatePayment(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to record payment")
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("payment_status", string(req.Status)).
		Msg("payment recorded")

	return order, nil
}

// History retrieves the order's status ledger.
func (s *orderService) History(ctx context.Context, actor, orderID uuid.UUID) ([]model.OrderStatusHistory, error) {
	if _, err := s.Get(ctx, actor, orderID); err != nil {
		return nil, err
	}

	history, err := s.orderRepo.History(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to load status history")
		return nil, fmt.Errorf("failed to load status history: %w", err)
	}

	return history, nil
}

// Status returns the order's current status, served from cache when warm.
// Cache misses fall through to the database and repopulate the cache.
func (s *orderService) Status(ctx context.Context, actor, orderID uuid.UUID) (*model.OrderStatusResponse, error) {
	if status, ok := s.statusCache.GetStatus(ctx, orderID); ok {
		// Cached statuses are still gated by the row-level permission check.
		if _, err := s.Get(ctx, actor, orderID); err != nil {
			return nil, err
		}
		return &model.OrderStatusResponse{OrderID: orderID, Status: status}, nil
	}

	order, err := s.Get(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}

	s.statusCache.SetStatus(ctx, orderID, order.OrderStatus)

	return &model.OrderStatusResponse{OrderID: orderID, Status: order.OrderStatus}, nil
}

// validateOrderRequest validates an order creation request.
func validateOrderRequest(req *model.CreateOrderRequest) error {
	if req.ProductID == uuid.Nil {
		return model.NewDomainError(model.ErrCodeMissingField, "Product ID is required")
	}
	if req.DeliveryAddressID == uuid.Nil {
		return model.NewDomainError(model.ErrCodeMissingField, "Delivery address ID is required")
	}
	if req.PaymentMethod == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Payment method is required")
	}
	if req.Quantity <= 0 {
		return model.ErrInvalidQuantity
	}
	return nil
}

// newOrderNumber generates a human-readable order number.
func newOrderNumber(placedAt time.Time) string {
	return fmt.Sprintf("ORD-%d-%06d", placedAt.Year(), rand.IntN(1_000_000))
}

// round2 rounds a monetary amount to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
