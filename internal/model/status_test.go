package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_HappyPath(t *testing.T) {
	path := []OrderStatus{
		StatusPending,
		StatusConfirmed,
		StatusProcessing,
		StatusPacked,
		StatusShipped,
		StatusInTransit,
		StatusOutForDelivery,
		StatusDelivered,
	}

	for i := 0; i < len(path)-1; i++ {
		assert.True(t, CanTransition(path[i], path[i+1]),
			"expected %s -> %s to be allowed", path[i], path[i+1])
	}
}

func TestCanTransition_CancellationAndReturns(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
	assert.True(t, CanTransition(StatusConfirmed, StatusCancelled))
	assert.True(t, CanTransition(StatusDelivered, StatusReturned))
	assert.True(t, CanTransition(StatusCancelled, StatusRefunded))
	assert.True(t, CanTransition(StatusReturned, StatusRefunded))

	// Cancellation closes once fulfilment starts
	assert.False(t, CanTransition(StatusProcessing, StatusCancelled))
	assert.False(t, CanTransition(StatusShipped, StatusCancelled))
	assert.False(t, CanTransition(StatusDelivered, StatusCancelled))
}

func TestCanTransition_NoBackwardsOrSkippedSteps(t *testing.T) {
	assert.False(t, CanTransition(StatusConfirmed, StatusPending))
	assert.False(t, CanTransition(StatusDelivered, StatusConfirmed))
	assert.False(t, CanTransition(StatusPending, StatusShipped))
	assert.False(t, CanTransition(StatusPending, StatusDelivered))
	assert.False(t, CanTransition(StatusPending, StatusPending))
}

func TestCanTransition_TerminalStates(t *testing.T) {
	assert.True(t, OrderStatus(StatusRefunded).IsTerminal())
	assert.False(t, OrderStatus(StatusCancelled).IsTerminal())
	assert.False(t, OrderStatus(StatusDelivered).IsTerminal())
	assert.False(t, CanTransition(StatusRefunded, StatusPending))
}

func TestValidOrderStatus(t *testing.T) {
	assert.True(t, ValidOrderStatus(StatusInTransit))
	assert.False(t, ValidOrderStatus("dispatched"))
	assert.False(t, ValidOrderStatus(""))
}

func TestValidPaymentStatus(t *testing.T) {
	for _, s := range []PaymentStatus{
		PaymentUnpaid, PaymentPending, PaymentProcessing, PaymentPaid,
		PaymentPartiallyPaid, PaymentFailed, PaymentRefunded,
	} {
		assert.True(t, ValidPaymentStatus(s), "payment status %q must be recognised", s)
	}
	assert.False(t, ValidPaymentStatus("settled"))
}
