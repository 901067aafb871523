package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatusKey(t *testing.T) {
	assert.Equal(t, StatusReadyForPickup, NormalizeStatusKey("ready"))
	assert.Equal(t, StatusDealerAccepted, NormalizeStatusKey("processing"))
	assert.Equal(t, StatusDelivered, NormalizeStatusKey("completed"))

	// Canonical keys pass through untouched.
	assert.Equal(t, StatusPending, NormalizeStatusKey("pending"))
	assert.Equal(t, StatusOutForDelivery, NormalizeStatusKey("out-for-delivery"))

	// Unknown values are preserved so callers can reject them.
	assert.Equal(t, StatusKey("bogus"), NormalizeStatusKey("bogus"))
}

func TestIsValidStatusKey(t *testing.T) {
	assert.True(t, IsValidStatusKey("pending"))
	assert.True(t, IsValidStatusKey("delivered"))
	assert.True(t, IsValidStatusKey("ready"), "legacy alias should validate after normalization")
	assert.False(t, IsValidStatusKey("bogus"))
	assert.False(t, IsValidStatusKey(""))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Ready for Pickup", StatusReadyForPickup.Label())
	assert.Equal(t, "Dealer Accepted", StatusDealerAccepted.Label())
	assert.Equal(t, "bogus", StatusKey("bogus").Label())
}

func TestCanTransitionToForwardOnly(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusDealerAccepted))
	assert.True(t, StatusDealerAccepted.CanTransitionTo(StatusPrintingStarted))
	assert.True(t, StatusPrintingCompleted.CanTransitionTo(StatusOutForDelivery))
	assert.True(t, StatusOutForDelivery.CanTransitionTo(StatusDelivered))

	// Stages may be skipped, but never revisited.
	assert.True(t, StatusPending.CanTransitionTo(StatusDelivered))
	assert.False(t, StatusPrintingStarted.CanTransitionTo(StatusDealerAccepted))
	assert.False(t, StatusDelivered.CanTransitionTo(StatusPending))

	// ReadyForPickup and OutForDelivery are alternates at the same stage.
	assert.False(t, StatusReadyForPickup.CanTransitionTo(StatusOutForDelivery))
	assert.False(t, StatusOutForDelivery.CanTransitionTo(StatusReadyForPickup))

	// Same-state transitions are not allowed.
	assert.False(t, StatusPrintingStarted.CanTransitionTo(StatusPrintingStarted))
}

func TestCanTransitionToTerminal(t *testing.T) {
	// Rejection and cancellation are reachable from any non-terminal state.
	for _, from := range []StatusKey{StatusPending, StatusDealerAccepted, StatusPrintingStarted, StatusOutForDelivery} {
		assert.True(t, from.CanTransitionTo(StatusRejected), "from %s", from)
		assert.True(t, from.CanTransitionTo(StatusCancelled), "from %s", from)
	}

	// Terminal states admit nothing.
	for _, from := range []StatusKey{StatusDelivered, StatusRejected, StatusCancelled} {
		assert.True(t, from.IsTerminal())
		assert.False(t, from.CanTransitionTo(StatusPending), "from %s", from)
		assert.False(t, from.CanTransitionTo(StatusCancelled), "from %s", from)
	}

	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusOutForDelivery.IsTerminal())
}
