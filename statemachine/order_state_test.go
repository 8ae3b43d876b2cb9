package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walthampeppinosdosa/peppinos-api/apperr"
	"github.com/walthampeppinosdosa/peppinos-api/models"
)

func TestForwardProgression(t *testing.T) {
	sequence := []models.OrderStatus{
		models.OrderStatusPlaced,
		models.OrderStatusConfirmed,
		models.OrderStatusPreparing,
		models.OrderStatusReady,
		models.OrderStatusCompleted,
	}
	for i := 0; i < len(sequence)-1; i++ {
		assert.NoError(t, CanTransition(sequence[i], sequence[i+1]),
			"%s -> %s should be allowed", sequence[i], sequence[i+1])
	}
}

func TestNoSkippingOrReversing(t *testing.T) {
	cases := []struct{ from, to models.OrderStatus }{
		{models.OrderStatusPlaced, models.OrderStatusPreparing},
		{models.OrderStatusPlaced, models.OrderStatusCompleted},
		{models.OrderStatusConfirmed, models.OrderStatusPlaced},
		{models.OrderStatusReady, models.OrderStatusPreparing},
		{models.OrderStatusCompleted, models.OrderStatusPlaced},
		{models.OrderStatusPlaced, models.OrderStatusPlaced},
	}
	for _, tc := range cases {
		err := CanTransition(tc.from, tc.to)
		require.Error(t, err, "%s -> %s must be rejected", tc.from, tc.to)
		assert.Equal(t, apperr.KindInvalidStateTransition, apperr.KindOf(err))
	}
}

func TestCancellation(t *testing.T) {
	for _, from := range []models.OrderStatus{
		models.OrderStatusPlaced,
		models.OrderStatusConfirmed,
		models.OrderStatusPreparing,
	} {
		assert.NoError(t, CanTransition(from, models.OrderStatusCancelled))
	}

	// Terminal and ready states cannot be cancelled.
	for _, from := range []models.OrderStatus{
		models.OrderStatusReady,
		models.OrderStatusCompleted,
		models.OrderStatusCancelled,
	} {
		err := CanTransition(from, models.OrderStatusCancelled)
		require.Error(t, err)
		assert.Equal(t, apperr.KindInvalidStateTransition, apperr.KindOf(err))
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	assert.Empty(t, ValidTransitionsFrom(models.OrderStatusCompleted))
	assert.Empty(t, ValidTransitionsFrom(models.OrderStatusCancelled))
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("preparing")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparing, status)

	_, err = ParseStatus("shipped")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}
