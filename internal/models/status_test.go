package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	for _, valid := range []string{"Processing", "Shipped", "Delivered", "Cancelled"} {
		st, err := ParseOrderStatus(valid)
		require.NoError(t, err)
		require.Equal(t, OrderStatus(valid), st)
	}

	_, err := ParseOrderStatus("Refunded")
	require.Error(t, err)
	_, err = ParseOrderStatus("processing") // case sensitive
	require.Error(t, err)
}

func TestStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to OrderStatus }{
		{StatusProcessing, StatusShipped},
		{StatusProcessing, StatusCancelled},
		{StatusShipped, StatusDelivered},
		{StatusShipped, StatusCancelled},
	}
	for _, tr := range allowed {
		require.True(t, tr.from.CanTransitionTo(tr.to), "%s -> %s", tr.from, tr.to)
	}

	denied := []struct{ from, to OrderStatus }{
		{StatusProcessing, StatusDelivered},
		{StatusShipped, StatusProcessing},
		{StatusDelivered, StatusProcessing},
		{StatusDelivered, StatusShipped},
		{StatusCancelled, StatusProcessing},
		{StatusCancelled, StatusShipped},
	}
	for _, tr := range denied {
		require.False(t, tr.from.CanTransitionTo(tr.to), "%s -> %s", tr.from, tr.to)
	}
}
