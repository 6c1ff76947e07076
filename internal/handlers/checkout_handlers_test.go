package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/storetrack/storetrack/internal/models"
)

func TestCheckoutSuccess(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct("Widget", "10.00", 5)
	env.seedCartLine(1, p.ID, 3)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/checkout", map[string]any{"userId": 1})
	asUser(c, 1, "user")

	require.NoError(t, env.Checkout.PlaceOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string `json:"message"`
		OrderID uint   `json:"orderId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotZero(t, resp.OrderID)
	require.Contains(t, resp.Message, "placed successfully")

	var got models.Product
	require.NoError(t, env.DB.First(&got, p.ID).Error)
	require.Equal(t, 2, got.Inventory)

	created := env.Events.byType("order_created")
	require.Len(t, created, 1)

	var cartLines int64
	require.NoError(t, env.DB.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&cartLines).Error)
	require.Zero(t, cartLines)
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodPost, "/api/checkout", map[string]any{"userId": 1})
	asUser(c, 1, "user")

	he := requireHTTPError(t, env.Checkout.PlaceOrder(c), http.StatusBadRequest)
	require.Contains(t, he.Message, "empty")
}

func TestCheckoutInsufficientInventory(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct("Widget", "10.00", 2)
	env.seedCartLine(1, p.ID, 3)

	_, c := env.doJSONRequest(http.MethodPost, "/api/checkout", map[string]any{"userId": 1})
	asUser(c, 1, "user")
	he := requireHTTPError(t, env.Checkout.PlaceOrder(c), http.StatusBadRequest)
	require.Contains(t, he.Message, "Widget")

	// no partial state
	var got models.Product
	require.NoError(t, env.DB.First(&got, p.ID).Error)
	require.Equal(t, 2, got.Inventory)
	var orders int64
	require.NoError(t, env.DB.Model(&models.Order{}).Count(&orders).Error)
	require.Zero(t, orders)
}

func TestCheckoutForOtherUserForbidden(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodPost, "/api/checkout", map[string]any{"userId": 2})
	asUser(c, 1, "user")
	requireHTTPError(t, env.Checkout.PlaceOrder(c), http.StatusForbidden)
}

func TestCheckoutMissingUserID(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodPost, "/api/checkout", map[string]any{})
	asUser(c, 1, "user")
	requireHTTPError(t, env.Checkout.PlaceOrder(c), http.StatusBadRequest)
}
