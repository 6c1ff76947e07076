package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/storetrack/storetrack/internal/models"
)

func seedOrder(t *testing.T, env *testEnv, userID uint, daysAgo int, total string, status models.OrderStatus) models.Order {
	t.Helper()
	o := models.Order{
		UserID:      userID,
		OrderDate:   time.Now().UTC().AddDate(0, 0, -daysAgo),
		TotalAmount: decimal.RequireFromString(total),
		Status:      status,
	}
	require.NoError(t, env.DB.Create(&o).Error)
	return o
}

func TestListOrdersForUserDescending(t *testing.T) {
	env := newTestEnv(t)

	oldest := seedOrder(t, env, 1, 3, "10.00", models.StatusDelivered)
	newest := seedOrder(t, env, 1, 0, "30.00", models.StatusProcessing)
	middle := seedOrder(t, env, 1, 1, "20.00", models.StatusShipped)
	seedOrder(t, env, 2, 0, "99.00", models.StatusProcessing) // other user

	rec, c := env.doJSONRequest(http.MethodGet, "/api/orders/1", nil)
	c.SetParamNames("userID")
	c.SetParamValues("1")
	asUser(c, 1, "user")

	require.NoError(t, env.Orders.ListForUser(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 3)
	require.Equal(t, newest.ID, resp[0].ID)
	require.Equal(t, middle.ID, resp[1].ID)
	require.Equal(t, oldest.ID, resp[2].ID)
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.DB.Create(&models.User{
		Username: "dave", PasswordHash: "x", Role: "user",
	}).Error)
	for i := 0; i < 7; i++ {
		seedOrder(t, env, 1, i, "10.00", models.StatusProcessing)
	}

	rec, c := env.doJSONRequest(http.MethodGet, "/api/user/dashboard/1", nil)
	c.SetParamNames("userID")
	c.SetParamValues("1")
	asUser(c, 1, "user")

	require.NoError(t, env.Orders.Dashboard(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Username     string `json:"username"`
		RecentOrders []struct {
			ID uint `json:"id"`
		} `json:"recentOrders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "dave", resp.Username)
	require.Len(t, resp.RecentOrders, 5)
}
