package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storetrack/storetrack/internal/models"
)

type OrderHandler struct {
	DB *gorm.DB
}

type orderSummary struct {
	ID          uint            `json:"id"`
	OrderDate   time.Time       `json:"order_date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
}

func (h *OrderHandler) ListForUser(c echo.Context) error {
	userID, err := parseUintParam(c, "userID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if !canActFor(c, userID) {
		return echo.NewHTTPError(http.StatusForbidden, "cannot access another user's orders")
	}

	var orders []models.Order
	if err := h.DB.Where("user_id = ?", userID).Order("order_date DESC").Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	out := make([]orderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderSummary{
			ID:          o.ID,
			OrderDate:   o.OrderDate,
			TotalAmount: o.TotalAmount,
			Status:      string(o.Status),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Dashboard backs the storefront landing page: greeting plus the five most
// recent orders.
func (h *OrderHandler) Dashboard(c echo.Context) error {
	userID, err := parseUintParam(c, "userID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if !canActFor(c, userID) {
		return echo.NewHTTPError(http.StatusForbidden, "cannot access another user's dashboard")
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var orders []models.Order
	if err := h.DB.Where("user_id = ?", userID).Order("order_date DESC").Limit(5).Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	recent := make([]orderSummary, 0, len(orders))
	for _, o := range orders {
		recent = append(recent, orderSummary{
			ID:          o.ID,
			OrderDate:   o.OrderDate,
			TotalAmount: o.TotalAmount,
			Status:      string(o.Status),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"username":     user.Username,
		"recentOrders": recent,
	})
}
