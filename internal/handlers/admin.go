package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storetrack/storetrack/internal/events"
	"github.com/storetrack/storetrack/internal/models"
)

const lowStockThreshold = 5

type AdminHandler struct {
	DB       *gorm.DB
	Producer events.Publisher
}

// Stats feeds the admin dashboard cards and the category chart.
func (h *AdminHandler) Stats(c echo.Context) error {
	var totalProducts int64
	if err := h.DB.Model(&models.Product{}).Count(&totalProducts).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var totalValue decimal.Decimal
	row := h.DB.Model(&models.Product{}).
		Select("COALESCE(SUM(price * inventory), 0)").Row()
	if err := row.Scan(&totalValue); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var lowStockCount int64
	if err := h.DB.Model(&models.Product{}).
		Where("inventory < ?", lowStockThreshold).Count(&lowStockCount).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var lowStock []models.Product
	if err := h.DB.Where("inventory < ?", lowStockThreshold).
		Order("inventory").Limit(10).Find(&lowStock).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var categories []struct {
		Category string `json:"category"`
		Count    int64  `json:"count"`
	}
	if err := h.DB.Model(&models.Product{}).
		Select("category, COUNT(*) AS count").Group("category").Scan(&categories).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"totalProducts":       totalProducts,
		"totalInventoryValue": totalValue,
		"lowStockCount":       lowStockCount,
		"lowStockProducts":    lowStock,
		"categoryCounts":      categories,
	})
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	var users []models.User
	if err := h.DB.Order("id").Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, users)
}

type adminOrderRow struct {
	ID          uint            `json:"id"`
	Username    string          `json:"username"`
	OrderDate   time.Time       `json:"order_date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
}

func (h *AdminHandler) ListOrders(c echo.Context) error {
	var rows []adminOrderRow
	err := h.DB.Table("orders").
		Select("orders.id, users.username, orders.order_date, orders.total_amount, orders.status").
		Joins("JOIN users ON users.id = orders.user_id").
		Order("orders.order_date DESC").
		Scan(&rows).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, rows)
}

// UpdateOrderStatus moves an order along the status graph. Transitions outside
// the graph are rejected, so a Delivered order can never flip back to
// Processing.
func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	next, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if !order.Status.CanTransitionTo(next) {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("cannot change status from %s to %s", order.Status, next))
	}

	if err := h.DB.Model(&order).Update("status", next).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, events.TopicOrderEvents, fmt.Sprint(order.UserID), map[string]any{
		"type":    "order_status_changed",
		"orderID": order.ID,
		"status":  next,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "order status updated"})
}
