package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storetrack/storetrack/internal/events"
	"github.com/storetrack/storetrack/internal/models"
)

type CartHandler struct {
	DB       *gorm.DB
	Producer events.Publisher
}

// cartLine is the storefront view of one cart row: product fields joined in,
// line total precomputed.
type cartLine struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := parseUintParam(c, "userID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if !canActFor(c, userID) {
		return echo.NewHTTPError(http.StatusForbidden, "cannot access another user's cart")
	}

	var rows []struct {
		ProductID uint
		Name      string
		Price     decimal.Decimal
		Quantity  int
	}
	err = h.DB.Table("cart_items").
		Select("cart_items.product_id, products.name, products.price, cart_items.quantity").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.product_id").
		Scan(&rows).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	lines := make([]cartLine, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, cartLine{
			ID:         r.ProductID,
			Name:       r.Name,
			Price:      r.Price,
			Quantity:   r.Quantity,
			TotalPrice: r.Price.Mul(decimal.NewFromInt(int64(r.Quantity))),
		})
	}
	return c.JSON(http.StatusOK, lines)
}

// AddItem increments an existing line or inserts a new one. Inventory is not
// checked here on purpose: the cart records intent, checkout enforces stock.
func (h *CartHandler) AddItem(c echo.Context) error {
	var req struct {
		UserID    uint `json:"userId"`
		ProductID uint `json:"productId"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be at least 1")
	}
	if !canActFor(c, req.UserID) {
		return echo.NewHTTPError(http.StatusForbidden, "cannot access another user's cart")
	}

	var product models.Product
	if err := h.DB.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var item models.CartItem
	err := h.DB.Where("user_id = ? AND product_id = ?", req.UserID, req.ProductID).First(&item).Error
	switch {
	case err == nil:
		item.Quantity += req.Quantity
		if err := h.DB.Save(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{
			UserID:    req.UserID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		}
		if err := h.DB.Create(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, events.TopicCartEvents, fmt.Sprint(req.UserID), map[string]any{
		"type":      "cart_item_added",
		"userID":    req.UserID,
		"productID": req.ProductID,
		"quantity":  item.Quantity,
	})
	return c.JSON(http.StatusOK, item)
}

// UpdateItem overwrites a line's quantity; zero removes the line.
func (h *CartHandler) UpdateItem(c echo.Context) error {
	var req struct {
		UserID    uint `json:"userId"`
		ProductID uint `json:"productId"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must not be negative")
	}
	if !canActFor(c, req.UserID) {
		return echo.NewHTTPError(http.StatusForbidden, "cannot access another user's cart")
	}

	if req.Quantity == 0 {
		if err := h.DB.Where("user_id = ? AND product_id = ?", req.UserID, req.ProductID).
			Delete(&models.CartItem{}).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		publish(c, h.Producer, events.TopicCartEvents, fmt.Sprint(req.UserID), map[string]any{
			"type":      "cart_item_removed",
			"userID":    req.UserID,
			"productID": req.ProductID,
		})
		return c.JSON(http.StatusOK, echo.Map{"message": "item removed"})
	}

	res := h.DB.Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", req.UserID, req.ProductID).
		Update("quantity", req.Quantity)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "cart item not found")
	}

	publish(c, h.Producer, events.TopicCartEvents, fmt.Sprint(req.UserID), map[string]any{
		"type":      "cart_item_updated",
		"userID":    req.UserID,
		"productID": req.ProductID,
		"quantity":  req.Quantity,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "cart updated"})
}
