package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storetrack/storetrack/internal/checkout"
	"github.com/storetrack/storetrack/internal/events"
	"github.com/storetrack/storetrack/internal/logging"
)

type CheckoutHandler struct {
	Checkout *checkout.Service
	Producer events.Publisher
}

func (h *CheckoutHandler) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout")

	var req struct {
		UserID uint `json:"userId"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.UserID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is required")
	}
	if !canActFor(c, req.UserID) {
		return echo.NewHTTPError(http.StatusForbidden, "cannot check out another user's cart")
	}

	order, items, err := h.Checkout.PlaceOrder(ctx, req.UserID)
	if err != nil {
		var insufficient *checkout.InsufficientInventoryError
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
		case errors.As(err, &insufficient):
			return echo.NewHTTPError(http.StatusBadRequest, insufficient.Error())
		case errors.Is(err, checkout.ErrProductUnavailable):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			l.Error("checkout_failed", "userID", req.UserID, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	publish(c, h.Producer, events.TopicOrderEvents, fmt.Sprint(req.UserID), map[string]any{
		"type":    "order_created",
		"userID":  req.UserID,
		"orderID": order.ID,
		"total":   order.TotalAmount,
		"items":   items,
	})

	l.Info("checkout_success", "userID", req.UserID, "orderID", order.ID, "total", order.TotalAmount)
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Order #%d placed successfully", order.ID),
		"orderId": order.ID,
	})
}
