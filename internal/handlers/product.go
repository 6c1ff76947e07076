package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storetrack/storetrack/internal/events"
	"github.com/storetrack/storetrack/internal/logging"
	"github.com/storetrack/storetrack/internal/models"
	"github.com/storetrack/storetrack/internal/search"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer events.Publisher
	Indexer  *search.Indexer
}

type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Inventory   int             `json:"inventory"`
}

func (r *productRequest) validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Price.IsNegative() {
		return errors.New("price must not be negative")
	}
	if r.Inventory < 0 {
		return errors.New("inventory must not be negative")
	}
	return nil
}

// ListAvailable is the storefront listing: only products with units to sell.
func (h *ProductHandler) ListAvailable(c echo.Context) error {
	var items []models.Product
	if err := h.DB.Where("inventory > 0").Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, items)
}

// ListAll is the admin listing, any inventory level.
func (h *ProductHandler) ListAll(c echo.Context) error {
	var items []models.Product
	if err := h.DB.Order("id").Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var p models.Product
	if err := h.DB.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Create(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Inventory:   req.Inventory,
	}
	if err := h.DB.Create(&p).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, events.TopicProductEvents, fmt.Sprint(p.ID), map[string]any{
		"type":      "product_created",
		"productID": p.ID,
		"name":      p.Name,
	})
	h.reindex(c, p)

	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) Update(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res := h.DB.Model(&models.Product{}).Where("id = ?", id).Updates(map[string]any{
		"name":        req.Name,
		"description": req.Description,
		"category":    req.Category,
		"price":       req.Price,
		"inventory":   req.Inventory,
	})
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	p := models.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Inventory:   req.Inventory,
	}

	publish(c, h.Producer, events.TopicProductEvents, fmt.Sprint(id), map[string]any{
		"type":      "product_updated",
		"productID": id,
	})
	h.reindex(c, p)

	return c.JSON(http.StatusOK, p)
}

// Delete removes a product unless the order ledger references it: order items
// are immutable history and must keep pointing at a real row. Cart lines are
// provisional and get dropped together with the product.
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return echo.NewHTTPError(http.StatusConflict, "product is referenced by existing orders")
		}

		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return nil
	})
	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, events.TopicProductEvents, fmt.Sprint(id), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	if h.Indexer != nil {
		if err := h.Indexer.DeleteProduct(c.Request().Context(), id); err != nil {
			logging.FromContext(c.Request().Context()).Warn("search deindex failed", "productID", id, "error", err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}

func (h *ProductHandler) reindex(c echo.Context, p models.Product) {
	if h.Indexer == nil {
		return
	}
	if err := h.Indexer.IndexProduct(c.Request().Context(), p); err != nil {
		logging.FromContext(c.Request().Context()).Warn("search index failed", "productID", p.ID, "error", err)
	}
}
