// Package checkout converts a user's cart into an order inside one database
// transaction: order + order items created, inventory decremented, cart
// emptied, or nothing at all.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storetrack/storetrack/internal/models"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductUnavailable = errors.New("product no longer available")
)

// InsufficientInventoryError names the first cart line that asked for more
// units than the catalog holds.
type InsufficientInventoryError struct {
	ProductID uint
	Name      string
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for %q: requested %d, available %d",
		e.Name, e.Requested, e.Available)
}

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{DB: db} }

// PlaceOrder runs the checkout transaction for userID. Validation failures
// (ErrEmptyCart, *InsufficientInventoryError, ErrProductUnavailable) and
// storage errors all roll back; no retries happen here. A caller may retry
// freely since a failed attempt leaves no state behind.
func (s *Service) PlaceOrder(ctx context.Context, userID uint) (*models.Order, []models.OrderItem, error) {
	var (
		order models.Order
		items []models.OrderItem
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lines []models.CartItem
		if err := tx.Where("user_id = ?", userID).Order("product_id").Find(&lines).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		ids := make([]uint, 0, len(lines))
		for _, l := range lines {
			ids = append(ids, l.ProductID)
		}

		// Lock the product rows for the duration of the transaction so
		// overlapping checkouts serialize instead of double-spending
		// inventory. Rows are locked in id order to rule out deadlocks.
		// sqlite has no FOR UPDATE; there the guarded decrement below is
		// the only arbiter, which is still enough for correctness.
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var products []models.Product
		if err := q.Where("id IN ?", ids).Order("id").Find(&products).Error; err != nil {
			return err
		}

		byID := make(map[uint]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		for _, l := range lines {
			p, ok := byID[l.ProductID]
			if !ok {
				return fmt.Errorf("product %d: %w", l.ProductID, ErrProductUnavailable)
			}
			if l.Quantity > p.Inventory {
				return &InsufficientInventoryError{
					ProductID: p.ID,
					Name:      p.Name,
					Requested: l.Quantity,
					Available: p.Inventory,
				}
			}
		}

		// Price snapshot: totals and order items use the prices read above,
		// never the live catalog.
		total := decimal.Zero
		for _, l := range lines {
			p := byID[l.ProductID]
			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}

		order = models.Order{
			UserID:      userID,
			OrderDate:   time.Now().UTC(),
			TotalAmount: total,
			Status:      models.StatusProcessing,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		items = make([]models.OrderItem, 0, len(lines))
		for _, l := range lines {
			item := models.OrderItem{
				OrderID:   order.ID,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				Price:     byID[l.ProductID].Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			items = append(items, item)
		}

		for _, l := range lines {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND inventory >= ?", l.ProductID, l.Quantity).
				UpdateColumn("inventory", gorm.Expr("inventory - ?", l.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// A concurrent checkout won the race between our read and
				// this write.
				p := byID[l.ProductID]
				return &InsufficientInventoryError{
					ProductID: p.ID,
					Name:      p.Name,
					Requested: l.Quantity,
					Available: p.Inventory,
				}
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &order, items, nil
}
