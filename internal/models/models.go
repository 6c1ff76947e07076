package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"          json:"id"`
	Name        string          `gorm:"not null"                          json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `gorm:"index;not null"                    json:"category"`
	// NUMERIC column, kept exact end to end
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"         json:"price"`
	Inventory int             `gorm:"not null;default:0;check:inventory >= 0" json:"inventory"`
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"unique;not null"          json:"username"`
	Email        string    `gorm:"not null"                 json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null"                 json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"                                    json:"id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_cart_user_product"    json:"user_id"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_cart_user_product"    json:"product_id"`
	Quantity  int  `gorm:"not null;check:quantity > 0"                   json:"quantity"`
}

type Order struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID      uint            `gorm:"index;not null"              json:"user_id"`
	OrderDate   time.Time       `gorm:"not null"                    json:"order_date"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status      OrderStatus     `gorm:"not null"                    json:"status"`
}

// OrderItem rows are written once at checkout and never touched again.
// Price is the unit price at checkout time, not a reference to products.price.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey"                  json:"id"`
	OrderID   uint            `gorm:"index;not null"              json:"order_id"`
	ProductID uint            `gorm:"not null"                    json:"product_id"`
	Quantity  int             `gorm:"not null"                    json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

// All returns every model for AutoMigrate.
func All() []any {
	return []any{&User{}, &Product{}, &CartItem{}, &Order{}, &OrderItem{}}
}
