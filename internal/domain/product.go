package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string           `json:"id" db:"id"`
	CategoryID  *string          `json:"categoryId,omitempty" db:"category_id"`
	Name        string           `json:"name" db:"name"`
	Slug        string           `json:"slug" db:"slug"`
	Description string           `json:"description,omitempty" db:"description"`
	Price       decimal.Decimal  `json:"price" db:"price"`
	Images      []string         `json:"images" db:"images"`
	IsActive    bool             `json:"isActive" db:"is_active"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time        `json:"updatedAt" db:"updated_at"`
	Variants    []ProductVariant `json:"variants,omitempty" db:"-"`
}

// ProductVariant is a purchasable option of a product (size, colour, ...).
type ProductVariant struct {
	ID        string          `json:"id" db:"id"`
	ProductID string          `json:"productId" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	SKU       *string         `json:"sku,omitempty" db:"sku"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     int             `json:"stock" db:"stock"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}
