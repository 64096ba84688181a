package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order keeps a snapshot of the customer contact data taken when it was placed.
type Order struct {
	ID            string          `json:"id" db:"id"`
	OrderNumber   string          `json:"orderNumber" db:"order_number"`
	CustomerID    string          `json:"customerId" db:"customer_id"`
	CustomerName  string          `json:"customerName" db:"customer_name"`
	CustomerEmail string          `json:"customerEmail" db:"customer_email"`
	CustomerPhone string          `json:"customerPhone,omitempty" db:"customer_phone"`
	TotalAmount   decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Status        string          `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
	Items         []OrderItem     `json:"items,omitempty" db:"-"`
}

// OrderItem stores name and price snapshots so later catalog edits do not
// rewrite order history.
type OrderItem struct {
	ID          string          `json:"id" db:"id"`
	OrderID     string          `json:"orderId" db:"order_id"`
	ProductID   string          `json:"productId" db:"product_id"`
	VariantID   string          `json:"variantId" db:"variant_id"`
	ProductName string          `json:"productName" db:"product_name"`
	VariantName string          `json:"variantName" db:"variant_name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Quantity    int             `json:"quantity" db:"quantity"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// LineTotal is price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
