package domain

import "time"

// Customer is identified by a unique, lower-cased email.
type Customer struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Email      string    `json:"email" db:"email"`
	Phone      string    `json:"phone,omitempty" db:"phone"`
	OrderCount int64     `json:"orderCount" db:"order_count"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}
