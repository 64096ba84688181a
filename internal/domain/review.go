package domain

import "time"

type Review struct {
	ID           string    `json:"id" db:"id"`
	ProductID    string    `json:"productId" db:"product_id"`
	CustomerID   string    `json:"customerId" db:"customer_id"`
	CustomerName string    `json:"customerName,omitempty" db:"customer_name"`
	Rating       int       `json:"rating" db:"rating"`
	Comment      string    `json:"comment,omitempty" db:"comment"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
