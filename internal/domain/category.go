package domain

import "time"

type Category struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Slug         string    `json:"slug" db:"slug"`
	Description  string    `json:"description,omitempty" db:"description"`
	ImageURL     string    `json:"imageUrl,omitempty" db:"image_url"`
	ProductCount int64     `json:"productCount" db:"product_count"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
