package domain

import "time"

type Category struct {
	ID          string    `json:"category_id"`
	Name        string    `json:"category_name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Product struct {
	ID           string    `json:"product_id"`
	Name         string    `json:"product_name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	ImageURL     string    `json:"product_image"`
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
