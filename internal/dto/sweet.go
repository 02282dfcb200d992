package dto

import "time"

type CreateSweetRequest struct {
	Name     string  `json:"name" binding:"required,min=1,max=120"`
	Category string  `json:"category" binding:"required,min=1,max=120"`
	Price    float64 `json:"price" binding:"required,gt=0"`
	Quantity int64   `json:"quantity" binding:"gte=0"`
}

// UpdateSweetRequest is a partial update: nil = не менять, значение = поставить.
type UpdateSweetRequest struct {
	Name     *string  `json:"name" binding:"omitempty,min=1,max=120"`
	Category *string  `json:"category" binding:"omitempty,min=1,max=120"`
	Price    *float64 `json:"price" binding:"omitempty,gt=0"`
	Quantity *int64   `json:"quantity" binding:"omitempty,gte=0"`
}

// AmountRequest is the body for purchase and restock.
type AmountRequest struct {
	Quantity int64 `json:"quantity" binding:"required,gt=0"`
}

type SweetResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Quantity  int64     `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StockResponse is returned by purchase and restock; Quantity is the new
// stock level, Purchased/Restocked the amount moved.
type StockResponse struct {
	Message   string `json:"message"`
	SweetID   int64  `json:"sweet_id"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	Purchased int64  `json:"purchased,omitempty"`
	Restocked int64  `json:"restocked,omitempty"`
}
