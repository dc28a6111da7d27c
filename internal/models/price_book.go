package models

import "time"

// PriceBookItem is a contracted unit-price line item. Unit entries copy
// UnitPrice at capture time; later edits here never flow back into
// existing entries.
type PriceBookItem struct {
	ID          int       `json:"id" db:"id"`
	CompanyID   int       `json:"company_id" db:"company_id"`
	ItemCode    string    `json:"item_code" db:"item_code"`
	Description string    `json:"description" db:"description"`
	Unit        string    `json:"unit" db:"unit"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CreatePriceBookItemRequest is the request body for adding a line item.
type CreatePriceBookItemRequest struct {
	ItemCode    string  `json:"item_code"`
	Description string  `json:"description"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
}
