package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale groups the sale items created by one "add material" call on a job.
type Sale struct {
	ID          int        `json:"id"`
	JobId       int        `json:"jobId"`
	Date        time.Time  `json:"date"`
	Description string     `json:"description"`
	SaleItems   []SaleItem `json:"saleItems"`
}

// SaleItem is a line on a sale. UnitPrice is a snapshot taken when the
// material was added and may diverge from the product's current price.
// The line total is always derived, never stored.
type SaleItem struct {
	ID        int             `json:"id"`
	Product   Product         `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Notes     string          `json:"notes"`
}

func (si SaleItem) Total() decimal.Decimal {
	return si.UnitPrice.Mul(decimal.NewFromInt(int64(si.Quantity)))
}

func (s Sale) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.SaleItems {
		total = total.Add(item.Total())
	}
	return total
}

// NewMaterial is the create/update payload for a material line.
type NewMaterial struct {
	ProductId int             `json:"productId" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Notes     string          `json:"notes"`
}

// MaterialQuantityUpdate is the quantity-only partial update. Price and
// product identity are not mutable through this path.
type MaterialQuantityUpdate struct {
	Quantity int `json:"quantity" binding:"required"`
}
