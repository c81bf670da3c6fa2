package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptDraft is the transient reconciliation workspace built from one
// extraction result. It is never sent to the server as-is; confirming a
// draft turns its lines into materials one call at a time.
type ReceiptDraft struct {
	Vendor   string          `json:"vendor"`
	Date     string          `json:"date"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Items    []ReceiptItem   `json:"items"`
}

type ReceiptItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

// ExtractedTotal is the sum of the stored line totals, which the
// reconciliation workflow compares against the receipt subtotal.
func (d ReceiptDraft) ExtractedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range d.Items {
		total = total.Add(item.Total)
	}
	return total
}

// ReceiptAttachment is the locally persisted evidence for a receipt upload.
// Data holds the text-encoded payload; the server never receives it.
type ReceiptAttachment struct {
	ID         string    `json:"id"`
	Data       string    `json:"data"`
	UploadedAt time.Time `json:"uploadedAt"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Type       string    `json:"type"`
}
