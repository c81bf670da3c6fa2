package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func product(id int, name, unitPrice string) Product {
	p, _ := decimal.NewFromString(unitPrice)
	return Product{ID: id, Name: name, UnitPrice: p}
}

func amount(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestChooseExistingProductExactMatchWins(t *testing.T) {
	candidates := []Product{
		product(1, "2x4 Lumber", "13.00"),
		product(2, "2x4 Lumber", "12.50"),
		product(3, "Plywood", "12.50"),
	}
	got := ChooseExistingProduct(candidates, "2x4 lumber", amount("12.50"))
	if got == nil || got.ID != 2 {
		t.Fatalf("got %+v, want product 2", got)
	}
}

func TestChooseExistingProductPriceTolerance(t *testing.T) {
	candidates := []Product{
		product(1, "Plywood", "50.00"),
		product(2, "2x4 Lumber", "13.10"),
	}
	// 13.10 is within 10% of 12.50
	got := ChooseExistingProduct(candidates, "2x4 Lumber", amount("12.50"))
	if got == nil || got.ID != 2 {
		t.Fatalf("got %+v, want product 2", got)
	}

	// way off on price: falls back to the first search hit
	got = ChooseExistingProduct(candidates, "2x4 Lumber", amount("99.00"))
	if got == nil || got.ID != 1 {
		t.Fatalf("got %+v, want the first hit", got)
	}
}

func TestChooseExistingProductEmptySearch(t *testing.T) {
	if got := ChooseExistingProduct(nil, "Grout", amount("8.99")); got != nil {
		t.Fatalf("empty search must return nil, got %+v", got)
	}
}

func TestReceiptDraftExtractedTotal(t *testing.T) {
	draft := ReceiptDraft{Items: []ReceiptItem{
		{Total: amount("25.00")},
		{Total: amount("23.50")},
	}}
	if got := draft.ExtractedTotal(); !got.Equal(amount("48.50")) {
		t.Fatalf("extracted total = %s", got)
	}
	if got := (ReceiptDraft{}).ExtractedTotal(); !got.IsZero() {
		t.Fatalf("empty draft total = %s", got)
	}
}
