package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Category    string          `json:"category"`
	Supplier    string          `json:"supplier"`
}

type NewProduct struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Category    string          `json:"category"`
	Supplier    string          `json:"supplier"`
}

// priceCent is the absolute tolerance for treating two prices as the same.
var priceCent = decimal.NewFromFloat(0.01)

// ChooseExistingProduct picks which already-provisioned product a scanned
// line item should reuse, so repeated scans do not flood the catalog.
// Preference order: exact name + price match, then same name with a price
// within 10% (at least one cent), then the first search hit. Returns nil
// only when the search came back empty and a new product must be created.
func ChooseExistingProduct(candidates []Product, name string, unitPrice decimal.Decimal) *Product {
	if len(candidates) == 0 {
		return nil
	}
	lname := strings.ToLower(name)

	for i := range candidates {
		if strings.ToLower(candidates[i].Name) == lname &&
			candidates[i].UnitPrice.Sub(unitPrice).Abs().LessThan(priceCent) {
			return &candidates[i]
		}
	}

	tolerance := unitPrice.Mul(decimal.NewFromFloat(0.1))
	if tolerance.LessThan(priceCent) {
		tolerance = priceCent
	}
	for i := range candidates {
		if strings.ToLower(candidates[i].Name) == lname &&
			candidates[i].UnitPrice.Sub(unitPrice).Abs().LessThanOrEqual(tolerance) {
			return &candidates[i]
		}
	}

	// search is name-scoped, so the first hit is the best remaining guess
	return &candidates[0]
}
