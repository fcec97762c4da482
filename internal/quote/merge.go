package quote

import (
	"fmt"

	"github.com/noah-isme/backend-quotes/internal/pricing"
)

// AssignResult describes the outcome of assigning a product to a line.
type AssignResult struct {
	Lines []Line
	// Merged is true when the edited line was folded into an existing line
	// holding the same product.
	Merged bool
	// RemovedLineID carries the persisted identity of the line dropped by a
	// merge, so the caller can schedule its deletion. Empty when the removed
	// line was never persisted or no merge happened.
	RemovedLineID string
}

// AssignProduct sets the product of the line at index, capturing basePrice as
// the line's unit price. When another line already holds the same product the
// two are merged: the existing line absorbs the edited line's quantity and the
// edited line is removed, keeping at most one line per product.
func AssignProduct(lines []Line, index int, productID string, basePrice float64) (AssignResult, error) {
	if index < 0 || index >= len(lines) {
		return AssignResult{}, fmt.Errorf("line index %d out of range", index)
	}
	if productID == "" {
		return AssignResult{}, fmt.Errorf("product id is required")
	}

	next := make([]Line, len(lines))
	copy(next, lines)
	edited := next[index]

	for i := range next {
		if i == index || next[i].ProductID != productID {
			continue
		}
		qty := edited.Quantity
		if qty <= 0 {
			qty = 1
		}
		next[i].Quantity += qty
		next[i].LineTotal = pricing.LineTotal(next[i].Quantity, next[i].UnitPrice)
		next = append(next[:index], next[index+1:]...)
		return AssignResult{Lines: next, Merged: true, RemovedLineID: edited.ID}, nil
	}

	next[index].ProductID = productID
	next[index].UnitPrice = basePrice
	next[index].LineTotal = pricing.LineTotal(next[index].Quantity, next[index].UnitPrice)
	return AssignResult{Lines: next}, nil
}
