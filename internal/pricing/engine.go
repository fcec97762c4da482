package pricing

import "math"

// Item describes a quote line used for totals calculation.
type Item struct {
	Qty       float64
	UnitPrice float64
}

// Summary aggregates computed pricing components.
type Summary struct {
	Subtotal  float64
	TaxAmount float64
	Total     float64
}

// Round2 rounds a value to two decimal places, half away from zero at the
// cent boundary. Idempotent.
func Round2(n float64) float64 {
	return math.Round(n*100) / 100
}

// LineTotal computes the rounded total for a single line.
func LineTotal(qty, unitPrice float64) float64 {
	return Round2(qty * unitPrice)
}

// Compute calculates document totals for the given lines and tax rate. The
// tax amount is derived from the already-rounded subtotal so the result does
// not depend on line order or float accumulation path.
func Compute(items []Item, taxRate float64) Summary {
	var sum float64
	for _, it := range items {
		sum += LineTotal(it.Qty, it.UnitPrice)
	}
	subtotal := Round2(sum)
	tax := Round2(subtotal * taxRate)
	total := Round2(subtotal + tax)
	return Summary{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     total,
	}
}
