package quote

import "math"

// Violation identifies the first validation rule a draft fails.
type Violation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Validate checks a draft against the document rules in fixed priority order
// and returns the first violation, or nil when the draft is valid. Lines with
// no product assigned are incomplete rows and are skipped by the line rules.
func Validate(customerID string, taxRate float64, lines []Line) *Violation {
	if customerID == "" {
		return &Violation{Code: "CUSTOMER_REQUIRED", Message: "select a customer"}
	}
	if math.IsNaN(taxRate) || math.IsInf(taxRate, 0) || taxRate < 0 || taxRate > 1 {
		return &Violation{Code: "TAX_RATE_INVALID", Message: "tax rate must be between 0 and 1"}
	}

	assigned := 0
	for _, l := range lines {
		if l.ProductID != "" {
			assigned++
		}
	}
	if assigned == 0 {
		return &Violation{Code: "LINE_REQUIRED", Message: "add at least one line with a product"}
	}

	for _, l := range lines {
		if l.ProductID == "" {
			continue
		}
		if l.Quantity <= 0 {
			return &Violation{Code: "QUANTITY_INVALID", Message: "quantity must be greater than zero"}
		}
	}
	for _, l := range lines {
		if l.ProductID == "" {
			continue
		}
		if l.UnitPrice < 0 {
			return &Violation{Code: "UNIT_PRICE_INVALID", Message: "unit price cannot be negative"}
		}
	}
	return nil
}
