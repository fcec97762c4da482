package quote

import "time"

// Status enumerates the lifecycle states of a quote document.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted:
		return true
	}
	return false
}

// Quote is the persisted header of a quote document. The monetary fields are
// derived from the lines and tax rate and are rewritten on every save.
type Quote struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customerId"`
	Status     Status    `json:"status"`
	TaxRate    float64   `json:"taxRate"`
	Subtotal   float64   `json:"subtotal"`
	TaxAmount  float64   `json:"taxAmount"`
	Total      float64   `json:"total"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Line is a single quote line. ID is empty until the line has been persisted.
// ProductID may be empty while the user is still filling the row in. The unit
// price is captured when the product is assigned and is not re-read from the
// catalog afterwards.
type Line struct {
	ID        string  `json:"id,omitempty"`
	QuoteID   string  `json:"quoteId,omitempty"`
	ProductID string  `json:"productId"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
}

// Document packages a quote header with its lines for export.
type Document struct {
	Quote Quote  `json:"quote"`
	Lines []Line `json:"lines"`
}
