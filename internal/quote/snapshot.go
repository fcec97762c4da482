package quote

import (
	"encoding/json"

	"github.com/noah-isme/backend-quotes/internal/pricing"
)

type snapshotLine struct {
	ID        *string `json:"id"`
	ProductID string  `json:"productId"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type snapshot struct {
	CustomerID string         `json:"customerId"`
	Status     Status         `json:"status"`
	TaxRate    float64        `json:"taxRate"`
	Lines      []snapshotLine `json:"lines"`
}

// Snapshot produces a canonical encoding of the externally meaningful draft
// state, used for change detection against a baseline. Derived monetary
// fields are excluded: they are pure functions of the encoded fields and
// would turn float jitter into phantom edits.
func Snapshot(customerID string, status Status, taxRate float64, lines []Line) string {
	slim := snapshot{
		CustomerID: customerID,
		Status:     status,
		TaxRate:    pricing.Round2(taxRate),
		Lines:      make([]snapshotLine, 0, len(lines)),
	}
	for _, l := range lines {
		var id *string
		if l.ID != "" {
			v := l.ID
			id = &v
		}
		slim.Lines = append(slim.Lines, snapshotLine{
			ID:        id,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: pricing.Round2(l.UnitPrice),
		})
	}
	data, _ := json.Marshal(slim)
	return string(data)
}
