package quote

import "context"

// HeaderUpdate carries the header fields rewritten on every save.
type HeaderUpdate struct {
	CustomerID string
	Status     Status
	TaxRate    float64
	Subtotal   float64
	TaxAmount  float64
	Total      float64
}

// Repository is the backing-store contract consumed by the editor. The store
// offers per-row primitives only; there is no multi-row transaction, which is
// why the save sequence has no rollback on partial failure.
type Repository interface {
	List(ctx context.Context, status *Status, limit, offset int32) ([]Quote, int64, error)
	GetByID(ctx context.Context, id string) (Quote, error)
	Create(ctx context.Context, customerID string, taxRate float64) (string, error)
	UpdateHeader(ctx context.Context, id string, patch HeaderUpdate) error

	ListLines(ctx context.Context, quoteID string) ([]Line, error)
	// UpsertLine updates the row when the line carries a persisted identity
	// and inserts it otherwise.
	UpsertLine(ctx context.Context, line Line) error
	DeleteLine(ctx context.Context, lineID string) error
}
