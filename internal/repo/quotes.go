package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-quotes/internal/common"
	"github.com/noah-isme/backend-quotes/internal/quote"
)

const quoteColumns = `id::text, customer_id::text, status, tax_rate::float8,
	subtotal::float8, tax_amount::float8, total::float8, created_at`

const lineColumns = `id::text, quote_id::text, product_id::text,
	quantity::float8, unit_price::float8, line_total::float8`

// QuotesRepo persists quote headers and lines through per-row statements.
type QuotesRepo struct {
	Pool *pgxpool.Pool
}

// List returns quotes newest first, optionally filtered by status, together
// with the total number of rows matching the same filter.
func (r QuotesRepo) List(ctx context.Context, status *quote.Status, limit, offset int32) ([]quote.Quote, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	where := ""
	args := []any{}
	if status != nil {
		where = " WHERE status = $1"
		args = append(args, string(*status))
	}

	var total int64
	if err := r.Pool.QueryRow(ctx, "SELECT count(*) FROM quotes"+where, args...).Scan(&total); err != nil {
		return nil, 0, mapPgError(err)
	}

	query := fmt.Sprintf("SELECT %s FROM quotes%s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		quoteColumns, where, limit, offset)
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapPgError(err)
	}
	defer rows.Close()

	out := make([]quote.Quote, 0, limit)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, q)
	}
	return out, total, rows.Err()
}

// GetByID fetches a single quote header.
func (r QuotesRepo) GetByID(ctx context.Context, id string) (quote.Quote, error) {
	row := r.Pool.QueryRow(ctx, "SELECT "+quoteColumns+" FROM quotes WHERE id = $1::uuid", id)
	q, err := scanQuote(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return quote.Quote{}, common.NotFound("quote not found")
		}
		return quote.Quote{}, mapPgError(err)
	}
	return q, nil
}

// Create inserts a new draft header with zeroed monetary fields and returns
// the generated identity.
func (r QuotesRepo) Create(ctx context.Context, customerID string, taxRate float64) (string, error) {
	var id string
	err := r.Pool.QueryRow(ctx,
		`INSERT INTO quotes (customer_id, status, tax_rate, subtotal, tax_amount, total)
		 VALUES ($1::uuid, 'draft', $2, 0, 0, 0)
		 RETURNING id::text`,
		customerID, taxRate,
	).Scan(&id)
	if err != nil {
		return "", mapPgError(err)
	}
	return id, nil
}

// UpdateHeader rewrites the header fields and derived totals.
func (r QuotesRepo) UpdateHeader(ctx context.Context, id string, patch quote.HeaderUpdate) error {
	tag, err := r.Pool.Exec(ctx,
		`UPDATE quotes
		 SET customer_id = $2::uuid, status = $3, tax_rate = $4,
		     subtotal = $5, tax_amount = $6, total = $7
		 WHERE id = $1::uuid`,
		id, patch.CustomerID, string(patch.Status), patch.TaxRate,
		patch.Subtotal, patch.TaxAmount, patch.Total,
	)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("quote not found")
	}
	return nil
}

// ListLines returns the quote's lines in insertion order.
func (r QuotesRepo) ListLines(ctx context.Context, quoteID string) ([]quote.Line, error) {
	rows, err := r.Pool.Query(ctx,
		"SELECT "+lineColumns+" FROM quote_lines WHERE quote_id = $1::uuid ORDER BY created_at, id",
		quoteID,
	)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var out []quote.Line
	for rows.Next() {
		var l quote.Line
		if err := rows.Scan(&l.ID, &l.QuoteID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpsertLine updates the row when the line carries an identity, inserts otherwise.
func (r QuotesRepo) UpsertLine(ctx context.Context, line quote.Line) error {
	if line.ID != "" {
		tag, err := r.Pool.Exec(ctx,
			`UPDATE quote_lines
			 SET product_id = $2::uuid, quantity = $3, unit_price = $4, line_total = $5
			 WHERE id = $1::uuid`,
			line.ID, line.ProductID, line.Quantity, line.UnitPrice, line.LineTotal,
		)
		if err != nil {
			return mapPgError(err)
		}
		if tag.RowsAffected() == 0 {
			return common.NotFound("quote line not found")
		}
		return nil
	}
	_, err := r.Pool.Exec(ctx,
		`INSERT INTO quote_lines (quote_id, product_id, quantity, unit_price, line_total)
		 VALUES ($1::uuid, $2::uuid, $3, $4, $5)`,
		line.QuoteID, line.ProductID, line.Quantity, line.UnitPrice, line.LineTotal,
	)
	return mapPgError(err)
}

// DeleteLine removes a persisted line row.
func (r QuotesRepo) DeleteLine(ctx context.Context, lineID string) error {
	_, err := r.Pool.Exec(ctx, "DELETE FROM quote_lines WHERE id = $1::uuid", lineID)
	return mapPgError(err)
}

// InsertQuoteEvent records a domain event for the quote aggregate.
func (r QuotesRepo) InsertQuoteEvent(ctx context.Context, topic, aggregateID string, payload []byte) error {
	_, err := r.Pool.Exec(ctx,
		"INSERT INTO quote_events (topic, aggregate_id, payload) VALUES ($1, $2::uuid, $3)",
		topic, aggregateID, payload,
	)
	return mapPgError(err)
}

func scanQuote(row pgx.Row) (quote.Quote, error) {
	var q quote.Quote
	var status string
	if err := row.Scan(&q.ID, &q.CustomerID, &status, &q.TaxRate,
		&q.Subtotal, &q.TaxAmount, &q.Total, &q.CreatedAt); err != nil {
		return quote.Quote{}, err
	}
	q.Status = quote.Status(status)
	return q, nil
}

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return common.Conflict("duplicate row", err)
		case "23503":
			return common.NewAppError("REFERENCE_INVALID", "referenced entity does not exist", 400, err)
		}
	}
	return err
}
