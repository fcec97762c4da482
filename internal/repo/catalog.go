package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-quotes/internal/catalog"
	"github.com/noah-isme/backend-quotes/internal/common"
)

// CatalogRepo reads the customer and product reference tables.
type CatalogRepo struct {
	Pool *pgxpool.Pool
}

// ListCustomers returns every customer ordered by name.
func (r CatalogRepo) ListCustomers(ctx context.Context) ([]catalog.Customer, error) {
	rows, err := r.Pool.Query(ctx,
		"SELECT id::text, name, coalesce(email, '') FROM customers ORDER BY name")
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var out []catalog.Customer
	for rows.Next() {
		var c catalog.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCustomer fetches a single customer.
func (r CatalogRepo) GetCustomer(ctx context.Context, id string) (catalog.Customer, error) {
	var c catalog.Customer
	err := r.Pool.QueryRow(ctx,
		"SELECT id::text, name, coalesce(email, '') FROM customers WHERE id = $1::uuid", id,
	).Scan(&c.ID, &c.Name, &c.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Customer{}, common.NotFound("customer not found")
		}
		return catalog.Customer{}, mapPgError(err)
	}
	return c, nil
}

// CustomerEmail reads a customer's contact address. Customers without an
// email resolve to an empty string.
func (r CatalogRepo) CustomerEmail(ctx context.Context, customerID string) (string, error) {
	var email string
	err := r.Pool.QueryRow(ctx,
		"SELECT coalesce(email, '') FROM customers WHERE id = $1::uuid", customerID,
	).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", common.NotFound("customer not found")
		}
		return "", mapPgError(err)
	}
	return email, nil
}

// ListProducts returns every product ordered by name.
func (r CatalogRepo) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.Pool.Query(ctx,
		"SELECT id::text, name, base_price::float8 FROM products ORDER BY name")
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var out []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.BasePrice); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ProductBasePrice reads a product's current base price for assignment.
func (r CatalogRepo) ProductBasePrice(ctx context.Context, productID string) (float64, error) {
	var price float64
	err := r.Pool.QueryRow(ctx,
		"SELECT base_price::float8 FROM products WHERE id = $1::uuid", productID,
	).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, common.NotFound("product not found")
		}
		return 0, mapPgError(err)
	}
	return price, nil
}
