package catalog

import (
	"context"
	"errors"
)

// Customer is a read-only reference entity used to address quotes.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Product is a read-only reference entity. BasePrice is the current catalog
// price; the editor copies it onto a line at assignment time and never reads
// it back afterwards.
type Product struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	BasePrice float64 `json:"basePrice"`
}

// Store defines the reference-entity reads consumed by the service.
type Store interface {
	ListCustomers(ctx context.Context) ([]Customer, error)
	ListProducts(ctx context.Context) ([]Product, error)
}

// Service serves the customer and product selectors backed by a Redis cache.
type Service struct {
	store Store
	cache *Cache
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store Store
	Cache *Cache
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	return &Service{store: cfg.Store, cache: cfg.Cache}, nil
}

const (
	customersCacheKey = "catalog:customers"
	productsCacheKey  = "catalog:products"
)

// ListCustomers returns every customer, cache first.
func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	var cached []Customer
	if hit, err := s.cache.GetJSON(ctx, customersCacheKey, &cached); err == nil && hit {
		return cached, nil
	}
	rows, err := s.store.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, customersCacheKey, rows)
	return rows, nil
}

// ListProducts returns every product, cache first.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	var cached []Product
	if hit, err := s.cache.GetJSON(ctx, productsCacheKey, &cached); err == nil && hit {
		return cached, nil
	}
	rows, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, productsCacheKey, rows)
	return rows, nil
}
