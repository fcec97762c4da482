package quotes

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/backend-quotes/internal/catalog"
	"github.com/noah-isme/backend-quotes/internal/common"
	"github.com/noah-isme/backend-quotes/internal/export"
	"github.com/noah-isme/backend-quotes/internal/quote"
)

// CustomerReader resolves customer names for rendered documents.
type CustomerReader interface {
	GetCustomer(ctx context.Context, id string) (catalog.Customer, error)
}

// Service serves persisted quotes: listing, detail, and document export.
type Service struct {
	Repo      quote.Repository
	Customers CustomerReader
}

// List returns quotes optionally filtered by status.
func (s *Service) List(ctx context.Context, statusFilter string, limit, offset int32) ([]quote.Quote, int64, error) {
	if s == nil || s.Repo == nil {
		return nil, 0, errors.New("quotes service not configured")
	}
	var status *quote.Status
	if statusFilter != "" {
		st := quote.Status(statusFilter)
		if !st.Valid() {
			return nil, 0, common.BadRequest(fmt.Sprintf("unknown status %q", statusFilter))
		}
		status = &st
	}
	return s.Repo.List(ctx, status, limit, offset)
}

// Get fetches a single quote header.
func (s *Service) Get(ctx context.Context, id string) (quote.Quote, error) {
	if s == nil || s.Repo == nil {
		return quote.Quote{}, errors.New("quotes service not configured")
	}
	return s.Repo.GetByID(ctx, id)
}

// ExportDocument reads the quote and its lines fresh from the repository.
func (s *Service) ExportDocument(ctx context.Context, id string) (quote.Document, error) {
	if s == nil || s.Repo == nil {
		return quote.Document{}, errors.New("quotes service not configured")
	}
	q, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return quote.Document{}, err
	}
	lines, err := s.Repo.ListLines(ctx, id)
	if err != nil {
		return quote.Document{}, err
	}
	return quote.Document{Quote: q, Lines: lines}, nil
}

// ExportPDF renders the exported document as a PDF, resolving the customer
// name when a reader is configured.
func (s *Service) ExportPDF(ctx context.Context, id string) ([]byte, error) {
	doc, err := s.ExportDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	name := ""
	if s.Customers != nil {
		if c, err := s.Customers.GetCustomer(ctx, doc.Quote.CustomerID); err == nil {
			name = c.Name
		}
	}
	return export.PDF(doc, name)
}
