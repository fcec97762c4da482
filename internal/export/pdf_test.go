package export_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-quotes/internal/export"
	"github.com/noah-isme/backend-quotes/internal/quote"
)

func sampleDocument() quote.Document {
	return quote.Document{
		Quote: quote.Quote{
			ID:         "q1",
			CustomerID: "c1",
			Status:     quote.StatusDraft,
			TaxRate:    0.21,
			Subtotal:   100,
			TaxAmount:  21,
			Total:      121,
			CreatedAt:  time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC),
		},
		Lines: []quote.Line{
			{ID: "l1", QuoteID: "q1", ProductID: "p1", Quantity: 2, UnitPrice: 50, LineTotal: 100},
		},
	}
}

func TestPDF(t *testing.T) {
	data, err := export.PDF(sampleDocument(), "Acme Corp")
	require.NoError(t, err)
	require.True(t, len(data) > 500)
	require.Equal(t, "%PDF", string(data[:4]))
}

func TestPDFWithoutCustomerName(t *testing.T) {
	data, err := export.PDF(sampleDocument(), "")
	require.NoError(t, err)
	require.Equal(t, "%PDF", string(data[:4]))
}

func TestPDFEmptyLines(t *testing.T) {
	doc := sampleDocument()
	doc.Lines = nil
	data, err := export.PDF(doc, "Acme Corp")
	require.NoError(t, err)
	require.Equal(t, "%PDF", string(data[:4]))
}
