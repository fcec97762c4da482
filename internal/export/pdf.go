package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/noah-isme/backend-quotes/internal/quote"
)

// PDF renders an exported quote document as a printable A4 PDF. customerName
// is optional; the customer id is printed when it is empty.
func PDF(doc quote.Document, customerName string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Quote", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Quote")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("No. %s issued %s", doc.Quote.ID, doc.Quote.CreatedAt.Format("2006-01-02")))
	pdf.Ln(6)

	who := customerName
	if who == "" {
		who = doc.Quote.CustomerID
	}
	pdf.Cell(0, 6, "Customer: "+who)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Status: "+string(doc.Quote.Status))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(90, 7, "Product")
	pdf.Cell(25, 7, "Qty")
	pdf.Cell(30, 7, "Unit price")
	pdf.Cell(30, 7, "Total")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	for _, l := range doc.Lines {
		pdf.Cell(90, 6, trim(l.ProductID, 44))
		pdf.Cell(25, 6, fmt.Sprintf("%g", l.Quantity))
		pdf.Cell(30, 6, fmt.Sprintf("%.2f", l.UnitPrice))
		pdf.Cell(30, 6, fmt.Sprintf("%.2f", l.LineTotal))
		pdf.Ln(6)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Subtotal: %.2f", doc.Quote.Subtotal))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Tax (%.0f%%): %.2f", doc.Quote.TaxRate*100, doc.Quote.TaxAmount))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Total: %.2f", doc.Quote.Total))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 5, "Generated: "+time.Now().Format(time.RFC3339))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func trim(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
