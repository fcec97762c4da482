package quote_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-quotes/internal/quote"
)

func okLines() []quote.Line {
	return []quote.Line{{ProductID: "p1", Quantity: 2, UnitPrice: 50}}
}

func TestValidateOK(t *testing.T) {
	require.Nil(t, quote.Validate("c1", 0.21, okLines()))
	require.Nil(t, quote.Validate("c1", 0, okLines()))
	require.Nil(t, quote.Validate("c1", 1, okLines()))
}

func TestValidateCustomerRequired(t *testing.T) {
	v := quote.Validate("", 0.21, okLines())
	require.NotNil(t, v)
	require.Equal(t, "CUSTOMER_REQUIRED", v.Code)
}

func TestValidateTaxRate(t *testing.T) {
	for _, rate := range []float64{-0.01, 1.01, math.NaN(), math.Inf(1), math.Inf(-1)} {
		v := quote.Validate("c1", rate, okLines())
		require.NotNil(t, v, "rate %v", rate)
		require.Equal(t, "TAX_RATE_INVALID", v.Code)
	}
}

func TestValidateLineRequired(t *testing.T) {
	v := quote.Validate("c1", 0.21, nil)
	require.NotNil(t, v)
	require.Equal(t, "LINE_REQUIRED", v.Code)

	// Lines without a product do not count.
	v = quote.Validate("c1", 0.21, []quote.Line{{Quantity: 1}})
	require.NotNil(t, v)
	require.Equal(t, "LINE_REQUIRED", v.Code)
}

func TestValidateQuantity(t *testing.T) {
	lines := []quote.Line{{ProductID: "p1", Quantity: 0, UnitPrice: 5}}
	v := quote.Validate("c1", 0.21, lines)
	require.NotNil(t, v)
	require.Equal(t, "QUANTITY_INVALID", v.Code)
}

func TestValidateUnitPrice(t *testing.T) {
	lines := []quote.Line{{ProductID: "p1", Quantity: 1, UnitPrice: -1}}
	v := quote.Validate("c1", 0.21, lines)
	require.NotNil(t, v)
	require.Equal(t, "UNIT_PRICE_INVALID", v.Code)
}

func TestValidatePriority(t *testing.T) {
	// Multiple rules broken at once: the earlier rule wins.
	bad := []quote.Line{{ProductID: "p1", Quantity: -1, UnitPrice: -1}}

	v := quote.Validate("", -1, bad)
	require.Equal(t, "CUSTOMER_REQUIRED", v.Code)

	v = quote.Validate("c1", -1, bad)
	require.Equal(t, "TAX_RATE_INVALID", v.Code)

	v = quote.Validate("c1", 0.21, bad)
	require.Equal(t, "QUANTITY_INVALID", v.Code)
}

func TestValidateSkipsUnassignedLines(t *testing.T) {
	// An incomplete row with garbage values must not block the draft as long
	// as one assigned line passes the rules.
	lines := []quote.Line{
		{Quantity: -5, UnitPrice: -1},
		{ProductID: "p1", Quantity: 1, UnitPrice: 9.99},
	}
	require.Nil(t, quote.Validate("c1", 0.21, lines))
}
