package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestComputeTotalsPickup(t *testing.T) {
	t.Parallel()

	totals := ComputeTotals(d("9.00"), d("0.05"), d("0.00"), d("8.00"), d("50.00"), false)
	require.True(t, totals.ServiceFee.Equal(d("0.45")), "service fee %s", totals.ServiceFee)
	require.True(t, totals.Tax.IsZero())
	require.True(t, totals.DeliveryFee.IsZero())
	require.True(t, totals.Total.Equal(d("9.45")), "total %s", totals.Total)
}

func TestComputeTotalsDeliveryUnderThreshold(t *testing.T) {
	t.Parallel()

	totals := ComputeTotals(d("9.00"), d("0.05"), d("0.00"), d("8.00"), d("50.00"), true)
	require.True(t, totals.DeliveryFee.Equal(d("8.00")))
	require.True(t, totals.Total.Equal(d("17.45")), "total %s", totals.Total)
}

func TestComputeTotalsFreeDeliveryBoundary(t *testing.T) {
	t.Parallel()

	// Exactly at the threshold the delivery fee is waived.
	at := ComputeTotals(d("50.00"), d("0.05"), d("0.00"), d("8.00"), d("50.00"), true)
	require.True(t, at.DeliveryFee.IsZero())
	require.True(t, at.Total.Equal(d("52.50")), "total %s", at.Total)

	under := ComputeTotals(d("49.99"), d("0.05"), d("0.00"), d("8.00"), d("50.00"), true)
	require.True(t, under.DeliveryFee.Equal(d("8.00")))
}

func TestComputeTotalsWithTax(t *testing.T) {
	t.Parallel()

	totals := ComputeTotals(d("20.00"), d("0.05"), d("0.08"), d("8.00"), d("50.00"), false)
	require.True(t, totals.ServiceFee.Equal(d("1.00")), "service fee %s", totals.ServiceFee)
	require.True(t, totals.Tax.Equal(d("1.60")), "tax %s", totals.Tax)
	require.True(t, totals.Total.Equal(d("22.60")), "total %s", totals.Total)

	// Invariant: total is the exact sum of its parts.
	sum := totals.Subtotal.Add(totals.ServiceFee).Add(totals.Tax).Add(totals.DeliveryFee)
	require.True(t, totals.Total.Equal(sum))
}

func TestComputeTotalsRounding(t *testing.T) {
	t.Parallel()

	// 10.10 * 0.05 = 0.505, rounds half-up to 0.51.
	totals := ComputeTotals(d("10.10"), d("0.05"), d("0.00"), d("8.00"), d("50.00"), false)
	require.True(t, totals.ServiceFee.Equal(d("0.51")), "service fee %s", totals.ServiceFee)
}

func TestCents(t *testing.T) {
	t.Parallel()

	require.Equal(t, int64(945), Cents(d("9.45")))
	require.Equal(t, int64(900), Cents(d("9.00")))
}
