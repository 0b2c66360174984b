package checkout

import "github.com/shopspring/decimal"

// Totals is the fee breakdown presented to the customer and charged by Stripe.
type Totals struct {
	Subtotal    decimal.Decimal
	ServiceFee  decimal.Decimal
	Tax         decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
}

// ComputeTotals derives the full fee breakdown from the authoritative
// subtotal. Service fee and tax are rounded half-up to the cent. Delivery
// is free at or above the threshold.
func ComputeTotals(subtotal, serviceFeeRate, taxRate, deliveryFee, freeDeliveryThreshold decimal.Decimal, isDelivery bool) Totals {
	totals := Totals{
		Subtotal:    subtotal,
		ServiceFee:  subtotal.Mul(serviceFeeRate).Round(2),
		Tax:         subtotal.Mul(taxRate).Round(2),
		DeliveryFee: decimal.Zero,
	}
	if isDelivery && subtotal.LessThan(freeDeliveryThreshold) {
		totals.DeliveryFee = deliveryFee
	}
	totals.Total = totals.Subtotal.Add(totals.ServiceFee).Add(totals.Tax).Add(totals.DeliveryFee)
	return totals
}

// Cents converts a decimal dollar amount to Stripe's integer cents.
func Cents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
