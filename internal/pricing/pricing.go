// Package pricing turns cart lines into a rounded price breakdown. It performs no I/O.
package pricing

import (
	"github.com/shopspring/decimal"
)

const places = 2

var hundred = decimal.NewFromInt(100)

type DiscountType string

const (
	DiscountFixed      DiscountType = "FIXED"
	DiscountPercentage DiscountType = "PERCENTAGE"
)

// Line is one cart line. Note does not take part in pricing.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
	Note      string
}

// Discount is requested either as a fixed amount or as a percentage of the subtotal.
type Discount struct {
	Type  DiscountType    `json:"type"`
	Value decimal.Decimal `json:"value"`
}

type Breakdown struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	Tax         decimal.Decimal `json:"tax"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
}

func round(d decimal.Decimal) decimal.Decimal {
	// decimal.Round rounds half away from zero
	return d.Round(places)
}

// Subtotal sums unit price times quantity and rounds once after summation.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return round(sum)
}

// ResolveDiscount converts a discount request into a fixed amount against the given
// subtotal. The result is a snapshot: later cart changes do not rescale it.
func ResolveDiscount(d Discount, subtotal decimal.Decimal) decimal.Decimal {
	if d.Value.IsZero() {
		return decimal.Zero
	}
	if d.Type == DiscountPercentage {
		return round(subtotal.Mul(d.Value).Div(hundred))
	}
	return round(d.Value)
}

// Calculate produces the breakdown for lines with an already resolved discount amount.
// taxRate is a percentage (10 means 10%).
func Calculate(lines []Line, discount, taxRate, deliveryFee decimal.Decimal) Breakdown {
	subtotal := Subtotal(lines)

	effective := decimal.Min(discount, subtotal)
	taxable := subtotal.Sub(effective)
	tax := round(taxable.Mul(taxRate).Div(hundred))
	fee := round(deliveryFee)

	return Breakdown{
		Subtotal:    subtotal,
		Discount:    effective,
		Tax:         tax,
		DeliveryFee: fee,
		Total:       round(taxable.Add(tax).Add(fee)),
	}
}

// Quote resolves the discount against the lines' subtotal and calculates in one step.
func Quote(lines []Line, d Discount, taxRate, deliveryFee decimal.Decimal) Breakdown {
	return Calculate(lines, ResolveDiscount(d, Subtotal(lines)), taxRate, deliveryFee)
}
