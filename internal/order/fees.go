package order

import "github.com/shopspring/decimal"

// serviceFeeRate is the platform's cut of the sale price.
var serviceFeeRate = decimal.NewFromFloat(0.08)

// Split is the money breakdown of one sale.
type Split struct {
	ServiceFee     decimal.Decimal
	ArtistEarnings decimal.Decimal
}

// ComputeSplit derives the platform fee and the artist's net proceeds:
// fee = round(price * 0.08, 2), earnings = round(price - fee + shipping, 2).
// Shipping is reimbursed to the artist in full.
func ComputeSplit(price, shipping decimal.Decimal) Split {
	fee := price.Mul(serviceFeeRate).Round(2)
	return Split{
		ServiceFee:     fee,
		ArtistEarnings: price.Sub(fee).Add(shipping).Round(2),
	}
}

// TotalMinorUnits is the chargeable amount in minor currency units
// (pence): round((price + shipping) * 100).
func TotalMinorUnits(price, shipping decimal.Decimal) int64 {
	return price.Add(shipping).Shift(2).Round(0).IntPart()
}
