package auctionapi

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// pricePrecision is the number of decimal places carried by monetary
// amounts (0.0001 precision). Prices are shifted into fixed-point
// integers before bit-level encryption so comparisons on ciphertext
// bits order them correctly.
const pricePrecision int32 = 4

// EncodePrice converts a price into its fixed-point integer form and
// checks that it fits in bits. Uses decimal arithmetic to avoid
// floating-point drift at the precision boundary.
func EncodePrice(price float64, bits int) (uint64, error) {
	if bits <= 0 || bits > 64 {
		return 0, fmt.Errorf("bid width must be in [1, 64], got %d", bits)
	}
	if price < 0 {
		return 0, fmt.Errorf("price must be non-negative, got %v", price)
	}
	scaled := decimal.NewFromFloat(price).Round(pricePrecision).Shift(pricePrecision)
	raw := scaled.BigInt()
	if raw.Sign() < 0 {
		return 0, fmt.Errorf("price %v rounds below zero", price)
	}
	if raw.BitLen() > bits {
		return 0, fmt.Errorf("price %v needs %d bits, bid width is %d", price, raw.BitLen(), bits)
	}
	return raw.Uint64(), nil
}

// DecodePrice reverses EncodePrice.
func DecodePrice(raw uint64) float64 {
	price, _ := decimal.NewFromUint64(raw).Shift(-pricePrecision).Float64()
	return price
}
