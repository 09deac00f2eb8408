package auctionapi

import (
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestEncodePrice_FixedPoint(t *testing.T) {
	tests := []struct {
		price float64
		bits  int
		want  uint64
	}{
		{0, 16, 0},
		{2.50, 16, 25000},
		{0.0001, 16, 1},
		{1.23456, 32, 12346}, // rounds to 4 decimal places
		{6.5535, 16, 65535},
	}

	for _, tt := range tests {
		got, err := EncodePrice(tt.price, tt.bits)
		assert.NoError(t, err)
		check.Equal(t, tt.want, got)
	}
}

func TestEncodePrice_Rejects(t *testing.T) {
	// Negative price.
	_, err := EncodePrice(-1.0, 16)
	check.Error(t, err)

	// Does not fit in the bid width.
	_, err = EncodePrice(6.5536, 16)
	check.Error(t, err)

	// Invalid widths.
	_, err = EncodePrice(1.0, 0)
	check.Error(t, err)
	_, err = EncodePrice(1.0, 65)
	check.Error(t, err)
}

func TestDecodePrice_RoundtripsEncode(t *testing.T) {
	for _, price := range []float64{0, 0.0001, 2.50, 199.9999, 6.5535} {
		raw, err := EncodePrice(price, 32)
		assert.NoError(t, err)
		check.Equal(t, price, DecodePrice(raw))
	}
}
