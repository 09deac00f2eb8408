package circuit

import (
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/Janmajayamall/fhe-auction/gate"
)

func decryptBit(t *testing.T, backend gate.Backend, ct gate.Ciphertext) bool {
	t.Helper()
	bit, err := backend.Decrypt(ct)
	assert.NoError(t, err)
	return bit
}

func TestComparator_Greater_Exhaustive4Bit(t *testing.T) {
	backend := gate.NewCleartext(gate.DefaultParams())
	cmp := NewComparator(backend)

	for a := uint64(0); a < 16; a++ {
		for b := uint64(0); b < 16; b++ {
			ea, err := EncryptUint(backend, a, 4)
			assert.NoError(t, err)
			eb, err := EncryptUint(backend, b, 4)
			assert.NoError(t, err)

			gt, err := cmp.Greater(ea, eb)
			assert.NoError(t, err)
			check.Equal(t, a > b, decryptBit(t, backend, gt))
		}
	}
}

func TestComparator_Greater_SingleBit(t *testing.T) {
	backend := gate.NewCleartext(gate.DefaultParams())
	cmp := NewComparator(backend)

	for a := uint64(0); a < 2; a++ {
		for b := uint64(0); b < 2; b++ {
			ea, err := EncryptUint(backend, a, 1)
			assert.NoError(t, err)
			eb, err := EncryptUint(backend, b, 1)
			assert.NoError(t, err)

			gt, err := cmp.Greater(ea, eb)
			assert.NoError(t, err)
			check.Equal(t, a > b, decryptBit(t, backend, gt))
		}
	}
}

func TestComparator_Greater_WidthMismatch(t *testing.T) {
	backend := gate.NewCleartext(gate.DefaultParams())
	cmp := NewComparator(backend)

	ea, err := EncryptUint(backend, 3, 4)
	assert.NoError(t, err)
	eb, err := EncryptUint(backend, 3, 8)
	assert.NoError(t, err)

	_, err = cmp.Greater(ea, eb)
	check.Error(t, err)
}

// The gate trace of a comparison must not depend on the operand
// values: identical tallies per operation kind for every input pair of
// the same width.
func TestComparator_Greater_GateCountInvariance(t *testing.T) {
	const width = 8

	pairs := [][2]uint64{
		{0, 0}, {0, 255}, {255, 0}, {255, 255},
		{1, 2}, {200, 199}, {127, 128}, {85, 170},
	}

	var reference gate.Stats
	for i, pair := range pairs {
		counter := gate.NewCounter(gate.NewCleartext(gate.DefaultParams()))
		ea, err := EncryptUint(counter, pair[0], width)
		assert.NoError(t, err)
		eb, err := EncryptUint(counter, pair[1], width)
		assert.NoError(t, err)
		counter.Reset()

		_, err = NewComparator(counter).Greater(ea, eb)
		assert.NoError(t, err)

		stats := counter.Stats()
		if i == 0 {
			reference = stats
			// Three ANDs, one OR, one XNOR and one NOT per bit
			// position, plus the two seed encryptions.
			check.Equal(t, int64(width), stats[gate.OpNOT])
			check.Equal(t, int64(3*width), stats[gate.OpAND])
			check.Equal(t, int64(width), stats[gate.OpOR])
			check.Equal(t, int64(width), stats[gate.OpXNOR])
			check.Equal(t, int64(2), stats[gate.OpEncrypt])
			continue
		}
		check.Equal(t, reference, stats)
	}
}

func TestEncryptUint_RejectsOutOfRange(t *testing.T) {
	backend := gate.NewCleartext(gate.DefaultParams())

	_, err := EncryptUint(backend, 16, 4)
	check.Error(t, err)

	_, err = EncryptUint(backend, 1, 0)
	check.Error(t, err)

	_, err = EncryptUint(backend, 1, 65)
	check.Error(t, err)
}

func TestEncryptUint_DecryptUint_Roundtrip(t *testing.T) {
	backend := gate.NewCleartext(gate.DefaultParams())

	for _, tt := range []struct {
		value uint64
		width int
	}{
		{0, 1},
		{1, 1},
		{9, 4},
		{170, 8},
		{65535, 16},
		{1<<63 | 12345, 64},
	} {
		ev, err := EncryptUint(backend, tt.value, tt.width)
		assert.NoError(t, err)
		check.Equal(t, tt.width, ev.Width())

		got, err := DecryptUint(backend, ev)
		assert.NoError(t, err)
		check.Equal(t, tt.value, got)
	}
}

func TestNewEncryptedInt_ValidatesWidth(t *testing.T) {
	backend := gate.NewCleartext(gate.DefaultParams())

	one, err := backend.Encrypt(true)
	assert.NoError(t, err)

	_, err = NewEncryptedInt([]gate.Ciphertext{one}, 2)
	check.Error(t, err)

	_, err = NewEncryptedInt(nil, 0)
	check.Error(t, err)

	v, err := NewEncryptedInt([]gate.Ciphertext{one}, 1)
	assert.NoError(t, err)
	check.Equal(t, 1, v.Width())
}
