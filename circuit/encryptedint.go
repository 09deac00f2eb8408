// Package circuit implements the bit-sliced auction circuit: encrypted
// integer comparison and the reduction that folds pairwise comparisons
// into a running maximum with an encrypted ownership mask. Every
// operation is expressed through the gate.Backend capability set, and
// the gate sequence of every operation is independent of the plaintext
// values flowing through it.
package circuit

import (
	"fmt"

	"github.com/Janmajayamall/fhe-auction/gate"
)

// EncryptedInt is an ordered, fixed-length sequence of ciphertext bits
// representing an unsigned integer, most significant bit first. Values
// are immutable once constructed.
type EncryptedInt struct {
	bits []gate.Ciphertext
}

// NewEncryptedInt wraps bits as an encrypted integer of the given
// width. The supplied sequence must contain exactly width ciphertexts.
func NewEncryptedInt(bits []gate.Ciphertext, width int) (EncryptedInt, error) {
	if width <= 0 {
		return EncryptedInt{}, fmt.Errorf("bid width must be positive, got %d", width)
	}
	if len(bits) != width {
		return EncryptedInt{}, fmt.Errorf("got %d ciphertext bits, want %d", len(bits), width)
	}
	owned := make([]gate.Ciphertext, width)
	copy(owned, bits)
	return EncryptedInt{bits: owned}, nil
}

// Width returns the number of bits.
func (v EncryptedInt) Width() int {
	return len(v.bits)
}

// Bit returns the ciphertext at position i, where 0 is the most
// significant bit.
func (v EncryptedInt) Bit(i int) gate.Ciphertext {
	return v.bits[i]
}

// EncryptUint encrypts value as a width-bit integer, MSB first. The
// value must be representable in width bits.
func EncryptUint(backend gate.Backend, value uint64, width int) (EncryptedInt, error) {
	if width <= 0 || width > 64 {
		return EncryptedInt{}, fmt.Errorf("width must be in [1, 64], got %d", width)
	}
	if width < 64 && value >= 1<<uint(width) {
		return EncryptedInt{}, fmt.Errorf("value %d does not fit in %d bits", value, width)
	}
	bits := make([]gate.Ciphertext, width)
	for i := 0; i < width; i++ {
		bit := (value >> uint(width-1-i)) & 1
		ct, err := backend.Encrypt(bit == 1)
		if err != nil {
			return EncryptedInt{}, fmt.Errorf("encrypt bit %d: %w", i, err)
		}
		bits[i] = ct
	}
	return EncryptedInt{bits: bits}, nil
}

// DecryptUint recovers the plaintext integer. Only the party holding
// the decryption capability can use this; the circuit itself never
// calls it.
func DecryptUint(backend gate.Backend, v EncryptedInt) (uint64, error) {
	if v.Width() > 64 {
		return 0, fmt.Errorf("width %d exceeds 64 bits", v.Width())
	}
	var value uint64
	for i := 0; i < v.Width(); i++ {
		bit, err := backend.Decrypt(v.bits[i])
		if err != nil {
			return 0, fmt.Errorf("decrypt bit %d: %w", i, err)
		}
		if bit {
			value |= 1 << uint(v.Width()-1-i)
		}
	}
	return value, nil
}
