package circuit

import (
	"fmt"

	"github.com/Janmajayamall/fhe-auction/gate"
)

// Comparator evaluates order relations between encrypted integers of
// equal width using only homomorphic gates.
type Comparator struct {
	backend gate.Backend
}

// NewComparator returns a comparator evaluating on backend.
func NewComparator(backend gate.Backend) *Comparator {
	return &Comparator{backend: backend}
}

// Greater computes the encryption of a > b, scanning from the most
// significant bit down. eq tracks "all bits above this position were
// equal"; a position wins exactly when it is the first bit where a has
// 1 and b has 0 under equality so far. The OR into the result runs at
// every position whether or not an earlier position already won, so
// the gate sequence is identical for every input pair of the same
// width.
//
// The eq update must follow the win computation for the same position,
// which makes the chain strictly sequential: the critical path of one
// comparison is the bid width.
func (c *Comparator) Greater(a, b EncryptedInt) (gate.Ciphertext, error) {
	if a.Width() != b.Width() {
		return nil, fmt.Errorf("operand widths differ: %d vs %d", a.Width(), b.Width())
	}

	eq, err := c.backend.Encrypt(true)
	if err != nil {
		return nil, fmt.Errorf("encrypt equality seed: %w", err)
	}
	result, err := c.backend.Encrypt(false)
	if err != nil {
		return nil, fmt.Errorf("encrypt result seed: %w", err)
	}

	for i := 0; i < a.Width(); i++ {
		notB, err := c.backend.NOT(b.Bit(i))
		if err != nil {
			return nil, fmt.Errorf("bit %d: %w", i, err)
		}
		gt, err := c.backend.AND(a.Bit(i), notB)
		if err != nil {
			return nil, fmt.Errorf("bit %d: %w", i, err)
		}
		win, err := c.backend.AND(gt, eq)
		if err != nil {
			return nil, fmt.Errorf("bit %d: %w", i, err)
		}
		result, err = c.backend.OR(result, win)
		if err != nil {
			return nil, fmt.Errorf("bit %d: %w", i, err)
		}
		same, err := c.backend.XNOR(a.Bit(i), b.Bit(i))
		if err != nil {
			return nil, fmt.Errorf("bit %d: %w", i, err)
		}
		eq, err = c.backend.AND(eq, same)
		if err != nil {
			return nil, fmt.Errorf("bit %d: %w", i, err)
		}
	}
	return result, nil
}
