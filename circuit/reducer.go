package circuit

import (
	"fmt"

	"github.com/Janmajayamall/fhe-auction/gate"
)

// Bid pairs an encrypted amount with the index assigned to its bidder
// at submission time. Submission order is priority order: on an exact
// tie the lower index keeps the win.
type Bid struct {
	Index int
	Value EncryptedInt
}

// Mask is an encrypted ownership vector with one entry per bidder.
// After a reduction exactly one entry decrypts to true: the winning
// bidder's. The invariant is only verifiable after decryption.
type Mask []gate.Ciphertext

// Reducer folds pairwise comparisons across all bids, producing the
// encrypted maximum and the ownership mask. Implementations must agree
// on tie-break semantics: the earliest submitted of equal maximal bids
// wins.
type Reducer interface {
	Reduce(bids []Bid) (EncryptedInt, Mask, error)
}

// FoldReducer evaluates the reduction as a strict left-to-right fold.
// Iteration i depends on the running best from iteration i-1, so the
// whole pass is sequential; it is the canonical reference semantics
// the tree reducer must match.
type FoldReducer struct {
	backend gate.Backend
	cmp     *Comparator
}

// NewFoldReducer returns a sequential reducer evaluating on backend.
func NewFoldReducer(backend gate.Backend) *FoldReducer {
	return &FoldReducer{backend: backend, cmp: NewComparator(backend)}
}

func checkBids(bids []Bid) (width int, err error) {
	if len(bids) == 0 {
		return 0, fmt.Errorf("no bids to reduce")
	}
	width = bids[0].Value.Width()
	for _, bid := range bids[1:] {
		if bid.Value.Width() != width {
			return 0, fmt.Errorf("bid %d has width %d, want %d", bid.Index, bid.Value.Width(), width)
		}
	}
	return width, nil
}

// Reduce folds left to right. Each round compares the candidate
// against the running best with strict greater-than, so on a tie the
// mask bit of the earlier bidder is never cleared.
func (r *FoldReducer) Reduce(bids []Bid) (EncryptedInt, Mask, error) {
	width, err := checkBids(bids)
	if err != nil {
		return EncryptedInt{}, nil, err
	}

	best := make([]gate.Ciphertext, width)
	for p := 0; p < width; p++ {
		best[p] = bids[0].Value.Bit(p)
	}

	mask := make(Mask, len(bids))
	for j := range mask {
		mask[j], err = r.backend.Encrypt(j == 0)
		if err != nil {
			return EncryptedInt{}, nil, fmt.Errorf("encrypt mask seed %d: %w", j, err)
		}
	}

	for i := 1; i < len(bids); i++ {
		gt, err := r.cmp.Greater(bids[i].Value, EncryptedInt{bits: best})
		if err != nil {
			return EncryptedInt{}, nil, fmt.Errorf("compare bid %d: %w", i, err)
		}
		for p := 0; p < width; p++ {
			best[p], err = r.backend.MUX(gt, bids[i].Value.Bit(p), best[p])
			if err != nil {
				return EncryptedInt{}, nil, fmt.Errorf("select bit %d of bid %d: %w", p, i, err)
			}
		}
		notGt, err := r.backend.NOT(gt)
		if err != nil {
			return EncryptedInt{}, nil, fmt.Errorf("invert comparison of bid %d: %w", i, err)
		}
		for j := 0; j < i; j++ {
			mask[j], err = r.backend.AND(mask[j], notGt)
			if err != nil {
				return EncryptedInt{}, nil, fmt.Errorf("clear mask %d at bid %d: %w", j, i, err)
			}
		}
		mask[i] = gt
	}

	return EncryptedInt{bits: best}, mask, nil
}
