package validation

import (
	"fmt"

	"github.com/Janmajayamall/fhe-auction/auction"
	"github.com/Janmajayamall/fhe-auction/circuit"
	"github.com/Janmajayamall/fhe-auction/gate"
)

// Outcome is the decrypted auction result.
type Outcome struct {
	// WinningAmount is the highest bid.
	WinningAmount uint64

	// WinnerIndex is the submission index of the winning bidder, the
	// lowest index among bidders achieving the maximum.
	WinnerIndex int
}

// DecryptOutcome decrypts a result using the decryption capability and
// enforces the ownership mask invariant: exactly one entry true. Only
// the key-holding party can run this; the circuit and the evaluation
// server never do.
func DecryptOutcome(backend gate.Backend, result *auction.Result) (*Outcome, error) {
	amount, err := circuit.DecryptUint(backend, result.Winner)
	if err != nil {
		return nil, fmt.Errorf("decrypt winning amount: %w", err)
	}

	winner := -1
	for i, ct := range result.Mask {
		owned, err := backend.Decrypt(ct)
		if err != nil {
			return nil, fmt.Errorf("decrypt mask entry %d: %w", i, err)
		}
		if !owned {
			continue
		}
		if winner >= 0 {
			return nil, fmt.Errorf("ownership mask is not one-hot: entries %d and %d are both set", winner, i)
		}
		winner = i
	}
	if winner < 0 {
		return nil, fmt.Errorf("ownership mask is empty: no winning bidder")
	}

	return &Outcome{WinningAmount: amount, WinnerIndex: winner}, nil
}

// ValidateOutcome cross-checks a decrypted outcome against the
// plaintext bids known to the validating party: the winning amount
// must be the maximum, and the winner must be the earliest bidder
// achieving it.
func ValidateOutcome(outcome *Outcome, bids []uint64) error {
	if len(bids) == 0 {
		return fmt.Errorf("no bids to validate against")
	}
	if outcome.WinnerIndex >= len(bids) {
		return fmt.Errorf("winner index %d out of range for %d bids", outcome.WinnerIndex, len(bids))
	}

	max := bids[0]
	first := 0
	for i, bid := range bids[1:] {
		if bid > max {
			max = bid
			first = i + 1
		}
	}

	if outcome.WinningAmount != max {
		return fmt.Errorf("winning amount %d does not match maximum bid %d", outcome.WinningAmount, max)
	}
	if outcome.WinnerIndex != first {
		return fmt.Errorf("winner index %d is not the earliest maximal bidder %d", outcome.WinnerIndex, first)
	}
	return nil
}
