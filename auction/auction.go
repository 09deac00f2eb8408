// Package auction orchestrates a sealed-bid auction evaluated entirely
// on ciphertext bits. Bids are collected as fixed-width encrypted
// integers, the circuit computes the maximum and an encrypted one-hot
// ownership mask without decrypting anything, and the two output
// bundles are handed to the holder of the decryption capability. The
// circuit's gate sequence never depends on bid values, so losing bids
// reveal nothing beyond the fact of a loss.
package auction

import (
	"fmt"

	"github.com/Janmajayamall/fhe-auction/circuit"
	"github.com/Janmajayamall/fhe-auction/gate"
)

// State is the circuit lifecycle position.
type State int

const (
	// Collecting accepts bid submissions.
	Collecting State = iota
	// Ready holds exactly the configured number of bids and awaits
	// evaluation. Reached only by an explicit Seal call so the caller
	// can vet bidder identities first.
	Ready
	// Evaluating runs the reduction. There is no partial or
	// incremental evaluation: this state runs to completion or fails,
	// and a failed circuit must be discarded.
	Evaluating
	// Complete is terminal and holds the result.
	Complete
)

var stateNames = map[State]string{
	Collecting: "collecting",
	Ready:      "ready",
	Evaluating: "evaluating",
	Complete:   "complete",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Config carries the auction parameters. All fields are required
// except Reducer.
type Config struct {
	// Bidders is the exact number of bids the auction accepts.
	Bidders int

	// BidBits is the width of every bid in bits.
	BidBits int

	// Backend evaluates homomorphic gates. It is shared read-only
	// across evaluation workers.
	Backend gate.Backend

	// Reducer overrides the reduction strategy. Defaults to the
	// sequential fold; circuit.NewTreeReducer lowers latency on
	// multi-core hosts with identical results.
	Reducer circuit.Reducer
}

// Result is the pair of ciphertext bundles the circuit produces: the
// winning amount and the ownership mask. The core never decrypts
// either.
type Result struct {
	Winner circuit.EncryptedInt
	Mask   circuit.Mask
}

// Circuit is the auction state machine. It is not safe for concurrent
// use; evaluation-internal parallelism lives in the reducer.
type Circuit struct {
	cfg     Config
	reducer circuit.Reducer
	state   State
	bids    []circuit.Bid
	result  *Result
}

// New validates cfg and returns a circuit in the Collecting state.
func New(cfg Config) (*Circuit, error) {
	if cfg.Bidders <= 0 {
		return nil, configErrorf("bidder count must be positive, got %d", cfg.Bidders)
	}
	if cfg.BidBits <= 0 {
		return nil, configErrorf("bid width must be positive, got %d", cfg.BidBits)
	}
	if cfg.Backend == nil {
		return nil, configErrorf("backend is required")
	}
	reducer := cfg.Reducer
	if reducer == nil {
		reducer = circuit.NewFoldReducer(cfg.Backend)
	}
	return &Circuit{
		cfg:     cfg,
		reducer: reducer,
		state:   Collecting,
		bids:    make([]circuit.Bid, 0, cfg.Bidders),
	}, nil
}

// State returns the current lifecycle position.
func (c *Circuit) State() State {
	return c.state
}

// Submit appends one bid. Submission order fixes bidder indices and
// tie-break priority: the earliest of equal maximal bids wins.
func (c *Circuit) Submit(value circuit.EncryptedInt) error {
	if c.state != Collecting {
		return configErrorf("submit is only valid while collecting, circuit is %s", c.state)
	}
	if value.Width() != c.cfg.BidBits {
		return configErrorf("bid width %d does not match configured width %d", value.Width(), c.cfg.BidBits)
	}
	if len(c.bids) >= c.cfg.Bidders {
		return configErrorf("auction accepts exactly %d bids", c.cfg.Bidders)
	}
	c.bids = append(c.bids, circuit.Bid{Index: len(c.bids), Value: value})
	return nil
}

// Seal transitions from Collecting to Ready once all bids are present.
func (c *Circuit) Seal() error {
	if c.state != Collecting {
		return configErrorf("seal is only valid while collecting, circuit is %s", c.state)
	}
	if len(c.bids) != c.cfg.Bidders {
		return configErrorf("have %d of %d bids", len(c.bids), c.cfg.Bidders)
	}
	c.state = Ready
	return nil
}

// Evaluate runs the reduction once and moves the circuit to Complete.
// All preconditions are checked before the first gate runs. A backend
// failure aborts the whole evaluation with a BackendError and leaves
// the circuit unusable; construct a new circuit with the same bids to
// retry.
func (c *Circuit) Evaluate() (*Result, error) {
	switch c.state {
	case Ready:
	case Complete:
		return nil, configErrorf("circuit already evaluated; construct a new circuit for another auction")
	default:
		return nil, configErrorf("evaluate requires a %s circuit, circuit is %s", Ready, c.state)
	}

	c.state = Evaluating
	winner, mask, err := c.reducer.Reduce(c.bids)
	if err != nil {
		return nil, &BackendError{Err: err}
	}

	c.result = &Result{Winner: winner, Mask: mask}
	c.state = Complete
	c.bids = nil
	return c.snapshot(), nil
}

// Result returns the output bundles of a Complete circuit. Each call
// returns a fresh copy; mutating the returned mask does not touch the
// circuit's stored result.
func (c *Circuit) Result() (*Result, error) {
	if c.state != Complete {
		return nil, configErrorf("no result: circuit is %s", c.state)
	}
	return c.snapshot(), nil
}

func (c *Circuit) snapshot() *Result {
	mask := make(circuit.Mask, len(c.result.Mask))
	copy(mask, c.result.Mask)
	return &Result{Winner: c.result.Winner, Mask: mask}
}
