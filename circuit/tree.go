package circuit

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Janmajayamall/fhe-auction/gate"
)

// TreeReducer evaluates the reduction as a balanced binary tree.
// Sibling combines within one tree level have no data dependency on
// each other, so they run on a worker pool sized to the available
// hardware parallelism; each combine writes its output slot exactly
// once, so the level boundary is the only synchronization needed.
// Circuit depth drops from linear in the bidder count to logarithmic
// while the total gate count stays the same order.
//
// The combine operator keeps the left (earlier submitted) operand on
// ties, so the result is bit-for-bit the fold semantics.
type TreeReducer struct {
	backend gate.Backend
	cmp     *Comparator
	workers int
}

// NewTreeReducer returns a tree reducer with one worker per available
// CPU.
func NewTreeReducer(backend gate.Backend) *TreeReducer {
	return &TreeReducer{
		backend: backend,
		cmp:     NewComparator(backend),
		workers: runtime.GOMAXPROCS(0),
	}
}

// NewTreeReducerWorkers returns a tree reducer with an explicit worker
// bound.
func NewTreeReducerWorkers(backend gate.Backend, workers int) (*TreeReducer, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("worker count must be positive, got %d", workers)
	}
	return &TreeReducer{
		backend: backend,
		cmp:     NewComparator(backend),
		workers: workers,
	}, nil
}

// reduceNode carries the running maximum of a contiguous bidder range
// together with the ownership mask restricted to that range.
type reduceNode struct {
	value []gate.Ciphertext
	mask  []gate.Ciphertext
}

// Reduce evaluates the tree level by level. Odd tail nodes pass
// through to the next level unchanged; because leaves are laid out in
// submission order and combine always receives the earlier range on
// the left, tie-break order is preserved at every level.
func (r *TreeReducer) Reduce(bids []Bid) (EncryptedInt, Mask, error) {
	width, err := checkBids(bids)
	if err != nil {
		return EncryptedInt{}, nil, err
	}

	nodes := make([]reduceNode, len(bids))
	for i, bid := range bids {
		value := make([]gate.Ciphertext, width)
		for p := 0; p < width; p++ {
			value[p] = bid.Value.Bit(p)
		}
		one, err := r.backend.Encrypt(true)
		if err != nil {
			return EncryptedInt{}, nil, fmt.Errorf("encrypt leaf mask %d: %w", i, err)
		}
		nodes[i] = reduceNode{value: value, mask: []gate.Ciphertext{one}}
	}

	for len(nodes) > 1 {
		next := make([]reduceNode, (len(nodes)+1)/2)
		g := new(errgroup.Group)
		g.SetLimit(r.workers)
		for i := 0; i+1 < len(nodes); i += 2 {
			left, right, out := nodes[i], nodes[i+1], i/2
			g.Go(func() error {
				combined, err := r.combine(left, right)
				if err != nil {
					return err
				}
				next[out] = combined
				return nil
			})
		}
		if len(nodes)%2 == 1 {
			next[len(next)-1] = nodes[len(nodes)-1]
		}
		if err := g.Wait(); err != nil {
			return EncryptedInt{}, nil, err
		}
		nodes = next
	}

	root := nodes[0]
	return EncryptedInt{bits: root.value}, Mask(root.mask), nil
}

// combine merges two adjacent ranges. The right range wins only when
// its maximum strictly exceeds the left's, mirroring the fold's
// strict greater-than against the running best.
func (r *TreeReducer) combine(left, right reduceNode) (reduceNode, error) {
	gt, err := r.cmp.Greater(EncryptedInt{bits: right.value}, EncryptedInt{bits: left.value})
	if err != nil {
		return reduceNode{}, fmt.Errorf("compare subtrees: %w", err)
	}

	value := make([]gate.Ciphertext, len(left.value))
	for p := range value {
		value[p], err = r.backend.MUX(gt, right.value[p], left.value[p])
		if err != nil {
			return reduceNode{}, fmt.Errorf("select bit %d: %w", p, err)
		}
	}

	notGt, err := r.backend.NOT(gt)
	if err != nil {
		return reduceNode{}, fmt.Errorf("invert comparison: %w", err)
	}

	mask := make([]gate.Ciphertext, 0, len(left.mask)+len(right.mask))
	for j, m := range left.mask {
		kept, err := r.backend.AND(m, notGt)
		if err != nil {
			return reduceNode{}, fmt.Errorf("mask left %d: %w", j, err)
		}
		mask = append(mask, kept)
	}
	for j, m := range right.mask {
		kept, err := r.backend.AND(m, gt)
		if err != nil {
			return reduceNode{}, fmt.Errorf("mask right %d: %w", j, err)
		}
		mask = append(mask, kept)
	}

	return reduceNode{value: value, mask: mask}, nil
}
