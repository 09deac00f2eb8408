package gate

import (
	"fmt"
	"sync/atomic"
)

// Op identifies a backend operation kind for accounting purposes.
type Op int

const (
	OpEncrypt Op = iota
	OpDecrypt
	OpNOT
	OpAND
	OpOR
	OpXOR
	OpXNOR
	OpMUX

	numOps
)

var opNames = [numOps]string{
	"encrypt", "decrypt", "not", "and", "or", "xor", "xnor", "mux",
}

func (o Op) String() string {
	if o < 0 || o >= numOps {
		return fmt.Sprintf("op(%d)", int(o))
	}
	return opNames[o]
}

// Stats records how many times each operation ran.
type Stats [numOps]int64

// Gates returns the total number of gate evaluations, excluding
// encrypt and decrypt which are not gates.
func (s Stats) Gates() int64 {
	var total int64
	for op := OpNOT; op < numOps; op++ {
		total += s[op]
	}
	return total
}

func (s Stats) String() string {
	out := ""
	for op := Op(0); op < numOps; op++ {
		if s[op] == 0 {
			continue
		}
		if out != "" {
			out += " "
		}
		out += fmt.Sprintf("%s=%d", op, s[op])
	}
	if out == "" {
		return "no operations"
	}
	return out
}

// Counter wraps a Backend and tallies every operation it performs. The
// tallies are the ground truth for the obliviousness property: a
// data-independent circuit produces identical Stats for any inputs of
// the same shape. Safe for concurrent use.
type Counter struct {
	backend Backend
	counts  [numOps]atomic.Int64
}

// NewCounter wraps backend with operation accounting.
func NewCounter(backend Backend) *Counter {
	return &Counter{backend: backend}
}

// Stats returns a snapshot of the operation tallies.
func (c *Counter) Stats() Stats {
	var s Stats
	for op := Op(0); op < numOps; op++ {
		s[op] = c.counts[op].Load()
	}
	return s
}

// Reset clears the operation tallies.
func (c *Counter) Reset() {
	for op := Op(0); op < numOps; op++ {
		c.counts[op].Store(0)
	}
}

func (c *Counter) Encrypt(bit bool) (Ciphertext, error) {
	c.counts[OpEncrypt].Add(1)
	return c.backend.Encrypt(bit)
}

func (c *Counter) Decrypt(ct Ciphertext) (bool, error) {
	c.counts[OpDecrypt].Add(1)
	return c.backend.Decrypt(ct)
}

func (c *Counter) NOT(a Ciphertext) (Ciphertext, error) {
	c.counts[OpNOT].Add(1)
	return c.backend.NOT(a)
}

func (c *Counter) AND(a, b Ciphertext) (Ciphertext, error) {
	c.counts[OpAND].Add(1)
	return c.backend.AND(a, b)
}

func (c *Counter) OR(a, b Ciphertext) (Ciphertext, error) {
	c.counts[OpOR].Add(1)
	return c.backend.OR(a, b)
}

func (c *Counter) XOR(a, b Ciphertext) (Ciphertext, error) {
	c.counts[OpXOR].Add(1)
	return c.backend.XOR(a, b)
}

func (c *Counter) XNOR(a, b Ciphertext) (Ciphertext, error) {
	c.counts[OpXNOR].Add(1)
	return c.backend.XNOR(a, b)
}

func (c *Counter) MUX(sel, a, b Ciphertext) (Ciphertext, error) {
	c.counts[OpMUX].Add(1)
	return c.backend.MUX(sel, a, b)
}
