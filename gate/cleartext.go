package gate

import "fmt"

// Cleartext is a reference Backend that evaluates gates on unencrypted
// bits. It exists for development and testing: circuit semantics can be
// verified exhaustively without paying for bootstrapping, and the
// evaluation server can run end to end where no FHE backend is
// available. It provides no confidentiality.
type Cleartext struct {
	params Params
}

// clearBit is the Cleartext ciphertext representation. The wrapper type
// keeps foreign ciphertexts detectable at the backend boundary.
type clearBit struct {
	v bool
}

// NewCleartext constructs a cleartext backend under the given parameter
// set. The parameters carry no cryptographic meaning here; they are
// accepted so callers configure every backend the same way.
func NewCleartext(params Params) *Cleartext {
	return &Cleartext{params: params}
}

// Params returns the parameter set the backend was constructed with.
func (c *Cleartext) Params() Params {
	return c.params
}

func (c *Cleartext) bit(ct Ciphertext) (bool, error) {
	b, ok := ct.(clearBit)
	if !ok {
		return false, fmt.Errorf("ciphertext of type %T was not produced by the cleartext backend", ct)
	}
	return b.v, nil
}

func (c *Cleartext) Encrypt(bit bool) (Ciphertext, error) {
	return clearBit{v: bit}, nil
}

func (c *Cleartext) Decrypt(ct Ciphertext) (bool, error) {
	return c.bit(ct)
}

func (c *Cleartext) NOT(a Ciphertext) (Ciphertext, error) {
	av, err := c.bit(a)
	if err != nil {
		return nil, err
	}
	return clearBit{v: !av}, nil
}

func (c *Cleartext) AND(a, b Ciphertext) (Ciphertext, error) {
	av, bv, err := c.bits(a, b)
	if err != nil {
		return nil, err
	}
	return clearBit{v: av && bv}, nil
}

func (c *Cleartext) OR(a, b Ciphertext) (Ciphertext, error) {
	av, bv, err := c.bits(a, b)
	if err != nil {
		return nil, err
	}
	return clearBit{v: av || bv}, nil
}

func (c *Cleartext) XOR(a, b Ciphertext) (Ciphertext, error) {
	av, bv, err := c.bits(a, b)
	if err != nil {
		return nil, err
	}
	return clearBit{v: av != bv}, nil
}

func (c *Cleartext) XNOR(a, b Ciphertext) (Ciphertext, error) {
	av, bv, err := c.bits(a, b)
	if err != nil {
		return nil, err
	}
	return clearBit{v: av == bv}, nil
}

func (c *Cleartext) MUX(sel, a, b Ciphertext) (Ciphertext, error) {
	sv, err := c.bit(sel)
	if err != nil {
		return nil, err
	}
	av, bv, err := c.bits(a, b)
	if err != nil {
		return nil, err
	}
	return clearBit{v: (sv && av) || (!sv && bv)}, nil
}

func (c *Cleartext) bits(a, b Ciphertext) (bool, bool, error) {
	av, err := c.bit(a)
	if err != nil {
		return false, false, err
	}
	bv, err := c.bit(b)
	if err != nil {
		return false, false, err
	}
	return av, bv, nil
}

// MarshalCiphertext serializes a cleartext bit as a single byte.
func (c *Cleartext) MarshalCiphertext(ct Ciphertext) ([]byte, error) {
	v, err := c.bit(ct)
	if err != nil {
		return nil, err
	}
	if v {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}

// UnmarshalCiphertext reverses MarshalCiphertext.
func (c *Cleartext) UnmarshalCiphertext(data []byte) (Ciphertext, error) {
	if len(data) != 1 || data[0] > 1 {
		return nil, fmt.Errorf("invalid cleartext ciphertext encoding: %d bytes", len(data))
	}
	return clearBit{v: data[0] == 1}, nil
}
