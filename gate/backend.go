// Package gate defines the homomorphic gate capability consumed by the
// auction circuit. The circuit never inspects ciphertext bits; it only
// passes them back into gate operations, so any boolean FHE scheme that
// can evaluate the operations below can drive the auction.
package gate

// Ciphertext is an opaque encrypted boolean bit. It is owned by the
// Backend that produced it and must only ever be handed back to that
// Backend's operations.
type Ciphertext any

// Backend is the fixed capability set required of a homomorphic
// encryption backend. Every gate must execute the same sequence of
// underlying cryptographic operations regardless of the encrypted
// values supplied; the privacy of losing bids depends on this.
//
// Implementations must be safe for concurrent use: the circuit shares
// one Backend across all evaluation workers.
type Backend interface {
	// Encrypt encrypts a single plaintext bit.
	Encrypt(bit bool) (Ciphertext, error)

	// Decrypt recovers a plaintext bit. It is invoked only by the party
	// holding the decryption capability, never inside the circuit.
	Decrypt(ct Ciphertext) (bool, error)

	NOT(a Ciphertext) (Ciphertext, error)
	AND(a, b Ciphertext) (Ciphertext, error)
	OR(a, b Ciphertext) (Ciphertext, error)
	XOR(a, b Ciphertext) (Ciphertext, error)
	XNOR(a, b Ciphertext) (Ciphertext, error)

	// MUX returns a if sel decrypts to true, else b, evaluated
	// homomorphically without revealing sel.
	MUX(sel, a, b Ciphertext) (Ciphertext, error)
}

// Marshaler is implemented by backends whose ciphertexts can cross a
// process boundary. Transport code serializes each bit individually so
// the wire format stays independent of bid width.
type Marshaler interface {
	MarshalCiphertext(ct Ciphertext) ([]byte, error)
	UnmarshalCiphertext(data []byte) (Ciphertext, error)
}

// SecurityLevel selects the encryption parameter set a backend operates
// under. The parameter set is negotiated externally and fixed for the
// lifetime of a backend instance.
type SecurityLevel int

const (
	// STD128 provides 128-bit security (recommended)
	STD128 SecurityLevel = iota
	// STD192 provides 192-bit security
	STD192
	// STD256 provides 256-bit security
	STD256
)

// Params is the explicit encryption parameter object passed into
// backend construction. It is never global state: two backends with
// different parameter sets can coexist in one process.
type Params struct {
	Security SecurityLevel
}

// DefaultParams returns the recommended parameter set.
func DefaultParams() Params {
	return Params{Security: STD128}
}
