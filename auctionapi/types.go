// Package auctionapi defines the wire types exchanged between bidders,
// the evaluation server, and the party holding the decryption
// capability. Ciphertext bits travel as opaque byte strings produced by
// the backend's codec; messages are CBOR.
package auctionapi

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Janmajayamall/fhe-auction/circuit"
	"github.com/Janmajayamall/fhe-auction/gate"
)

// Message types.
const (
	TypePing            = "ping"
	TypePong            = "pong"
	TypeKeyRequest      = "key_request"
	TypeKeyResponse     = "key_response"
	TypeAuctionRequest  = "auction_request"
	TypeAuctionResponse = "auction_response"
	TypeError           = "error"
)

// EncryptedBid is one bidder's sealed bid: the bid amount as serialized
// ciphertext bits, MSB first.
type EncryptedBid struct {
	ID     string   `cbor:"id"`
	Bidder string   `cbor:"bidder"`
	Bits   [][]byte `cbor:"bits"`
}

// AuctionRequest asks the server to evaluate one auction. Bid order in
// the slice is submission order and therefore tie-break priority.
type AuctionRequest struct {
	Type      string         `cbor:"type"`
	AuctionID string         `cbor:"auction_id"`
	BidBits   int            `cbor:"bid_bits"`
	Bids      []EncryptedBid `cbor:"bids"`
}

// AuctionResponse carries the two ciphertext bundles back: the winning
// amount and the one-hot ownership mask, both still encrypted. The
// receipt is a COSE Sign1 envelope over a Receipt payload.
type AuctionResponse struct {
	Type           string   `cbor:"type"`
	Success        bool     `cbor:"success"`
	Message        string   `cbor:"message,omitempty"`
	AuctionID      string   `cbor:"auction_id,omitempty"`
	WinnerBits     [][]byte `cbor:"winner_bits,omitempty"`
	OwnershipMask  [][]byte `cbor:"ownership_mask,omitempty"`
	GateCount      int64    `cbor:"gate_count,omitempty"`
	Receipt        []byte   `cbor:"receipt,omitempty"`
	ProcessingTime int64    `cbor:"processing_time_ms"`
}

// KeyResponse hands out the server's receipt verification key.
type KeyResponse struct {
	Type         string `cbor:"type"`
	PublicKeyPEM string `cbor:"public_key"`
}

// Receipt is the signed evaluation statement: which bids went in,
// which ciphertext bundles came out, and how much work the circuit
// performed. Digests are hex SHA-256 (see digest.go).
type Receipt struct {
	AuctionID    string   `cbor:"auction_id"`
	BidDigests   []string `cbor:"bid_digests"`
	WinnerDigest string   `cbor:"winner_digest"`
	MaskDigest   string   `cbor:"mask_digest"`
	GateCount    int64    `cbor:"gate_count"`
	Timestamp    int64    `cbor:"timestamp"`
}

// NewAuctionID returns a fresh auction identifier.
func NewAuctionID() string {
	return uuid.NewString()
}

// NewBidID returns a fresh bid identifier.
func NewBidID() string {
	return uuid.NewString()
}

// MarshalBits serializes an encrypted integer through the backend
// codec, MSB first.
func MarshalBits(codec gate.Marshaler, v circuit.EncryptedInt) ([][]byte, error) {
	bits := make([][]byte, v.Width())
	for i := 0; i < v.Width(); i++ {
		data, err := codec.MarshalCiphertext(v.Bit(i))
		if err != nil {
			return nil, fmt.Errorf("marshal bit %d: %w", i, err)
		}
		bits[i] = data
	}
	return bits, nil
}

// UnmarshalBits reverses MarshalBits into an encrypted integer of the
// given width.
func UnmarshalBits(codec gate.Marshaler, bits [][]byte, width int) (circuit.EncryptedInt, error) {
	cts := make([]gate.Ciphertext, len(bits))
	for i, data := range bits {
		ct, err := codec.UnmarshalCiphertext(data)
		if err != nil {
			return circuit.EncryptedInt{}, fmt.Errorf("unmarshal bit %d: %w", i, err)
		}
		cts[i] = ct
	}
	return circuit.NewEncryptedInt(cts, width)
}

// MarshalMask serializes an ownership mask through the backend codec.
func MarshalMask(codec gate.Marshaler, mask circuit.Mask) ([][]byte, error) {
	out := make([][]byte, len(mask))
	for i, ct := range mask {
		data, err := codec.MarshalCiphertext(ct)
		if err != nil {
			return nil, fmt.Errorf("marshal mask entry %d: %w", i, err)
		}
		out[i] = data
	}
	return out, nil
}

// UnmarshalMask reverses MarshalMask.
func UnmarshalMask(codec gate.Marshaler, entries [][]byte) (circuit.Mask, error) {
	mask := make(circuit.Mask, len(entries))
	for i, data := range entries {
		ct, err := codec.UnmarshalCiphertext(data)
		if err != nil {
			return nil, fmt.Errorf("unmarshal mask entry %d: %w", i, err)
		}
		mask[i] = ct
	}
	return mask, nil
}
