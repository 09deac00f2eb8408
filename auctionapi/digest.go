package auctionapi

import (
	"crypto/sha256"
	"fmt"
)

// ComputeBitsDigest digests a serialized ciphertext bit sequence.
// Each bit is length-prefixed so distinct sequences never collide by
// concatenation.
func ComputeBitsDigest(bits [][]byte) string {
	h := sha256.New()
	for _, bit := range bits {
		fmt.Fprintf(h, "%d|", len(bit))
		h.Write(bit)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// ComputeBidDigest digests one sealed bid for inclusion in a receipt.
//
// Formula: SHA256(bid_id + "|" + bidder + "|" + bits_digest)
func ComputeBidDigest(bid EncryptedBid) string {
	data := fmt.Sprintf("%s|%s|%s", bid.ID, bid.Bidder, ComputeBitsDigest(bid.Bits))
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
