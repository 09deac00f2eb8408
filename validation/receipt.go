// Package validation implements the collaborator-side checks on
// auction server output: COSE receipt verification against the
// server's published key, digest comparison between the receipt and
// the delivered ciphertext bundles, and consistency checks on the
// decrypted outcome.
package validation

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/veraison/go-cose"

	"github.com/Janmajayamall/fhe-auction/auctionapi"
)

// ParsePublicKeyPEM parses the ECDSA verification key from a
// key_response.
func ParsePublicKeyPEM(pemData string) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil || block.Type != "PUBLIC KEY" {
		return nil, fmt.Errorf("no PUBLIC KEY block in PEM data")
	}

	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	ecdsaKey, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is %T, not ECDSA", key)
	}
	return ecdsaKey, nil
}

// VerifyReceipt checks the COSE_Sign1 signature on a receipt and
// returns the decoded payload.
func VerifyReceipt(coseBytes []byte, publicKey *ecdsa.PublicKey) (*auctionapi.Receipt, error) {
	var msg cose.Sign1Message
	if err := msg.UnmarshalCBOR(coseBytes); err != nil {
		return nil, fmt.Errorf("parse COSE_Sign1 envelope: %w", err)
	}

	verifier, err := cose.NewVerifier(cose.AlgorithmES256, publicKey)
	if err != nil {
		return nil, fmt.Errorf("create verifier: %w", err)
	}

	if err := msg.Verify(nil, verifier); err != nil {
		return nil, fmt.Errorf("COSE signature verification failed: %w", err)
	}

	var receipt auctionapi.Receipt
	if err := cbor.Unmarshal(msg.Payload, &receipt); err != nil {
		return nil, fmt.Errorf("decode receipt payload: %w", err)
	}
	return &receipt, nil
}

// VerifyResponse verifies the receipt inside an auction response and
// checks that the receipt's digests match the ciphertext bundles the
// response actually carries.
func VerifyResponse(resp auctionapi.AuctionResponse, publicKey *ecdsa.PublicKey) (*auctionapi.Receipt, error) {
	if !resp.Success {
		return nil, fmt.Errorf("response reports failure: %s", resp.Message)
	}

	receipt, err := VerifyReceipt(resp.Receipt, publicKey)
	if err != nil {
		return nil, err
	}

	if receipt.AuctionID != resp.AuctionID {
		return nil, fmt.Errorf("receipt is for auction %s, response is for %s", receipt.AuctionID, resp.AuctionID)
	}
	if got := auctionapi.ComputeBitsDigest(resp.WinnerBits); got != receipt.WinnerDigest {
		return nil, fmt.Errorf("winning amount digest mismatch: receipt %s, bundle %s", receipt.WinnerDigest, got)
	}
	if got := auctionapi.ComputeBitsDigest(resp.OwnershipMask); got != receipt.MaskDigest {
		return nil, fmt.Errorf("ownership mask digest mismatch: receipt %s, bundle %s", receipt.MaskDigest, got)
	}
	return receipt, nil
}
