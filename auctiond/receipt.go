package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/veraison/go-cose"

	"github.com/Janmajayamall/fhe-auction/auctionapi"
)

// ReceiptSigner signs evaluation receipts with a fresh ECDSA P-256
// key. The public key is handed out via key_request so collaborators
// can verify that a result bundle came out of this server unmodified.
type ReceiptSigner struct {
	privateKey *ecdsa.PrivateKey // Keep private - sensitive!
	signer     cose.Signer
}

// NewReceiptSigner generates a key pair and the COSE signer around it.
func NewReceiptSigner() (*ReceiptSigner, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key pair: %w", err)
	}

	signer, err := cose.NewSigner(cose.AlgorithmES256, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create COSE signer: %w", err)
	}

	return &ReceiptSigner{
		privateKey: privateKey,
		signer:     signer,
	}, nil
}

// PublicKeyPEM returns the verification key in PEM format.
func (rs *ReceiptSigner) PublicKeyPEM() (string, error) {
	derBytes, err := x509.MarshalPKIXPublicKey(&rs.privateKey.PublicKey)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}

	pemBlock := &pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: derBytes,
	}

	return string(pem.EncodeToMemory(pemBlock)), nil
}

// Sign wraps the receipt in a COSE_Sign1 envelope.
func (rs *ReceiptSigner) Sign(receipt auctionapi.Receipt) ([]byte, error) {
	payload, err := cbor.Marshal(receipt)
	if err != nil {
		return nil, fmt.Errorf("marshal receipt payload: %w", err)
	}

	headers := cose.Headers{
		Protected: cose.ProtectedHeader{
			cose.HeaderLabelAlgorithm: cose.AlgorithmES256,
		},
	}

	signed, err := cose.Sign1(rand.Reader, rs.signer, headers, payload, nil)
	if err != nil {
		return nil, fmt.Errorf("COSE sign receipt: %w", err)
	}
	return signed, nil
}
