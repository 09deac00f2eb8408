// Command auctiond evaluates sealed-bid auctions on ciphertext bits.
// It accepts CBOR-framed requests over vsock (falling back to TCP for
// local development), runs the auction circuit against its configured
// gate backend, and returns the still-encrypted winner bundle together
// with a signed evaluation receipt. The server never holds a
// decryption capability.
package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/mdlayher/vsock"

	"github.com/Janmajayamall/fhe-auction/auction"
	"github.com/Janmajayamall/fhe-auction/auctionapi"
	"github.com/Janmajayamall/fhe-auction/circuit"
	"github.com/Janmajayamall/fhe-auction/gate"
)

// Server evaluates auction requests against a fixed gate backend.
type Server struct {
	port    uint32
	backend gate.Backend
	codec   gate.Marshaler
	signer  *ReceiptSigner
}

// NewServer builds a server on the cleartext development backend. A
// production deployment substitutes an FHE backend implementing both
// gate.Backend and gate.Marshaler under an externally negotiated
// parameter set.
func NewServer(port uint32) *Server {
	backend := gate.NewCleartext(gate.DefaultParams())
	return &Server{
		port:    port,
		backend: backend,
		codec:   backend,
	}
}

func (s *Server) Start() error {
	signer, err := NewReceiptSigner()
	if err != nil {
		return fmt.Errorf("failed to initialize receipt signer: %w", err)
	}
	s.signer = signer
	log.Printf("ReceiptSigner initialized")

	listener, err := s.listen()
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Printf("ERROR: Failed to close listener: %v", err)
		}
	}()

	log.Printf("INFO: auction server listening on port %d", s.port)

	maxWorkers, err := getRequiredEnvInt("AUCTIOND_MAX_WORKERS")
	if err != nil {
		return fmt.Errorf("failed to get max workers config: %w", err)
	}
	semaphore := make(chan struct{}, maxWorkers)

	log.Printf("INFO: Worker pool initialized with %d max concurrent workers", maxWorkers)

	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Printf("ERROR: Failed to accept connection: %v", err)
			continue
		}

		// Acquire worker slot - immediate rejection if pool full
		select {
		case semaphore <- struct{}{}:
			go func(c net.Conn) {
				defer func() { <-semaphore }() // Release worker slot
				s.handleConnection(c)
			}(conn)
		default:
			log.Printf("INFO: No workers available, rejecting connection (pool full)")
			if err := conn.Close(); err != nil {
				log.Printf("ERROR: Failed to close rejected connection: %v", err)
			}
		}
	}
}

// listen binds the vsock port, falling back to TCP on hosts without a
// vsock device so the server can run outside production.
func (s *Server) listen() (net.Listener, error) {
	listener, err := vsock.Listen(s.port, nil)
	if err != nil {
		log.Printf("WARNING: vsock unavailable (%v), falling back to TCP", err)
		return net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	}
	return listener, nil
}

func (s *Server) handleConnection(conn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: Panic recovered in handleConnection: %v", r)
		}
		if err := conn.Close(); err != nil {
			log.Printf("ERROR: Failed to close connection: %v", err)
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, conn); err != nil {
		log.Printf("ERROR: Failed to read request: %v", err)
		return
	}

	var baseReq struct {
		Type string `cbor:"type"`
	}
	if err := cbor.Unmarshal(buf.Bytes(), &baseReq); err != nil {
		log.Printf("ERROR: Failed to decode base request: %v", err)
		return
	}

	log.Printf("INFO: Received request type: %s", baseReq.Type)

	var response any

	switch baseReq.Type {
	case auctionapi.TypePing:
		response = map[string]any{
			"type":      auctionapi.TypePong,
			"message":   "auction server is healthy",
			"timestamp": time.Now().Unix(),
		}
		log.Printf("INFO: Responding to ping with pong")

	case auctionapi.TypeKeyRequest:
		publicKeyPEM, err := s.signer.PublicKeyPEM()
		if err != nil {
			response = map[string]any{
				"type":    auctionapi.TypeError,
				"message": fmt.Sprintf("Key request failed: %v", err),
			}
			log.Printf("ERROR: Key request failed: %v", err)
		} else {
			response = auctionapi.KeyResponse{
				Type:         auctionapi.TypeKeyResponse,
				PublicKeyPEM: publicKeyPEM,
			}
			log.Printf("INFO: Key request processed successfully")
		}

	case auctionapi.TypeAuctionRequest:
		var auctionReq auctionapi.AuctionRequest
		if err := cbor.Unmarshal(buf.Bytes(), &auctionReq); err != nil {
			log.Printf("ERROR: Failed to decode auction request: %v", err)
			response = map[string]any{
				"type":    auctionapi.TypeError,
				"message": fmt.Sprintf("Failed to decode auction request: %v", err),
			}
		} else {
			response = s.processAuction(auctionReq)
		}

	default:
		response = map[string]any{
			"type":    auctionapi.TypeError,
			"message": fmt.Sprintf("Unknown request type: %s", baseReq.Type),
		}
	}

	encoder := cbor.NewEncoder(conn)
	if err := encoder.Encode(response); err != nil {
		log.Printf("ERROR: Failed to encode response: %v", err)
	} else {
		log.Printf("INFO: Successfully sent response for %s", baseReq.Type)
	}
}

// processAuction decodes the sealed bids, evaluates the circuit, and
// packages the still-encrypted result with a signed receipt.
func (s *Server) processAuction(req auctionapi.AuctionRequest) auctionapi.AuctionResponse {
	startTime := time.Now()
	log.Printf("INFO: Processing auction %s with %d bids of %d bits", req.AuctionID, len(req.Bids), req.BidBits)

	fail := func(format string, args ...any) auctionapi.AuctionResponse {
		msg := fmt.Sprintf(format, args...)
		log.Printf("ERROR: Auction %s failed: %s", req.AuctionID, msg)
		return auctionapi.AuctionResponse{
			Type:           auctionapi.TypeAuctionResponse,
			Success:        false,
			Message:        msg,
			AuctionID:      req.AuctionID,
			ProcessingTime: time.Since(startTime).Milliseconds(),
		}
	}

	if len(req.Bids) == 0 {
		return fail("auction has no bids")
	}

	counter := gate.NewCounter(s.backend)
	circ, err := auction.New(auction.Config{
		Bidders: len(req.Bids),
		BidBits: req.BidBits,
		Backend: counter,
		Reducer: circuit.NewTreeReducer(counter),
	})
	if err != nil {
		return fail("invalid configuration: %v", err)
	}

	bidDigests := make([]string, 0, len(req.Bids))
	for i, bid := range req.Bids {
		value, err := auctionapi.UnmarshalBits(s.codec, bid.Bits, req.BidBits)
		if err != nil {
			return fail("decode bid %d (%s): %v", i, bid.ID, err)
		}
		if err := circ.Submit(value); err != nil {
			return fail("submit bid %d (%s): %v", i, bid.ID, err)
		}
		bidDigests = append(bidDigests, auctionapi.ComputeBidDigest(bid))
	}

	if err := circ.Seal(); err != nil {
		return fail("seal auction: %v", err)
	}

	result, err := circ.Evaluate()
	if err != nil {
		return fail("evaluate auction: %v", err)
	}

	winnerBits, err := auctionapi.MarshalBits(s.codec, result.Winner)
	if err != nil {
		return fail("encode winning amount: %v", err)
	}
	maskBits, err := auctionapi.MarshalMask(s.codec, result.Mask)
	if err != nil {
		return fail("encode ownership mask: %v", err)
	}

	stats := counter.Stats()
	receipt, err := s.signer.Sign(auctionapi.Receipt{
		AuctionID:    req.AuctionID,
		BidDigests:   bidDigests,
		WinnerDigest: auctionapi.ComputeBitsDigest(winnerBits),
		MaskDigest:   auctionapi.ComputeBitsDigest(maskBits),
		GateCount:    stats.Gates(),
		Timestamp:    time.Now().Unix(),
	})
	if err != nil {
		return fail("sign receipt: %v", err)
	}

	processingTime := time.Since(startTime).Milliseconds()
	log.Printf("INFO: Auction %s complete: %d bids, %s, processing=%dms",
		req.AuctionID, len(req.Bids), stats, processingTime)

	return auctionapi.AuctionResponse{
		Type:           auctionapi.TypeAuctionResponse,
		Success:        true,
		Message:        fmt.Sprintf("Evaluated %d bids obliviously", len(req.Bids)),
		AuctionID:      req.AuctionID,
		WinnerBits:     winnerBits,
		OwnershipMask:  maskBits,
		GateCount:      stats.Gates(),
		Receipt:        receipt,
		ProcessingTime: processingTime,
	}
}

// Helper function for required environment variable parsing
func getRequiredEnvInt(key string) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return 0, fmt.Errorf("required environment variable %s is not set", key)
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %s (must be a valid integer)", key, value)
	}

	log.Printf("INFO: Using %s=%d from environment", key, intValue)
	return intValue, nil
}

func main() {
	server := NewServer(5000)
	log.Fatal(server.Start())
}
