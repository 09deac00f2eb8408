package auction

import (
	"errors"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/Janmajayamall/fhe-auction/circuit"
	"github.com/Janmajayamall/fhe-auction/gate"
)

func newCircuit(t *testing.T, backend gate.Backend, bidders, bidBits int) *Circuit {
	t.Helper()
	circ, err := New(Config{Bidders: bidders, BidBits: bidBits, Backend: backend})
	assert.NoError(t, err)
	return circ
}

func submitUints(t *testing.T, circ *Circuit, backend gate.Backend, values []uint64, width int) {
	t.Helper()
	for _, v := range values {
		ev, err := circuit.EncryptUint(backend, v, width)
		assert.NoError(t, err)
		assert.NoError(t, circ.Submit(ev))
	}
}

func decryptResult(t *testing.T, backend gate.Backend, result *Result) (uint64, []bool) {
	t.Helper()
	value, err := circuit.DecryptUint(backend, result.Winner)
	assert.NoError(t, err)
	mask := make([]bool, len(result.Mask))
	for i, ct := range result.Mask {
		bit, err := backend.Decrypt(ct)
		assert.NoError(t, err)
		mask[i] = bit
	}
	return value, mask
}

func isConfigError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	backend := gate.NewCleartext(gate.DefaultParams())

	_, err := New(Config{Bidders: 0, BidBits: 4, Backend: backend})
	check.True(t, isConfigError(err))

	_, err = New(Config{Bidders: 3, BidBits: 0, Backend: backend})
	check.True(t, isConfigError(err))

	_, err = New(Config{Bidders: 3, BidBits: 4})
	check.True(t, isConfigError(err))
}

func TestCircuit_TieGoesToEarliestBidder(t *testing.T) {
	backend := gate.NewCleartext(gate.DefaultParams())
	circ := newCircuit(t, backend, 3, 4)
	check.Equal(t, Collecting, circ.State())

	// Binary 0101, 1001, 1001: bidders 1 and 2 tie at 9.
	submitUints(t, circ, backend, []uint64{5, 9, 9}, 4)

	assert.NoError(t, circ.Seal())
	check.Equal(t, Ready, circ.State())

	result, err := circ.Evaluate()
	assert.NoError(t, err)
	check.Equal(t, Complete, circ.State())

	value, mask := decryptResult(t, backend, result)
	check.Equal(t, uint64(9), value)
	check.Equal(t, []bool{false, true, false}, mask)

	// The accessor decrypts to the same outcome.
	again, err := circ.Result()
	assert.NoError(t, err)
	againValue, againMask := decryptResult(t, backend, again)
	check.Equal(t, value, againValue)
	check.Equal(t, mask, againMask)
}

// A caller holding a returned result must not be able to corrupt the
// circuit's stored bundles through the shared mask slice.
func TestCircuit_ResultCopyIsIndependent(t *testing.T) {
	backend := gate.NewCleartext(gate.DefaultParams())
	circ := newCircuit(t, backend, 3, 8)

	submitUints(t, circ, backend, []uint64{5, 9, 9}, 8)
	assert.NoError(t, circ.Seal())

	first, err := circ.Evaluate()
	assert.NoError(t, err)

	zero, err := backend.Encrypt(false)
	assert.NoError(t, err)
	for i := range first.Mask {
		first.Mask[i] = zero
	}

	again, err := circ.Result()
	assert.NoError(t, err)
	value, mask := decryptResult(t, backend, again)
	check.Equal(t, uint64(9), value)
	check.Equal(t, []bool{false, true, false}, mask)
}

func TestCircuit_SingleBidder(t *testing.T) {
	backend := gate.NewCleartext(gate.DefaultParams())
	circ := newCircuit(t, backend, 1, 8)

	submitUints(t, circ, backend, []uint64{42}, 8)
	assert.NoError(t, circ.Seal())

	result, err := circ.Evaluate()
	assert.NoError(t, err)

	value, mask := decryptResult(t, backend, result)
	check.Equal(t, uint64(42), value)
	check.Equal(t, []bool{true}, mask)
}

func TestCircuit_SingleBitBids(t *testing.T) {
	for _, tt := range []struct {
		bids       []uint64
		wantValue  uint64
		wantWinner int
	}{
		{[]uint64{0, 0}, 0, 0},
		{[]uint64{0, 1}, 1, 1},
		{[]uint64{1, 0}, 1, 0},
		{[]uint64{1, 1}, 1, 0},
	} {
		backend := gate.NewCleartext(gate.DefaultParams())
		circ := newCircuit(t, backend, 2, 1)
		submitUints(t, circ, backend, tt.bids, 1)
		assert.NoError(t, circ.Seal())

		result, err := circ.Evaluate()
		assert.NoError(t, err)

		value, mask := decryptResult(t, backend, result)
		check.Equal(t, tt.wantValue, value)
		for i, bit := range mask {
			check.Equal(t, i == tt.wantWinner, bit)
		}
	}
}

func TestCircuit_TreeReducerOption(t *testing.T) {
	backend := gate.NewCleartext(gate.DefaultParams())
	circ, err := New(Config{
		Bidders: 5,
		BidBits: 8,
		Backend: backend,
		Reducer: circuit.NewTreeReducer(backend),
	})
	assert.NoError(t, err)

	submitUints(t, circ, backend, []uint64{17, 3, 200, 200, 64}, 8)
	assert.NoError(t, circ.Seal())

	result, err := circ.Evaluate()
	assert.NoError(t, err)

	value, mask := decryptResult(t, backend, result)
	check.Equal(t, uint64(200), value)
	check.Equal(t, []bool{false, false, true, false, false}, mask)
}

func TestCircuit_SubmitValidation(t *testing.T) {
	backend := gate.NewCleartext(gate.DefaultParams())
	circ := newCircuit(t, backend, 2, 4)

	// Wrong width.
	wide, err := circuit.EncryptUint(backend, 1, 8)
	assert.NoError(t, err)
	check.True(t, isConfigError(circ.Submit(wide)))

	// Over-submission.
	submitUints(t, circ, backend, []uint64{1, 2}, 4)
	extra, err := circuit.EncryptUint(backend, 3, 4)
	assert.NoError(t, err)
	check.True(t, isConfigError(circ.Submit(extra)))

	// Submission after sealing.
	assert.NoError(t, circ.Seal())
	check.True(t, isConfigError(circ.Submit(extra)))
}

func TestCircuit_StateSequence(t *testing.T) {
	backend := gate.NewCleartext(gate.DefaultParams())
	circ := newCircuit(t, backend, 2, 4)

	// Seal before all bids are in.
	submitUints(t, circ, backend, []uint64{1}, 4)
	check.True(t, isConfigError(circ.Seal()))

	// Evaluate before Ready.
	_, err := circ.Evaluate()
	check.True(t, isConfigError(err))

	// Result before Complete.
	_, err = circ.Result()
	check.True(t, isConfigError(err))

	submitUints(t, circ, backend, []uint64{2}, 4)
	assert.NoError(t, circ.Seal())

	// Double seal.
	check.True(t, isConfigError(circ.Seal()))

	_, err = circ.Evaluate()
	assert.NoError(t, err)
}

func TestCircuit_ReEvaluationRejected(t *testing.T) {
	backend := gate.NewCleartext(gate.DefaultParams())
	circ := newCircuit(t, backend, 2, 4)
	submitUints(t, circ, backend, []uint64{3, 7}, 4)
	assert.NoError(t, circ.Seal())

	_, err := circ.Evaluate()
	assert.NoError(t, err)

	_, err = circ.Evaluate()
	check.True(t, isConfigError(err))

	// The first result stays readable.
	result, err := circ.Result()
	assert.NoError(t, err)
	value, _ := decryptResult(t, backend, result)
	check.Equal(t, uint64(7), value)
}

// faultyBackend fails AND gates once its budget is spent, simulating
// resource exhaustion in the cryptographic backend.
type faultyBackend struct {
	*gate.Cleartext
	budget int
}

func (f *faultyBackend) AND(a, b gate.Ciphertext) (gate.Ciphertext, error) {
	if f.budget <= 0 {
		return nil, errors.New("bootstrapping key exhausted")
	}
	f.budget--
	return f.Cleartext.AND(a, b)
}

func TestCircuit_BackendFailureAbortsEvaluation(t *testing.T) {
	backend := &faultyBackend{Cleartext: gate.NewCleartext(gate.DefaultParams()), budget: 3}
	circ := newCircuit(t, backend, 2, 4)
	submitUints(t, circ, backend, []uint64{3, 7}, 4)
	assert.NoError(t, circ.Seal())

	_, err := circ.Evaluate()
	check.Error(t, err)

	var be *BackendError
	check.True(t, errors.As(err, &be))
	check.False(t, isConfigError(err))

	// No partial result survives.
	_, err = circ.Result()
	check.True(t, isConfigError(err))
}
