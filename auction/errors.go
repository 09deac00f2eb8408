package auction

import "fmt"

// ConfigurationError reports an invalid configuration or a use of the
// circuit outside its legal state sequence. It is always raised before
// any gate evaluation, so a circuit that returns one holds no
// partially evaluated ciphertext state.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "auction: " + e.Reason
}

func configErrorf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// BackendError reports a failed gate evaluation. The circuit performs
// no retry because a corrupted intermediate ciphertext cannot be
// safely reused; the caller must discard the circuit and evaluate
// fresh bids. Re-evaluation with the same inputs and backend is always
// safe since bids are immutable and no state survives across
// invocations.
type BackendError struct {
	Err error
}

func (e *BackendError) Error() string {
	return "auction: backend: " + e.Err.Error()
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
