package pow

import "errors"

var (
	// ErrUnknownAlgorithm is returned by Lookup for unregistered names.
	ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

	// ErrUnsatisfiable means the target needs more zero digits than the
	// algorithm's digest has.
	ErrUnsatisfiable = errors.New("difficulty exceeds digest length")

	// ErrNonceSpaceExhausted is returned when every uint64 nonce was tried.
	ErrNonceSpaceExhausted = errors.New("nonce space exhausted")
)
