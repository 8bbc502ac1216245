package pow

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"sort"
	"strconv"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Algorithm maps a canonical identity string and a nonce to a lowercase hex
// digest. Implementations must be stateless and safe for concurrent use.
type Algorithm interface {
	// Name is the identifier used in configuration and on the wire.
	Name() string

	// Calculate hashes text followed by ":" and the decimal nonce.
	Calculate(text string, nonce uint64) string

	// DigestHexLen is the length of every digest Calculate returns.
	DigestHexLen() int
}

type hashAlgorithm struct {
	name    string
	newHash func() hash.Hash
	size    int
}

func (a *hashAlgorithm) Name() string { return a.name }

func (a *hashAlgorithm) DigestHexLen() int { return a.size * 2 }

// Calculate feeds the text bytes and then ":<nonce>" into a fresh hash, so
// the message is exactly UTF8(text) ++ ":" ++ decimal(nonce).
func (a *hashAlgorithm) Calculate(text string, nonce uint64) string {
	h := a.newHash()
	_, _ = io.WriteString(h, text)

	var buf [24]byte
	suffix := append(buf[:0], ':')
	suffix = strconv.AppendUint(suffix, nonce, 10)
	_, _ = h.Write(suffix)

	return hex.EncodeToString(h.Sum(nil))
}

var (
	// SHA256 is the canonical algorithm every verifier must support.
	SHA256 Algorithm = &hashAlgorithm{name: "sha256", newHash: sha256.New, size: sha256.Size}

	// SHA3_256 uses FIPS 202 SHA3-256.
	SHA3_256 Algorithm = &hashAlgorithm{name: "sha3-256", newHash: sha3.New256, size: 32}

	// BLAKE2b256 uses unkeyed BLAKE2b with a 32 byte digest.
	BLAKE2b256 Algorithm = &hashAlgorithm{name: "blake2b-256", newHash: newBlake2b256, size: blake2b.Size256}
)

func newBlake2b256() hash.Hash {
	// New256 only fails for keys longer than 64 bytes.
	h, _ := blake2b.New256(nil)
	return h
}

var algorithms = map[string]Algorithm{
	SHA256.Name():     SHA256,
	SHA3_256.Name():   SHA3_256,
	BLAKE2b256.Name(): BLAKE2b256,
}

// Lookup returns the algorithm registered under name. An empty name selects
// SHA256.
func Lookup(name string) (Algorithm, error) {
	if name == "" {
		return SHA256, nil
	}
	a, ok := algorithms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	return a, nil
}

// Names lists registered algorithm names in lexical order.
func Names() []string {
	names := make([]string, 0, len(algorithms))
	for n := range algorithms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
