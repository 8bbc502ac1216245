// Package identity holds the value type that binds a human-readable username
// to an authentication address, together with its canonical wire encoding.
//
// The merged form "{authAddress}:{username}" is the exact byte sequence that
// proofs of work are computed over, so independently written verifiers must
// produce it byte for byte.
package identity

import (
	"strings"
	"unicode/utf8"
)

// Separator joins the address and the username in the merged form.
const Separator = ":"

// Record is an immutable username/address pair. No validation is applied here;
// callers that accept records from the outside world validate them themselves.
type Record struct {
	username    string
	authAddress string
}

// New builds a Record from its parts.
func New(username, authAddress string) Record {
	return Record{username: username, authAddress: authAddress}
}

// Parse reconstructs a Record from its merged form.
//
// The string is split on the first separator only: everything before it is
// the address and everything after it is the username. A username that itself
// contains ':' therefore survives a Merge/Parse round trip. The second return
// value is false when the input has no separator at all.
func Parse(merged string) (Record, bool) {
	parts := strings.SplitN(merged, Separator, 2)
	if len(parts) < 2 {
		return Record{}, false
	}
	return Record{authAddress: parts[0], username: parts[1]}, true
}

// Merge returns the canonical "{authAddress}:{username}" encoding.
func (r Record) Merge() string {
	return r.authAddress + Separator + r.username
}

// Username returns the username part.
func (r Record) Username() string { return r.username }

// AuthAddress returns the authentication address part.
func (r Record) AuthAddress() string { return r.authAddress }

// UsernameLength counts Unicode code points, not bytes, so that a username
// written in a multi-byte script is priced by its visible length.
func (r Record) UsernameLength() uint {
	return uint(utf8.RuneCountInString(r.username))
}

// String implements fmt.Stringer with the merged form.
func (r Record) String() string { return r.Merge() }
