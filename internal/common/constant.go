// Package common contains shared constants and sentinel errors used across
// anonid components.
package common

// ReceiptHeaderName is the gRPC metadata key that carries a registration
// receipt on outbound requests.
const ReceiptHeaderName = "receipt"

// DefaultBaseDifficulty is the base number of leading zero hex digits asked
// of a proof when nothing else is configured.
const DefaultBaseDifficulty = 24
