// Package services holds the client-side use cases: mining proofs locally
// and registering them with the registry.
package services
