// Package client talks to the anonid registry.
//
// The Client interface is the transport-agnostic contract used by the CLI;
// GRPCClient implements it over gRPC. GRPCClient remembers the receipt
// returned by a successful registration and attaches it to outgoing calls
// as metadata, so Whoami works without extra arguments.
//
// Transport and server failures are mapped to sentinel errors that callers
// match with errors.Is: ErrUnavailable, ErrUnauthorized, ErrAlreadyRegistered,
// ErrRejected, ErrNotFound and ErrInvalidArgument.
package client
