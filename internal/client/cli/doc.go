// Package cli provides the interactive anonid command-line client.
//
// The REPL mines proofs locally, registers usernames with the registry and
// queries it. A background watcher pings the server and switches the prompt
// between online and offline mode.
//
// Commands:
//
//	help                                  show available commands
//	mine <username> <auth_address>        mine a proof offline
//	register <username> <auth_address>    mine the server challenge and register
//	verify <identity> <digest> <nonce>    check a proof with the registry
//	lookup <username> | lookup -a <addr>  show registrations
//	whoami                                resolve the stored receipt
//	exit | quit                           leave the program
//
// Missing arguments are prompted for interactively.
package cli
