// Package config loads runtime configuration for the anonid client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the registry gRPC endpoint
//	-t int      per-request timeout (seconds)
//	-w int      mining workers
//	-m int      mining time limit (seconds), 0 for none
//	-l string   log level
//
// # JSON schema
//
// Durations accept strings like "30s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "10s",
//	  "workers": 4,
//	  "mine_timeout": "10m",
//	  "log_level": "warn"
//	}
package config
