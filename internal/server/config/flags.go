package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/anonid/internal/flagx"
)

var serverFlags = []string{"-a", "-m", "-d", "-s", "-t", "-k", "-alg", "-n", "-x", "-u", "-p", "-b", "-g", "-e", "-l", "-f"}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-m string   metrics bind address, empty disables
//	-d string   PostgreSQL DSN, empty keeps registrations in memory
//	-s string   receipt HMAC secret key
//	-t int      receipt validity, hours
//	-k uint     base difficulty
//	-alg string hash algorithm (sha256, sha3-256, blake2b-256)
//	-n uint     max username length
//	-x bool     publish accepted proofs to S3
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-l string   log level
//	-f string   log format
//
// Arguments are filtered with flagx.FilterArgs first, so flags meant for
// other components (such as -c) do not break parsing.
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port to serve metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "receipt secret key")
	receiptValidity := fs.Int("t", int(config.ReceiptValidityDuration.Hours()), "receipt validity (in hours)")
	fs.UintVar(&config.BaseDifficulty, "k", config.BaseDifficulty, "base difficulty (leading zero hex digits)")
	fs.StringVar(&config.Algorithm, "alg", config.Algorithm, "proof-of-work hash algorithm")
	fs.UintVar(&config.MaxUsernameLength, "n", config.MaxUsernameLength, "max username length")
	fs.BoolVar(&config.ArchiveEnabled, "x", config.ArchiveEnabled, "publish accepted proofs to S3")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level: debug|info|warn|error")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format: json|text")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.ReceiptValidityDuration = time.Duration(*receiptValidity) * time.Hour
		}
	})
}
