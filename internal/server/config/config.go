// Package config handles configuration for the registration server,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/anonid/internal/common"
	"github.com/dmitrijs2005/anonid/internal/logging"
	"github.com/dmitrijs2005/anonid/internal/pow"
)

// Config holds runtime settings for the anonid server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the public gRPC endpoint.
//   - MetricsAddr: bind address for the Prometheus /metrics endpoint; empty disables it.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps registrations in memory.
//   - SecretKey: HMAC secret for signing registration receipts (HS256).
//   - ReceiptValidityDuration: lifetime of a receipt.
//   - BaseDifficulty / Algorithm: proof-of-work parameters every proof is checked against.
//   - MaxUsernameLength: upper bound on username length in runes.
//   - ArchiveEnabled and S3*: publication of accepted proofs to an S3-compatible bucket.
//   - LogLevel / LogFormat: slog handler settings.
type Config struct {
	EndpointAddrGRPC        string
	MetricsAddr             string
	DatabaseDSN             string
	SecretKey               string
	ReceiptValidityDuration time.Duration
	BaseDifficulty          uint
	Algorithm               string
	MaxUsernameLength       uint
	ArchiveEnabled          bool
	S3RootUser              string
	S3RootPassword          string
	S3Bucket                string
	S3Region                string
	S3BaseEndpoint          string
	LogLevel                string
	LogFormat               string
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey is insecure for production and must be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.MetricsAddr = ":9090"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.ReceiptValidityDuration = 24 * time.Hour
	c.BaseDifficulty = common.DefaultBaseDifficulty
	c.Algorithm = pow.SHA256.Name()
	c.MaxUsernameLength = 64
	c.ArchiveEnabled = false
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "proofs"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// Validate reports settings the server cannot run with.
func (c *Config) Validate() error {
	if c.EndpointAddrGRPC == "" {
		return errors.New("grpc address must not be empty")
	}
	if c.BaseDifficulty < 1 {
		return errors.New("base difficulty must be at least 1")
	}
	alg, err := pow.Lookup(c.Algorithm)
	if err != nil {
		return err
	}
	if c.BaseDifficulty > uint(alg.DigestHexLen()) {
		return fmt.Errorf("base difficulty %d exceeds %s digest length %d", c.BaseDifficulty, alg.Name(), alg.DigestHexLen())
	}
	if c.MaxUsernameLength < 1 {
		return errors.New("max username length must be at least 1")
	}
	if c.SecretKey == "" {
		return errors.New("secret key must not be empty")
	}
	if c.ReceiptValidityDuration <= 0 {
		return errors.New("receipt validity must be positive")
	}
	if c.ArchiveEnabled && c.S3Bucket == "" {
		return errors.New("s3 bucket must be set when the archive is enabled")
	}
	if _, err := logging.New(c.LogLevel, c.LogFormat, os.Stdout); err != nil {
		return err
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
