package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/anonid/internal/flagx"
	"github.com/dmitrijs2005/anonid/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations are timex.Duration so
// both "24h" and integer nanoseconds are accepted. Fields left out of the
// file keep their current value.
type JsonConfig struct {
	EndpointAddrGRPC        *string         `json:"endpoint_addr_grpc"`
	MetricsAddr             *string         `json:"metrics_addr"`
	DatabaseDSN             *string         `json:"database_dsn"`
	SecretKey               *string         `json:"secret_key"`
	ReceiptValidityDuration *timex.Duration `json:"receipt_validity_duration"`
	BaseDifficulty          *uint           `json:"base_difficulty"`
	Algorithm               *string         `json:"algorithm"`
	MaxUsernameLength       *uint           `json:"max_username_length"`
	ArchiveEnabled          *bool           `json:"archive_enabled"`
	S3RootUser              *string         `json:"s3_root_user"`
	S3RootPassword          *string         `json:"s3_root_password"`
	S3Bucket                *string         `json:"s3_bucket"`
	S3Region                *string         `json:"s3_region"`
	S3BaseEndpoint          *string         `json:"s3_base_endpoint"`
	LogLevel                *string         `json:"log_level"`
	LogFormat               *string         `json:"log_format"`
}

// parseJson loads the file named by -c/-config (if any) into config.
// A file that cannot be read or decoded makes it panic.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setIf(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setIf(&config.MetricsAddr, c.MetricsAddr)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	if c.ReceiptValidityDuration != nil {
		config.ReceiptValidityDuration = c.ReceiptValidityDuration.Duration
	}
	setIf(&config.BaseDifficulty, c.BaseDifficulty)
	setIf(&config.Algorithm, c.Algorithm)
	setIf(&config.MaxUsernameLength, c.MaxUsernameLength)
	setIf(&config.ArchiveEnabled, c.ArchiveEnabled)
	setIf(&config.S3RootUser, c.S3RootUser)
	setIf(&config.S3RootPassword, c.S3RootPassword)
	setIf(&config.S3Bucket, c.S3Bucket)
	setIf(&config.S3Region, c.S3Region)
	setIf(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setIf(&config.LogLevel, c.LogLevel)
	setIf(&config.LogFormat, c.LogFormat)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
