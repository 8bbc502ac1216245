package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/anonid/internal/flagx"
	"github.com/dmitrijs2005/anonid/internal/timex"
)

// JsonConfig is the on-disk form of Config. Absent fields keep their value.
type JsonConfig struct {
	ServerEndpointAddr *string         `json:"server_endpoint_addr"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
	BaseDifficulty     *uint           `json:"base_difficulty"`
	Algorithm          *string         `json:"algorithm"`
	Workers            *int            `json:"workers"`
	MineTimeout        *timex.Duration `json:"mine_timeout"`
	LogLevel           *string         `json:"log_level"`
}

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

	if c.ServerEndpointAddr != nil {
		config.ServerEndpointAddr = *c.ServerEndpointAddr
	}
	if c.RequestTimeout != nil {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.BaseDifficulty != nil {
		config.BaseDifficulty = *c.BaseDifficulty
	}
	if c.Algorithm != nil {
		config.Algorithm = *c.Algorithm
	}
	if c.Workers != nil {
		config.Workers = *c.Workers
	}
	if c.MineTimeout != nil {
		config.MineTimeout = c.MineTimeout.Duration
	}
	if c.LogLevel != nil {
		config.LogLevel = *c.LogLevel
	}
}
