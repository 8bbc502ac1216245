package config

import (
	"os"
	"runtime"
	"time"

	"github.com/dmitrijs2005/anonid/internal/common"
)

// Config holds runtime settings for the anonid client.
type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration
	BaseDifficulty     uint
	Algorithm          string
	Workers            int
	MineTimeout        time.Duration
	LogLevel           string
}

// LoadDefaults populates c with defaults. Workers follows the CPU count.
// BaseDifficulty and Algorithm only matter for offline mining; register
// takes both from the server's challenge.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
	c.BaseDifficulty = common.DefaultBaseDifficulty
	c.Algorithm = "sha256"
	c.Workers = runtime.NumCPU()
	c.MineTimeout = 0
	c.LogLevel = "warn"
}

// LoadConfig applies defaults, then the JSON file, then flags from os.Args.
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
