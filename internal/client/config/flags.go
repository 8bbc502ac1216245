package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/anonid/internal/flagx"
)

var clientFlags = []string{"-a", "-t", "-d", "-alg", "-w", "-m", "-l"}

// parseFlags overlays flag values on config. Durations are whole seconds and
// only replace the current value when given. A malformed value panics.
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)

	fs.StringVar(&config.ServerEndpointAddr, "a", config.ServerEndpointAddr, "address and port of the registry")
	requestTimeout := fs.Int("t", int(config.RequestTimeout.Seconds()), "request timeout (seconds)")
	fs.UintVar(&config.BaseDifficulty, "d", config.BaseDifficulty, "base difficulty for offline mining")
	fs.StringVar(&config.Algorithm, "alg", config.Algorithm, "hash algorithm for offline mining")
	fs.IntVar(&config.Workers, "w", config.Workers, "mining workers")
	mineTimeout := fs.Int("m", int(config.MineTimeout.Seconds()), "mining time limit (seconds), 0 for none")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level: debug|info|warn|error")

	if err := fs.Parse(flagx.FilterArgs(args, clientFlags)); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.RequestTimeout = time.Duration(*requestTimeout) * time.Second
		case "m":
			config.MineTimeout = time.Duration(*mineTimeout) * time.Second
		}
	})
}
