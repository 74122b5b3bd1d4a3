package config

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/gymhub/gymclient/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the API (default from Config)
//	-d string   path of the local token database (default from Config)
//	-r int      chat reconnect delay in seconds (default from Config)
//	-l string   log level (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-r", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "base URL of the API")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local token database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	reconnect := fs.Int("r", int(cfg.ReconnectDelay.Seconds()), "chat reconnect delay (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "r" {
			cfg.ReconnectDelay = time.Duration(*reconnect) * time.Second
		}
	})
}
