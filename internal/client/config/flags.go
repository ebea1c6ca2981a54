package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/careercompass/internal/flagx"
)

var knownFlags = []string{
	"-a", "-d", "-k", "-t", "-r",
	"-log-format", "-log-level",
	"-google-client-id", "-google-redirect-url",
	"-ephemeral",
}

// parseFlags populates Config fields from command-line flags.
//
//	-a string                 API base URL
//	-d string                 SQLite database path
//	-k string                 sealing key path
//	-t duration               per-request timeout, e.g. 10s
//	-r float                  outbound requests per second, 0 disables
//	-log-format text|json
//	-log-level string
//	-google-client-id string
//	-google-redirect-url string
//	-ephemeral                keep the session in memory only
//
// args is filtered with flagx.FilterArgs so flags owned by other components
// do not cause errors here.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("careercompass", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "SQLite database path")
	fs.StringVar(&cfg.KeyPath, "k", cfg.KeyPath, "sealing key path")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "per-request timeout")
	fs.Float64Var(&cfg.RateLimit, "r", cfg.RateLimit, "outbound requests per second (0 disables)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.GoogleClientID, "google-client-id", cfg.GoogleClientID, "Google OAuth client id")
	fs.StringVar(&cfg.GoogleRedirectURL, "google-redirect-url", cfg.GoogleRedirectURL, "Google OAuth redirect URL")
	fs.BoolVar(&cfg.Ephemeral, "ephemeral", cfg.Ephemeral, "keep the session in memory only")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
