package config

import (
	"time"

	"github.com/dmitrijs2005/careercompass/internal/logging"
)

// Config holds runtime settings for the CareerCompass terminal client.
//
// Units: RequestTimeout is a time.Duration; RateLimit is requests per second,
// 0 disables limiting.
type Config struct {
	APIBaseURL        string        `env:"API_URL"`
	DatabasePath      string        `env:"DB_PATH"`
	KeyPath           string        `env:"KEY_PATH"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT"`
	RateLimit         float64       `env:"RATE_LIMIT"`
	LogFormat         string        `env:"LOG_FORMAT"`
	LogLevel          string        `env:"LOG_LEVEL"`
	GoogleClientID    string        `env:"GOOGLE_CLIENT_ID"`
	GoogleRedirectURL string        `env:"GOOGLE_REDIRECT_URL"`

	// Ephemeral keeps the session in memory only.
	Ephemeral bool `env:"EPHEMERAL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000/api"
	c.DatabasePath = "careercompass.db"
	c.KeyPath = "careercompass.key"
	c.RequestTimeout = 15 * time.Second
	c.RateLimit = 10
	c.LogFormat = logging.FormatText
	c.LogLevel = "warn"
	c.GoogleRedirectURL = "http://localhost:5173/auth/google/callback"
}

// LoadConfig constructs a Config from defaults, then overlays the JSON file
// (if -c/-config is given), environment variables and finally command-line
// flags. Later sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
