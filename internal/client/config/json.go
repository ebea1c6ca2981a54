package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/careercompass/internal/flagx"
	"github.com/dmitrijs2005/careercompass/internal/timex"
)

// JSONConfig is the file representation of Config. Pointer fields tell a
// missing key from an explicit zero value, so only keys present in the file
// override earlier sources.
type JSONConfig struct {
	APIBaseURL        *string         `json:"api_base_url"`
	DatabasePath      *string         `json:"database_path"`
	KeyPath           *string         `json:"key_path"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	RateLimit         *float64        `json:"rate_limit"`
	LogFormat         *string         `json:"log_format"`
	LogLevel          *string         `json:"log_level"`
	GoogleClientID    *string         `json:"google_client_id"`
	GoogleRedirectURL *string         `json:"google_redirect_url"`
	Ephemeral         *bool           `json:"ephemeral"`
}

// parseJSON overlays cfg with the file named by -c or -config in args. With
// neither flag present it does nothing.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setIf(&cfg.APIBaseURL, jc.APIBaseURL)
	setIf(&cfg.DatabasePath, jc.DatabasePath)
	setIf(&cfg.KeyPath, jc.KeyPath)
	setIf(&cfg.RateLimit, jc.RateLimit)
	setIf(&cfg.LogFormat, jc.LogFormat)
	setIf(&cfg.LogLevel, jc.LogLevel)
	setIf(&cfg.GoogleClientID, jc.GoogleClientID)
	setIf(&cfg.GoogleRedirectURL, jc.GoogleRedirectURL)
	setIf(&cfg.Ephemeral, jc.Ephemeral)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
