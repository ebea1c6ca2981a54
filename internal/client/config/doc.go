// Package config loads runtime configuration for the CareerCompass client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment variables prefixed with CAREER_ (e.g. CAREER_API_URL).
//  4. Command-line flags, which override everything else.
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "15s" or integer
// nanoseconds. Keys left out keep their earlier value:
//
//	{
//	  "api_base_url": "http://localhost:8000/api",
//	  "database_path": "careercompass.db",
//	  "request_timeout": "15s",
//	  "rate_limit": 10,
//	  "log_format": "json"
//	}
package config
