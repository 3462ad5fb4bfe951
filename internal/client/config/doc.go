// Package config loads runtime configuration for the pharmsim CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or --config.
//  3. Command-line flags explicitly set by the user, which override earlier
//     values.
//
// # JSON schema
//
// The JSON loader uses timex.Duration for timeouts, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://sim.example.org",
//	  "state_path": "/var/lib/pharmsim/state.db",
//	  "request_timeout": "10s",
//	  "refresh_timeout": "5s",
//	  "log_level": "info",
//	  "log_format": "json"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
