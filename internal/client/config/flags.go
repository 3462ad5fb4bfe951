package config

import (
	"github.com/spf13/pflag"
)

const (
	flagConfig         = "config"
	flagAPIURL         = "api-url"
	flagState          = "state"
	flagRequestTimeout = "request-timeout"
	flagRefreshTimeout = "refresh-timeout"
	flagLogLevel       = "log-level"
	flagLogFormat      = "log-format"
)

// RegisterFlags adds the configuration flags to fs, typically the persistent
// flag set of the root command.
//
// Supported flags:
//
//	-c, --config string            JSON config file
//	-a, --api-url string           platform API base URL
//	-s, --state string             local state database
//	    --request-timeout duration HTTP request timeout
//	    --refresh-timeout duration session renewal timeout
//	    --log-level string         debug, info, warn or error
//	    --log-format string        text or json
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(flagConfig, "c", "", "JSON config file")
	fs.StringP(flagAPIURL, "a", d.APIBaseURL, "platform API base URL")
	fs.StringP(flagState, "s", d.StatePath, "local state database")
	fs.Duration(flagRequestTimeout, d.RequestTimeout, "HTTP request timeout")
	fs.Duration(flagRefreshTimeout, d.RefreshTimeout, "session renewal timeout")
	fs.String(flagLogLevel, d.LogLevel, "log level: debug, info, warn or error")
	fs.String(flagLogFormat, d.LogFormat, "log format: text or json")
}

// parseFlags overlays cfg with the flags explicitly set on fs. Flags left at
// their defaults do not override values loaded from JSON.
func parseFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	set := func(name string, apply func() error) {
		if err == nil && fs.Changed(name) {
			err = apply()
		}
	}

	set(flagAPIURL, func() (e error) { cfg.APIBaseURL, e = fs.GetString(flagAPIURL); return })
	set(flagState, func() (e error) { cfg.StatePath, e = fs.GetString(flagState); return })
	set(flagRequestTimeout, func() (e error) { cfg.RequestTimeout, e = fs.GetDuration(flagRequestTimeout); return })
	set(flagRefreshTimeout, func() (e error) { cfg.RefreshTimeout, e = fs.GetDuration(flagRefreshTimeout); return })
	set(flagLogLevel, func() (e error) { cfg.LogLevel, e = fs.GetString(flagLogLevel); return })
	set(flagLogFormat, func() (e error) { cfg.LogFormat, e = fs.GetString(flagLogFormat); return })

	return err
}
