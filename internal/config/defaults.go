package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBindAddress     = "0.0.0.0"
	DefaultPort            = 5000
	DefaultBaseURL         = "https://rdv.snct.lu"
	DefaultUpstreamTimeout = Duration(10 * time.Second)
	DefaultInterval        = Duration(time.Minute)
	DefaultConcurrency     = 10
	DefaultWindow          = Duration(10 * 7 * 24 * time.Hour)
	DefaultLogLevel        = "info"
)

func (c *Config) applyDefaults() {
	if c.Server.BindAddress == "" {
		c.Server.BindAddress = DefaultBindAddress
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}

	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = DefaultBaseURL
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = DefaultUpstreamTimeout
	}

	if c.Fetcher.Interval == 0 {
		c.Fetcher.Interval = DefaultInterval
	}
	if c.Fetcher.Concurrency == 0 {
		c.Fetcher.Concurrency = DefaultConcurrency
	}
	if c.Fetcher.Window == 0 {
		c.Fetcher.Window = DefaultWindow
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
