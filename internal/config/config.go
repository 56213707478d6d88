package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a watcher instance.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Fetcher  FetcherConfig  `yaml:"fetcher"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the HTTP/WS listener settings.
type ServerConfig struct {
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`
	AllowOrigin string `yaml:"allow_origin"`
}

// UpstreamConfig holds the booking service client settings.
type UpstreamConfig struct {
	BaseURL            string   `yaml:"base_url"`
	Timeout            Duration `yaml:"timeout"`
	InsecureSkipVerify bool     `yaml:"insecure_skip_verify"`
}

// FetcherConfig holds the refresh loop settings.
type FetcherConfig struct {
	Interval    Duration `yaml:"interval"`
	Concurrency int64    `yaml:"concurrency"`
	Window      Duration `yaml:"window"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Duration wraps time.Duration for YAML unmarshalling of values like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
