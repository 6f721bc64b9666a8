package config

import (
	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/exporter/metrics"
)

// Collector modes.
const (
	CollectorCommand = "command"
	CollectorKernel  = "kernel"
)

// Config holds the exporter application configuration.
type Config struct {
	ListenAddress string   `mapstructure:"listen_address"`
	ListenPort    int      `mapstructure:"listen_port"`
	Interfaces    []string `mapstructure:"interfaces"`
	ConfigFiles   []string `mapstructure:"config_files"`

	SplitAllowedIPs       bool `mapstructure:"split_allowed_ips"`
	ExportRemoteIPAndPort bool `mapstructure:"export_remote_ip_and_port"`

	// HandshakeTimeoutSeconds < 0 disables the seen_recently partition.
	HandshakeTimeoutSeconds int64 `mapstructure:"handshake_timeout_seconds"`

	PrependSudo bool   `mapstructure:"prepend_sudo"`
	Collector   string `mapstructure:"collector"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// RenderOptions converts the flat configuration into renderer options.
func (c *Config) RenderOptions() metrics.Options {
	opts := metrics.Options{
		SplitAllowedIPs:       c.SplitAllowedIPs,
		ExportRemoteIPAndPort: c.ExportRemoteIPAndPort,
	}
	if c.HandshakeTimeoutSeconds >= 0 {
		timeout := uint64(c.HandshakeTimeoutSeconds)
		opts.HandshakeTimeoutSeconds = &timeout
	}
	return opts
}
