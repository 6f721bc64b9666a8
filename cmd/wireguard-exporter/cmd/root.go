package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/exporter/collector"
	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/exporter/config"
	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/exporter/server"
	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/shared/logger"
)

const version = "1.0.0"

var loader = config.NewLoader()

// rootCmd represents the exporter command
var rootCmd = &cobra.Command{
	Use:   "wireguard-exporter",
	Short: "Prometheus exporter for WireGuard interface state",
	Long: `Prometheus exporter for WireGuard interface state.

The exporter turns the live state of one or more WireGuard interfaces into
Prometheus metrics, optionally enriched with friendly peer names taken from
the interface configuration files.

Examples:
  # Export all interfaces on the default port
  wireguard-exporter

  # Export two specific interfaces with peer names from their config files
  wireguard-exporter -i wg0 -i wg1 -n /etc/wireguard/wg0.conf -n /etc/wireguard/wg1.conf

  # Split allowed IPs into per-subnet labels and export remote endpoints
  wireguard-exporter -s -r`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loader.Load()
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			cfg.LogLevel = "debug"
		}

		log := logger.New(logger.LoggerConfig{
			Level:     logger.LogLevel(cfg.LogLevel),
			Format:    logger.OutputFormat(cfg.LogFormat),
			Component: "wireguard-exporter",
			Version:   version,
		})

		ctx := context.Background()
		log.InfoContext(ctx, "starting wireguard-exporter", "version", version)

		var col collector.Collector
		switch cfg.Collector {
		case config.CollectorKernel:
			col = collector.NewKernelCollector(cfg.Interfaces, log)
		default:
			col = collector.NewCommandCollector(cfg.Interfaces, cfg.PrependSudo, log)
		}

		srv := server.New(cfg, col, version, log)
		if err := srv.Start(ctx); err != nil {
			log.ErrorCtx(ctx, "failed to start exporter", err)
			os.Exit(1)
		}

		srv.WaitForShutdown()
		log.InfoContext(ctx, "exporter exiting")
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.Flags()

	flags.StringP("listen-address", "l", "0.0.0.0", "address the exporter binds to")
	flags.IntP("listen-port", "p", 9586, "port the exporter binds to")
	flags.StringSliceP("interface", "i", nil, "interface passed to the wg show command (repeatable; all interfaces if unset)")
	flags.StringSliceP("config-file", "n", nil, "WireGuard config file to extract peer names from (repeatable)")
	flags.BoolP("split-allowed-ips", "s", false, "emit one allowed_ip/allowed_subnet label pair per entry instead of a combined label")
	flags.BoolP("export-remote-ip-and-port", "r", false, "add remote_ip/remote_port labels when the peer has been seen")
	flags.Int64P("handshake-timeout-seconds", "t", -1, "partition the peer-count gauge by handshake recency (disabled if negative)")
	flags.BoolP("prepend-sudo", "a", false, "prepend sudo to the wg show commands")
	flags.String("collector", config.CollectorCommand, "how to read interface state: command or kernel")
	flags.BoolP("verbose", "v", false, "enable debug logging")

	// Bind flags to viper so config files and env vars can override defaults
	v := loader.Viper()
	v.BindPFlag("listen_address", flags.Lookup("listen-address"))
	v.BindPFlag("listen_port", flags.Lookup("listen-port"))
	v.BindPFlag("interfaces", flags.Lookup("interface"))
	v.BindPFlag("config_files", flags.Lookup("config-file"))
	v.BindPFlag("split_allowed_ips", flags.Lookup("split-allowed-ips"))
	v.BindPFlag("export_remote_ip_and_port", flags.Lookup("export-remote-ip-and-port"))
	v.BindPFlag("handshake_timeout_seconds", flags.Lookup("handshake-timeout-seconds"))
	v.BindPFlag("prepend_sudo", flags.Lookup("prepend-sudo"))
	v.BindPFlag("collector", flags.Lookup("collector"))
}
