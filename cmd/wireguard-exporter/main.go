package main

import (
	"github.com/MindFlavor/prometheus-wireguard-exporter/cmd/wireguard-exporter/cmd"
)

func main() {
	cmd.Execute()
}
