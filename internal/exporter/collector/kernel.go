package collector

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"strings"

	"golang.zx2c4.com/wireguard/wgctrl"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"

	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/exporter/wireguard"
	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/shared/logger"
)

// KernelCollector reads device state through the wgctrl netlink interface
// instead of shelling out to wg. It produces the same model as the command
// collector, so the rest of the pipeline cannot tell them apart.
type KernelCollector struct {
	interfaces []string
	log        *logger.Logger
}

// NewKernelCollector creates a netlink-backed collector. An empty interface
// list means all devices.
func NewKernelCollector(interfaces []string, log *logger.Logger) *KernelCollector {
	return &KernelCollector{
		interfaces: interfaces,
		log:        log,
	}
}

// Collect enumerates the requested devices and converts them endpoint by
// endpoint. Peer order within a device follows the kernel's reply order,
// mirroring dump line order.
func (c *KernelCollector) Collect(ctx context.Context) (*wireguard.Model, error) {
	client, err := wgctrl.New()
	if err != nil {
		return nil, fmt.Errorf("failed to open wgctrl client: %w", err)
	}
	defer client.Close()

	devices, err := c.devices(client)
	if err != nil {
		return nil, err
	}

	model := wireguard.NewModel()
	for _, device := range devices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		appendDevice(model, device)
		c.log.Debug("collected device state",
			slog.String("interface", device.Name),
			slog.Int("peers", len(device.Peers)))
	}

	return model, nil
}

func (c *KernelCollector) devices(client *wgctrl.Client) ([]*wgtypes.Device, error) {
	if len(c.interfaces) == 0 {
		devices, err := client.Devices()
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate wireguard devices: %w", err)
		}
		return devices, nil
	}

	devices := make([]*wgtypes.Device, 0, len(c.interfaces))
	for _, name := range c.interfaces {
		device, err := client.Device(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read device %s: %w", name, err)
		}
		devices = append(devices, device)
	}
	return devices, nil
}

func appendDevice(model *wireguard.Model, device *wgtypes.Device) {
	model.Append(device.Name, wireguard.LocalEndpoint{
		PublicKey:  device.PublicKey.String(),
		PrivateKey: wireguard.SecureString(device.PrivateKey.String()),
		ListenPort: uint16(device.ListenPort),
	})

	for _, peer := range device.Peers {
		ep := wireguard.RemoteEndpoint{
			PublicKey:           peer.PublicKey.String(),
			AllowedIPs:          joinAllowedIPs(peer.AllowedIPs),
			ReceivedBytes:       big.NewInt(peer.ReceiveBytes),
			SentBytes:           big.NewInt(peer.TransmitBytes),
			PersistentKeepalive: peer.PersistentKeepaliveInterval > 0,
		}
		if !peer.LastHandshakeTime.IsZero() {
			ep.LatestHandshake = uint64(peer.LastHandshakeTime.Unix())
		}
		if peer.Endpoint != nil {
			ep.RemoteIP = peer.Endpoint.IP.String()
			ep.RemotePort = uint16(peer.Endpoint.Port)
		}
		model.Append(device.Name, ep)
	}
}

func joinAllowedIPs(networks []net.IPNet) string {
	entries := make([]string, 0, len(networks))
	for _, network := range networks {
		entries = append(entries, network.String())
	}
	return strings.Join(entries, ",")
}
