package metrics

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/exporter/wgconfig"
	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/exporter/wireguard"
)

// Options are the orthogonal rendering knobs. HandshakeTimeoutSeconds nil
// means the peer-count gauge is not partitioned by recency.
type Options struct {
	SplitAllowedIPs         bool
	ExportRemoteIPAndPort   bool
	HandshakeTimeoutSeconds *uint64
}

// Renderer turns an aggregated model plus the annotation map into Prometheus
// exposition text. Rendering the same model twice yields byte-identical
// output: interfaces are walked in lexicographic order and every label list
// is built deterministically.
type Renderer struct {
	opts Options
	now  func() time.Time
}

// NewRenderer creates a renderer for the given options
func NewRenderer(opts Options) *Renderer {
	return &Renderer{
		opts: opts,
		now:  time.Now,
	}
}

// Render walks the model and produces the four metric families in fixed
// order: sent bytes, received bytes, latest handshake, peers total. Local
// endpoints describe the host itself and are never exported.
func (r *Renderer) Render(model *wireguard.Model, peers wgconfig.PeerMap) string {
	sent := newFamily("wireguard_sent_bytes_total", counter, "Bytes sent to the peer")
	received := newFamily("wireguard_received_bytes_total", counter, "Bytes received from the peer")
	handshake := newFamily("wireguard_latest_handshake_seconds", gauge, "Seconds from the last handshake")
	peersTotal := newFamily("wireguard_peers_total", gauge, "Total number of peers")

	for _, iface := range model.InterfaceNames() {
		var remotes []wireguard.RemoteEndpoint

		for _, ep := range model.Interfaces[iface] {
			remote, ok := ep.(wireguard.RemoteEndpoint)
			if !ok {
				continue
			}
			remotes = append(remotes, remote)

			labels := r.endpointLabels(iface, remote, peers)
			sent.add(labels, remote.SentBytes.String())
			received.add(labels, remote.ReceivedBytes.String())
			handshake.add(labels, strconv.FormatUint(remote.LatestHandshake, 10))
		}

		r.addPeerCounts(peersTotal, iface, remotes)
	}

	return sent.render() + "\n" + received.render() + "\n" + handshake.render() + "\n" + peersTotal.render()
}

// endpointLabels builds the ordered label set for one remote endpoint.
// Fixed labels come first (interface, public_key, the combined allowed_ips
// when unsplit, friendly_name, remote_ip), then the accumulated labels in
// collection order: allowed_ip_{i}/allowed_subnet_{i} pairs, JSON-derived
// labels sorted by key, remote_port.
func (r *Renderer) endpointLabels(iface string, ep wireguard.RemoteEndpoint, peers wgconfig.PeerMap) []labelPair {
	labels := []labelPair{
		{"interface", iface},
		{"public_key", ep.PublicKey},
	}
	var collected []labelPair

	if r.opts.SplitAllowedIPs {
		for i, entry := range strings.Split(ep.AllowedIPs, ",") {
			tokens := strings.Split(entry, "/")
			idx := strconv.Itoa(i)
			collected = append(collected,
				labelPair{"allowed_ip_" + idx, tokens[0]},
				labelPair{"allowed_subnet_" + idx, tokens[len(tokens)-1]},
			)
		}
	} else {
		labels = append(labels, labelPair{"allowed_ips", ep.AllowedIPs})
	}

	if peer, ok := peers[ep.PublicKey]; ok && peer.Friendly != nil {
		switch friendly := peer.Friendly.(type) {
		case wgconfig.FriendlyName:
			labels = append(labels, labelPair{"friendly_name", string(friendly)})
		case wgconfig.FriendlyJSON:
			collected = append(collected, jsonLabels(friendly)...)
		}
	}

	if r.opts.ExportRemoteIPAndPort && ep.Connected() {
		labels = append(labels, labelPair{"remote_ip", ep.RemoteIP})
		collected = append(collected, labelPair{"remote_port", strconv.FormatUint(uint64(ep.RemotePort), 10)})
	}

	return append(labels, collected...)
}

// jsonLabels coerces a friendly_json object into label pairs sorted by key.
func jsonLabels(obj wgconfig.FriendlyJSON) []labelPair {
	pairs := make([]labelPair, 0, len(obj))
	for key, value := range obj {
		pairs = append(pairs, labelPair{key, coerceScalar(value)})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].name < pairs[j].name })
	return pairs
}

// coerceScalar renders a JSON scalar as a label value. Non-scalar values get
// a placeholder instead of failing the whole scrape.
func coerceScalar(value any) string {
	switch v := value.(type) {
	case json.Number:
		return v.String()
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	default:
		return "unsupported_json_value"
	}
}

// addPeerCounts emits the per-interface gauge, optionally partitioned by
// handshake recency. The wall clock is read once per interface so the whole
// partition shares one threshold.
func (r *Renderer) addPeerCounts(family *family, iface string, remotes []wireguard.RemoteEndpoint) {
	base := labelPair{"interface", iface}

	timeout := r.opts.HandshakeTimeoutSeconds
	if timeout == nil {
		family.add([]labelPair{base}, strconv.Itoa(len(remotes)))
		return
	}

	now := uint64(r.now().Unix())
	recent := 0
	for _, ep := range remotes {
		if seenRecently(now, ep.LatestHandshake, *timeout) {
			recent++
		}
	}

	family.add([]labelPair{base, {"seen_recently", "true"}}, strconv.Itoa(recent))
	family.add([]labelPair{base, {"seen_recently", "false"}}, strconv.Itoa(len(remotes)-recent))
}

// seenRecently guards against future-dated handshakes instead of letting the
// unsigned subtraction wrap around.
func seenRecently(now, handshake, timeout uint64) bool {
	if handshake >= now {
		return true
	}
	return now-handshake < timeout
}

type labelPair struct {
	name  string
	value string
}

type metricType string

const (
	counter metricType = "counter"
	gauge   metricType = "gauge"
)

// family accumulates samples under a single HELP/TYPE preamble.
type family struct {
	name    string
	kind    metricType
	help    string
	samples strings.Builder
}

func newFamily(name string, kind metricType, help string) *family {
	return &family{name: name, kind: kind, help: help}
}

func (f *family) add(labels []labelPair, value string) {
	f.samples.WriteString(f.name)
	f.samples.WriteByte('{')
	for i, label := range labels {
		if i > 0 {
			f.samples.WriteByte(',')
		}
		f.samples.WriteString(label.name)
		f.samples.WriteString(`="`)
		f.samples.WriteString(label.value)
		f.samples.WriteByte('"')
	}
	f.samples.WriteString("} ")
	f.samples.WriteString(value)
	f.samples.WriteByte('\n')
}

func (f *family) render() string {
	var b strings.Builder
	b.WriteString("# HELP ")
	b.WriteString(f.name)
	b.WriteByte(' ')
	b.WriteString(f.help)
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(f.name)
	b.WriteByte(' ')
	b.WriteString(string(f.kind))
	b.WriteByte('\n')
	b.WriteString(f.samples.String())
	return b.String()
}
