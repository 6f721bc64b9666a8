package wireguard

import (
	"log/slog"
	"math/big"
	"sort"
)

// SecureString holds a secret value (a private key) that must never be
// written to logs in clear. Both fmt and slog render it redacted; callers
// that genuinely need the value use Secret().
type SecureString string

func (SecureString) String() string { return "**redacted**" }

func (SecureString) LogValue() slog.Value { return slog.StringValue("**redacted**") }

// Secret returns the wrapped value.
func (s SecureString) Secret() string { return string(s) }

// Endpoint is a closed variant type: a dump record is either the Local
// endpoint of the interface or a Remote peer. Consumers type-switch on the
// concrete type, never downcast through anything else.
type Endpoint interface {
	// Key returns the endpoint's public key.
	Key() string

	sealed()
}

// LocalEndpoint describes the host side of an interface.
type LocalEndpoint struct {
	PublicKey           string
	PrivateKey          SecureString
	ListenPort          uint16
	PersistentKeepalive bool
}

func (e LocalEndpoint) Key() string { return e.PublicKey }

func (LocalEndpoint) sealed() {}

// RemoteEndpoint describes one peer of an interface as reported by the dump.
type RemoteEndpoint struct {
	PublicKey string

	// RemoteIP and RemotePort are only set once the peer has been seen at
	// least once. An empty RemoteIP means "never connected".
	RemoteIP   string
	RemotePort uint16

	// AllowedIPs is kept verbatim; the renderer splits it for label shaping.
	AllowedIPs string

	// LatestHandshake is seconds since epoch, 0 = never.
	LatestHandshake uint64

	// Byte counters are 128-bit so multi-exabyte sessions cannot overflow.
	ReceivedBytes *big.Int
	SentBytes     *big.Int

	PersistentKeepalive bool
}

func (e RemoteEndpoint) Key() string { return e.PublicKey }

func (RemoteEndpoint) sealed() {}

// Connected reports whether the peer has completed at least one handshake
// and therefore has a known remote address.
func (e RemoteEndpoint) Connected() bool { return e.RemoteIP != "" }

// Model maps interface names to their endpoints in input-line order.
type Model struct {
	Interfaces map[string][]Endpoint
}

// NewModel creates an empty model
func NewModel() *Model {
	return &Model{Interfaces: make(map[string][]Endpoint)}
}

// Append adds an endpoint to the named interface, creating it if needed.
func (m *Model) Append(iface string, ep Endpoint) {
	m.Interfaces[iface] = append(m.Interfaces[iface], ep)
}

// Merge appends every endpoint list of other to the matching interface of m,
// creating interfaces that are missing. Merge never deduplicates: merging the
// same source twice duplicates its entries, so callers merge each source at
// most once.
func (m *Model) Merge(other *Model) {
	for iface, endpoints := range other.Interfaces {
		m.Interfaces[iface] = append(m.Interfaces[iface], endpoints...)
	}
}

// InterfaceNames returns the interface names in lexicographic order.
func (m *Model) InterfaceNames() []string {
	names := make([]string, 0, len(m.Interfaces))
	for name := range m.Interfaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EndpointCount returns the total number of endpoints across interfaces.
func (m *Model) EndpointCount() int {
	n := 0
	for _, endpoints := range m.Interfaces {
		n += len(endpoints)
	}
	return n
}
