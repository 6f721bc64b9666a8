package wireguard

import (
	"math/big"
	"net/netip"
	"regexp"
	"strconv"
	"strings"

	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/shared/errors"
)

// empty is the token wg emits for absent values.
const empty = "(none)"

const (
	localFieldCount  = 5
	remoteFieldCount = 9
)

// IPv6 link-local endpoints carry a zone identifier ([fe80::1%eth0]:port)
// which is not a valid standalone address literal. Rewrite it to
// [fe80::1]:port before parsing.
var zoneRe = regexp.MustCompile(`^\[([A-Fa-f0-9:]+)%(.*)\]:([0-9]+)$`)

// ParseDump converts the tab-separated output of `wg show <iface> dump` into
// a Model. The caller must have injected the interface name as the leading
// column when the command was invoked for a single interface; column 0 is
// always the interface name here.
func ParseDump(text string) (*Model, error) {
	m := NewModel()

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := splitFields(line)

		var (
			ep  Endpoint
			err error
		)
		switch len(fields) {
		case localFieldCount:
			ep, err = parseLocal(fields, line)
		case remoteFieldCount:
			ep, err = parseRemote(fields, line)
		default:
			err = errors.NewParseError("record", line,
				"expected 5 (local) or 9 (remote) fields, got "+strconv.Itoa(len(fields)), nil)
		}
		if err != nil {
			return nil, err
		}

		m.Append(fields[0], ep)
	}

	return m, nil
}

// splitFields tab-splits a record, dropping empty fields so the arity check
// sees only populated columns.
func splitFields(line string) []string {
	fields := make([]string, 0, remoteFieldCount)
	for _, f := range strings.Split(line, "\t") {
		if f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

func parseLocal(fields []string, line string) (Endpoint, error) {
	port, err := strconv.ParseUint(fields[3], 10, 16)
	if err != nil {
		return nil, errors.NewParseError("listen_port", line, "not a 16-bit unsigned integer", err)
	}

	return LocalEndpoint{
		PublicKey:           fields[1],
		PrivateKey:          SecureString(fields[2]),
		ListenPort:          uint16(port),
		PersistentKeepalive: toBool(fields[4]),
	}, nil
}

func parseRemote(fields []string, line string) (Endpoint, error) {
	ep := RemoteEndpoint{
		PublicKey:           fields[1],
		AllowedIPs:          fields[4],
		PersistentKeepalive: toBool(fields[8]),
	}

	if fields[3] != empty {
		ip, port, err := parseEndpointAddr(fields[3])
		if err != nil {
			return nil, errors.NewParseError("endpoint", line, "malformed socket address", err)
		}
		ep.RemoteIP = ip
		ep.RemotePort = port
	}

	handshake, err := strconv.ParseUint(fields[5], 10, 64)
	if err != nil {
		return nil, errors.NewParseError("latest_handshake", line, "not an unsigned integer", err)
	}
	ep.LatestHandshake = handshake

	// Kernel order is rx then tx: field 6 is received, field 7 is sent.
	if ep.ReceivedBytes, err = parseCounter(fields[6]); err != nil {
		return nil, errors.NewParseError("received_bytes", line, "not an unsigned integer", err)
	}
	if ep.SentBytes, err = parseCounter(fields[7]); err != nil {
		return nil, errors.NewParseError("sent_bytes", line, "not an unsigned integer", err)
	}

	return ep, nil
}

// parseEndpointAddr splits an ip:port pair, tolerating IPv6 zone identifiers.
func parseEndpointAddr(s string) (string, uint16, error) {
	s = zoneRe.ReplaceAllString(s, "[$1]:$3")

	addr, err := netip.ParseAddrPort(s)
	if err != nil {
		return "", 0, err
	}
	return addr.Addr().String(), addr.Port(), nil
}

// parseCounter parses a 128-bit unsigned byte counter.
func parseCounter(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return nil, &strconv.NumError{Func: "ParseCounter", Num: s, Err: strconv.ErrSyntax}
	}
	return n, nil
}

// toBool interprets the keepalive column: the literal "off" means disabled,
// anything else means enabled.
func toBool(s string) bool {
	return s != "off"
}
