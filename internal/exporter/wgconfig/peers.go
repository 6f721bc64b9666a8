package wgconfig

import (
	"strings"

	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/shared/errors"
)

const peerHeader = "[Peer]"

// Peer is one [Peer] block of a WireGuard configuration file. AllowedIPs is
// informational only; the live dump stays authoritative.
type Peer struct {
	PublicKey  string
	AllowedIPs string

	// Friendly is nil when the block carries no recognized annotation tag.
	Friendly FriendlyDescription
}

// PeerMap maps public keys to their config entries. A duplicate public key
// across blocks overwrites the earlier entry.
type PeerMap map[string]Peer

// ParsePeers scans configuration text for [Peer] blocks and builds the
// annotation map. A block missing PublicKey or AllowedIPs is a hard error:
// that is a configuration-authoring mistake, not a transient condition.
func ParsePeers(text string) (PeerMap, error) {
	peers := make(PeerMap)

	for _, block := range collectBlocks(text) {
		peer, err := parseBlock(block)
		if err != nil {
			return nil, err
		}
		peers[peer.PublicKey] = peer
	}

	return peers, nil
}

// collectBlocks gathers the non-blank lines of every [Peer] section. Any
// section header closes the current block; only an exact [Peer] header opens
// a new one.
func collectBlocks(text string) [][]string {
	var (
		blocks [][]string
		cur    []string
		open   bool
	)

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "[") {
			if open {
				blocks = append(blocks, cur)
				cur, open = nil, false
			}
			if line == peerHeader {
				cur, open = []string{}, true
			}
			continue
		}

		if open && strings.TrimSpace(line) != "" {
			cur = append(cur, line)
		}
	}

	if open {
		blocks = append(blocks, cur)
	}

	return blocks
}

func parseBlock(lines []string) (Peer, error) {
	var peer Peer

	for _, line := range lines {
		lower := strings.ToLower(line)

		switch {
		case strings.HasPrefix(lower, "publickey"):
			peer.PublicKey = valueAfterEquals(line)

		case strings.HasPrefix(lower, "allowedips"):
			peer.AllowedIPs = valueAfterEquals(line)

		case strings.HasPrefix(strings.TrimSpace(line), "#"):
			tag, value, ok := commentKeyValue(line)
			if !ok {
				continue
			}
			switch tag {
			case TagFriendlyName, TagFriendlyJSON:
				friendly, err := DecodeFriendly(tag, value)
				if err != nil {
					return Peer{}, err
				}
				// last recognized tag wins
				peer.Friendly = friendly
			}
			// a plain human comment is expected and harmless
		}
	}

	if peer.PublicKey == "" {
		return Peer{}, errors.NewConfigBlockError("PublicKey", lines)
	}
	if peer.AllowedIPs == "" {
		return Peer{}, errors.NewConfigBlockError("AllowedIPs", lines)
	}

	return peer, nil
}

// valueAfterEquals extracts the value of a `Key = value` line, dropping any
// trailing #-comment and surrounding whitespace.
func valueAfterEquals(line string) string {
	s := line
	if idx := strings.IndexByte(s, '='); idx >= 0 {
		s = s[idx+1:]
	}
	if idx := strings.IndexByte(s, '#'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// commentKeyValue interprets a comment line shaped like `# key = value`.
// Comments without an equals sign are not annotation tags.
func commentKeyValue(line string) (string, string, bool) {
	content := strings.TrimSpace(line)[1:]

	idx := strings.IndexByte(content, '=')
	if idx < 0 {
		return "", "", false
	}

	key := strings.TrimSpace(content[:idx])
	value := strings.TrimSpace(content[idx+1:])
	return key, value, true
}
