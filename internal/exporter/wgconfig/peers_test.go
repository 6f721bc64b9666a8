package wgconfig

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/shared/errors"
)

const configText = `
ListenPort = 51820
PrivateKey = my_super_secret_private_key
# PreUp = iptables -t nat -A POSTROUTING -s 10.70.0.0/24  -o enp7s0 -j MASQUERADE
# PostDown = iptables -t nat -D POSTROUTING -s 10.70.0.0/24  -o enp7s0 -j MASQUERADE

[Peer]
# This is a comment
# friendly_name=OnePlus 6T
# This is a comment
PublicKey = 2S7mA0vEMethCNQrJpJKE81/JmhgtB+tHHLYQhgM6kk=
AllowedIPs = 10.70.0.2/32           # this is a comment in AllowedIPs line

[Peer]
# friendly_name=varch.local (laptop)
PublicKey = qnoxQoQI8KKMupLnSSureORV0wMmH7JryZNsmGVISzU=
AllowedIPs = 10.70.0.3/32

[Peer]
# frcognoarch
PublicKey = MdVOIPKt9K2MPj/sO2NlWQbOnFJ6L/qX80mmhQwsUlA=
AllowedIPs = 10.70.0.50/32

[Peer]
# This is a comment
#               friendly_name       =               frcognowin10
# This is something
PublicKey = lqYcojJMsIZXMUw1heAFbQHBoKjCEaeo7M1WXDh/KWc= # other comment
AllowedIPs = 10.70.0.40/32

[Peer]
#friendly_name = OnePlus 5T
PublicKey = 928vO9Lf4+Mo84cWu4k1oRyzf0AR7FTGoPKHGoTMSHk=
AllowedIPs = 10.70.0.80/32
`

func TestParsePeers(t *testing.T) {
	peers, err := ParsePeers(configText)
	require.NoError(t, err)
	require.Len(t, peers, 5)

	entry := peers["2S7mA0vEMethCNQrJpJKE81/JmhgtB+tHHLYQhgM6kk="]
	assert.Equal(t, "10.70.0.2/32", entry.AllowedIPs, "trailing comment must be stripped")
	assert.Equal(t, FriendlyName("OnePlus 6T"), entry.Friendly)

	entry = peers["qnoxQoQI8KKMupLnSSureORV0wMmH7JryZNsmGVISzU="]
	assert.Equal(t, FriendlyName("varch.local (laptop)"), entry.Friendly)

	// plain human comment: valid entry, no friendly description
	entry = peers["MdVOIPKt9K2MPj/sO2NlWQbOnFJ6L/qX80mmhQwsUlA="]
	assert.Nil(t, entry.Friendly)

	// heavily padded tag line, key line with trailing comment
	entry = peers["lqYcojJMsIZXMUw1heAFbQHBoKjCEaeo7M1WXDh/KWc="]
	assert.Equal(t, FriendlyName("frcognowin10"), entry.Friendly)

	// no space after the pound sign
	entry = peers["928vO9Lf4+Mo84cWu4k1oRyzf0AR7FTGoPKHGoTMSHk="]
	assert.Equal(t, FriendlyName("OnePlus 5T"), entry.Friendly)
}

func TestParsePeers_FriendlyJSON(t *testing.T) {
	text := `[Peer]
# friendly_json={"id":482217555,"username":"DrProxyMeCoordinator", "active": true}
PublicKey = L2UoJZN7RmEKsMmqaJgKG0m1S2Zs2wd2ptAf+kb3008=
AllowedIPs = 10.70.0.4/32
`

	peers, err := ParsePeers(text)
	require.NoError(t, err)

	friendly, ok := peers["L2UoJZN7RmEKsMmqaJgKG0m1S2Zs2wd2ptAf+kb3008="].Friendly.(FriendlyJSON)
	require.True(t, ok)

	assert.Equal(t, json.Number("482217555"), friendly["id"])
	assert.Equal(t, "DrProxyMeCoordinator", friendly["username"])
	assert.Equal(t, true, friendly["active"])
}

func TestParsePeers_MissingPublicKey(t *testing.T) {
	text := `[Peer]
# friendly_name = OnePlus 6T
PublicKey = 2S7mA0vEMethCNQrJpJKE81/JmhgtB+tHHLYQhgM6kk=
AllowedIPs = 10.70.0.2/32

[Peer]
# friendly_name = varch.local (laptop)
AllowedIPs = 10.70.0.3/32
`

	_, err := ParsePeers(text)
	require.Error(t, err)

	var blockErr *errors.ConfigBlockError
	require.ErrorAs(t, err, &blockErr)
	assert.Equal(t, "PublicKey", blockErr.Missing)
	assert.Equal(t, []string{
		"# friendly_name = varch.local (laptop)",
		"AllowedIPs = 10.70.0.3/32",
	}, blockErr.Lines, "the error must carry exactly the offending block's lines")
}

func TestParsePeers_MissingAllowedIPs(t *testing.T) {
	text := `[Peer]
# friendly_name=cantarch
PublicKey = L2UoJZN7RmEKsMmqaJgKG0m1S2Zs2wd2ptAf+kb3008=
`

	_, err := ParsePeers(text)
	require.Error(t, err)

	var blockErr *errors.ConfigBlockError
	require.ErrorAs(t, err, &blockErr)
	assert.Equal(t, "AllowedIPs", blockErr.Missing)
}

func TestParsePeers_LastTagWins(t *testing.T) {
	text := `[Peer]
# friendly_name = first
# friendly_name = second
PublicKey = pub=
AllowedIPs = 10.0.0.1/32
`

	peers, err := ParsePeers(text)
	require.NoError(t, err)
	assert.Equal(t, FriendlyName("second"), peers["pub="].Friendly)
}

func TestParsePeers_DuplicatePublicKeyLastWins(t *testing.T) {
	text := `[Peer]
# friendly_name = first
PublicKey = pub=
AllowedIPs = 10.0.0.1/32

[Peer]
# friendly_name = second
PublicKey = pub=
AllowedIPs = 10.0.0.2/32
`

	peers, err := ParsePeers(text)
	require.NoError(t, err)
	require.Len(t, peers, 1)
	assert.Equal(t, "10.0.0.2/32", peers["pub="].AllowedIPs)
	assert.Equal(t, FriendlyName("second"), peers["pub="].Friendly)
}

func TestParsePeers_IgnoresOtherSections(t *testing.T) {
	text := `[Interface]
PrivateKey = secret
ListenPort = 51820

[Peer]
PublicKey = pub=
AllowedIPs = 10.0.0.1/32

[SomethingElse]
PublicKey = should-not-appear=
AllowedIPs = 10.0.0.9/32
`

	peers, err := ParsePeers(text)
	require.NoError(t, err)
	require.Len(t, peers, 1)
	assert.Contains(t, peers, "pub=")
}

func TestParsePeers_Empty(t *testing.T) {
	peers, err := ParsePeers("")
	require.NoError(t, err)
	assert.Empty(t, peers)
}

func TestCommentKeyValue(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		key   string
		value string
		ok    bool
	}{
		{name: "plain comment", line: "# ignore", ok: false},
		{name: "spaces only", line: "#           soooo much space           ", ok: false},
		{name: "tricky spacing", line: "#           test               = This can be tricky           ", key: "test", value: "This can be tricky", ok: true},
		{name: "empty value", line: "#           nasty               =", key: "nasty", value: "", ok: true},
		{name: "empty value with trailing spaces", line: "#           nasty 2               =               ", key: "nasty 2", value: "", ok: true},
		{name: "no space after pound", line: "#friendly_name = OnePlus 5T", key: "friendly_name", value: "OnePlus 5T", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, value, ok := commentKeyValue(tt.line)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.key, key)
				assert.Equal(t, tt.value, value)
			}
		})
	}
}
