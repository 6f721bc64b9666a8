package wgconfig

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/shared/errors"
)

func TestDecodeFriendly_Name(t *testing.T) {
	friendly, err := DecodeFriendly(TagFriendlyName, "OnePlus 6T")
	require.NoError(t, err)
	assert.Equal(t, FriendlyName("OnePlus 6T"), friendly)
}

func TestDecodeFriendly_NameEscapesQuotes(t *testing.T) {
	friendly, err := DecodeFriendly(TagFriendlyName, `the "big" one`)
	require.NoError(t, err)
	assert.Equal(t, FriendlyName(`the \"big\" one`), friendly,
		"quotes must be pre-escaped for embedding in a quoted label value")
}

func TestDecodeFriendly_JSON(t *testing.T) {
	friendly, err := DecodeFriendly(TagFriendlyJSON,
		`{"id":482217555,"username":"DrProxyMeCoordinator","auth_date":1614869789,"admin":false}`)
	require.NoError(t, err)

	obj, ok := friendly.(FriendlyJSON)
	require.True(t, ok)
	assert.Equal(t, json.Number("482217555"), obj["id"])
	assert.Equal(t, json.Number("1614869789"), obj["auth_date"])
	assert.Equal(t, "DrProxyMeCoordinator", obj["username"])
	assert.Equal(t, false, obj["admin"])
}

func TestDecodeFriendly_JSONNonScalarAccepted(t *testing.T) {
	// non-scalar values are accepted at parse time; the renderer emits a
	// placeholder for them instead of failing
	friendly, err := DecodeFriendly(TagFriendlyJSON, `{"nested":{"a":1},"list":[1,2]}`)
	require.NoError(t, err)

	obj := friendly.(FriendlyJSON)
	assert.Contains(t, obj, "nested")
	assert.Contains(t, obj, "list")
}

func TestDecodeFriendly_MalformedJSON(t *testing.T) {
	_, err := DecodeFriendly(TagFriendlyJSON, `{"id":`)
	require.Error(t, err)

	var annErr *errors.AnnotationError
	require.ErrorAs(t, err, &annErr)
	assert.Equal(t, TagFriendlyJSON, annErr.Tag)
}

func TestDecodeFriendly_UnsupportedTag(t *testing.T) {
	_, err := DecodeFriendly("friendly_color", "blue")
	require.Error(t, err)

	var annErr *errors.AnnotationError
	require.ErrorAs(t, err, &annErr)
	assert.Equal(t, "friendly_color", annErr.Tag)
	assert.Contains(t, annErr.Error(), "not a supported tag")
}
