package wgconfig

import (
	"encoding/json"
	"strings"

	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/shared/errors"
)

// Annotation tags recognized inside [Peer] comment lines.
const (
	TagFriendlyName = "friendly_name"
	TagFriendlyJSON = "friendly_json"
)

// FriendlyDescription is a closed variant type: operator-supplied metadata is
// either a plain name or a flat JSON object.
type FriendlyDescription interface {
	sealedFriendly()
}

// FriendlyName is a human-readable peer name. Embedded double quotes are
// already escaped so the value can be dropped into a quoted label verbatim.
type FriendlyName string

func (FriendlyName) sealedFriendly() {}

// FriendlyJSON is a JSON object of scalars. Numbers are kept as json.Number
// so they render exactly as written; non-scalar values are kept as-is and
// rendered as a placeholder later rather than rejected here.
type FriendlyJSON map[string]any

func (FriendlyJSON) sealedFriendly() {}

// DecodeFriendly interprets one comment-encoded tag into a typed description.
func DecodeFriendly(tag, value string) (FriendlyDescription, error) {
	switch tag {
	case TagFriendlyName:
		return FriendlyName(strings.ReplaceAll(value, `"`, `\"`)), nil

	case TagFriendlyJSON:
		dec := json.NewDecoder(strings.NewReader(value))
		dec.UseNumber()

		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			return nil, errors.NewAnnotationError(tag, "malformed JSON value", err)
		}
		return FriendlyJSON(obj), nil

	default:
		return nil, errors.NewAnnotationError(tag, "not a supported tag", nil)
	}
}
