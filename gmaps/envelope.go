package gmaps

import (
	"encoding/json"
	"fmt"
	"strings"
)

// envelopePrefix guards Google's JSON responses against script inclusion.
const envelopePrefix = ")]}'\n"

// ParseResponse strips the anti-hijacking prefix and decodes the JSON body into
// a tree of []any, map[string]any, string, float64, bool and nil values.
func ParseResponse(text string) (any, error) {
	body, ok := strings.CutPrefix(text, envelopePrefix)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrMalformedEnvelope, envelopePrefix)
	}

	var out any
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}

	return out, nil
}
