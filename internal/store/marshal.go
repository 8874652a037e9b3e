package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/streamtrace/internal/ir"
)

// marshalSnapshot converts a unit snapshot to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON so equal units are stored byte-identically.
func marshalSnapshot(snapshot map[string]any) (string, error) {
	data, err := ir.MarshalCanonical(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(data), nil
}

// unmarshalSnapshot parses stored snapshot TEXT.
// Numbers are decoded as json.Number so call numbers and ranges survive
// without float conversion.
func unmarshalSnapshot(data string) (map[string]any, error) {
	if data == "" {
		return map[string]any{}, nil
	}
	var m map[string]any
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return m, nil
}
