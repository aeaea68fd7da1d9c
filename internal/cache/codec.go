package cache

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// ExpiryKey is the reserved key holding the store-wide expiry in epoch milliseconds.
const ExpiryKey = "__EXPIRY__"

const delimiter = ":"

// EncodeEntry renders one cache line: base64(key) ":" base64(value).
// value must already be valid JSON. Neither half can contain the delimiter
// or a newline, so keys and payloads may hold arbitrary bytes.
func EncodeEntry(key string, value json.RawMessage) string {
	return base64.StdEncoding.EncodeToString([]byte(key)) +
		delimiter +
		base64.StdEncoding.EncodeToString(value)
}

// DecodeEntry parses a line produced by EncodeEntry.
// Any malformed line yields an error wrapping ErrCorruptEntry.
func DecodeEntry(line string) (string, json.RawMessage, error) {
	rawKey, rawValue, ok := strings.Cut(line, delimiter)
	if !ok {
		return "", nil, fmt.Errorf("%w: missing delimiter", ErrCorruptEntry)
	}

	key, err := base64.StdEncoding.DecodeString(rawKey)
	if err != nil {
		return "", nil, fmt.Errorf("%w: key: %w", ErrCorruptEntry, err)
	}

	value, err := base64.StdEncoding.DecodeString(rawValue)
	if err != nil {
		return "", nil, fmt.Errorf("%w: value of %q: %w", ErrCorruptEntry, key, err)
	}
	if !json.Valid(value) {
		return "", nil, fmt.Errorf("%w: value of %q is not JSON", ErrCorruptEntry, key)
	}

	return string(key), json.RawMessage(value), nil
}
