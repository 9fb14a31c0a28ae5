package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"wunderkammer/internal/domain"
)

// requiredFields must be present and non-null in every payload
var requiredFields = []string{
	"version",
	"type",
	"provider_name",
	"title",
	"url",
	"height",
	"width",
}

// JSONCodec handles oEmbed JSON payloads
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Decode parses an oEmbed payload. A payload lacking any required field
// fails with ErrMissingField rather than yielding zero values.
func (c *JSONCodec) Decode(data []byte) (*domain.Record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse oEmbed: %w", err)
	}

	for _, name := range requiredFields {
		raw, ok := fields[name]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, fmt.Errorf("failed to parse oEmbed: %w: %s", ErrMissingField, name)
		}
	}

	var record domain.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse oEmbed: %w", err)
	}

	return &record, nil
}

// Export encodes v as indented JSON
func (c *JSONCodec) Export(v any, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
