// Package codec decodes stored oEmbed payloads into domain records and
// encodes collection output for the command line and HTTP surfaces.
package codec

import (
	"errors"
	"io"

	"wunderkammer/internal/domain"
)

// ErrMissingField is returned when a payload omits a required field
var ErrMissingField = errors.New("missing required field")

// Decoder turns raw payload bytes into a Record
type Decoder interface {
	Decode(data []byte) (*domain.Record, error)
	Format() string
}

// Exporter writes values (objects, summaries) to a stream
type Exporter interface {
	Export(v any, w io.Writer) error
	Format() string
}
