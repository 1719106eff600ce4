// Package codec reads and writes workflow fragments in JSON and YAML.
package codec

import (
	"fmt"
	"io"

	"flowcanvas/internal/domain"
)

// Importer parses a workflow fragment
type Importer interface {
	Parse(r io.Reader) (*domain.WorkflowFragment, error)
	Format() string
}

// Exporter writes a workflow fragment
type Exporter interface {
	Export(fragment *domain.WorkflowFragment, w io.Writer) error
	Format() string
}

// Codec both parses and writes one format
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec for "json" or "yaml"/"yml"
func ForFormat(format string) (Codec, error) {
	switch format {
	case "json", "":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
