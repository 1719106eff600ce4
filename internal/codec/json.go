package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"flowcanvas/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports a fragment from JSON
func (c *JSONCodec) Parse(r io.Reader) (*domain.WorkflowFragment, error) {
	fragment := domain.NewWorkflowFragment()
	if err := json.NewDecoder(r).Decode(fragment); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	normalize(fragment)
	return fragment, nil
}

// Export writes a fragment as indented JSON
func (c *JSONCodec) Export(fragment *domain.WorkflowFragment, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(fragment)
}

// normalize gives every operator a non-nil property bag
func normalize(f *domain.WorkflowFragment) {
	for i := range f.Operators {
		if f.Operators[i].OperatorProperties == nil {
			f.Operators[i].OperatorProperties = make(map[string]any)
		}
	}
}
