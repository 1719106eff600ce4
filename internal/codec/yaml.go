package codec

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"flowcanvas/internal/domain"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlFragment is the hand-editable layout: links name operator:port pairs
type yamlFragment struct {
	Operators []domain.Operator       `yaml:"operators"`
	Links     []yamlLink              `yaml:"links"`
	Positions map[string]domain.Point `yaml:"positions,omitempty"`
}

type yamlLink struct {
	ID   string `yaml:"id"`
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Parse imports a fragment from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.WorkflowFragment, error) {
	var yf yamlFragment
	if err := yaml.NewDecoder(r).Decode(&yf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	fragment := domain.NewWorkflowFragment()
	for _, op := range yf.Operators {
		fragment.AddOperator(op)
	}
	for _, yl := range yf.Links {
		source, err := parsePortRef(yl.From)
		if err != nil {
			return nil, fmt.Errorf("link %s: %w", yl.ID, err)
		}
		target, err := parsePortRef(yl.To)
		if err != nil {
			return nil, fmt.Errorf("link %s: %w", yl.ID, err)
		}
		fragment.AddLink(domain.NewLink(yl.ID, source, target))
	}
	for id, p := range yf.Positions {
		fragment.SetPosition(id, p)
	}
	normalize(fragment)
	return fragment, nil
}

// Export writes a fragment as YAML
func (c *YAMLCodec) Export(fragment *domain.WorkflowFragment, w io.Writer) error {
	yf := yamlFragment{
		Operators: fragment.Operators,
		Links:     make([]yamlLink, 0, len(fragment.Links)),
		Positions: fragment.Positions,
	}
	for _, l := range fragment.Links {
		yf.Links = append(yf.Links, yamlLink{ID: l.LinkID, From: l.Source.String(), To: l.Target.String()})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yf); err != nil {
		return fmt.Errorf("failed to write YAML: %w", err)
	}
	return enc.Close()
}

// parsePortRef reads "operator:port"; the operator id may itself contain colons
func parsePortRef(s string) (domain.PortRef, error) {
	i := strings.LastIndexByte(s, ':')
	if i <= 0 || i == len(s)-1 {
		return domain.PortRef{}, fmt.Errorf("%w: %q is not operator:port", domain.ErrInvalidEndpoint, s)
	}
	return domain.PortRef{OperatorID: s[:i], PortID: s[i+1:]}, nil
}
