package catalog

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk catalog layout
type File struct {
	Operators []OperatorSchema `yaml:"operators"`
}

// LoadYAML decodes and validates a catalog document
func LoadYAML(r io.Reader) ([]OperatorSchema, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for _, s := range f.Operators {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Operators, nil
}

// LoadYAMLFile reads a catalog from path
func LoadYAMLFile(path string) ([]OperatorSchema, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer fh.Close()
	return LoadYAML(fh)
}

// WriteYAML encodes schemas in the on-disk layout
func WriteYAML(w io.Writer, schemas []OperatorSchema) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(File{Operators: schemas}); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return enc.Close()
}
