package catalog

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// OperatorSchema describes one operator type
type OperatorSchema struct {
	OperatorType      string `json:"operatorType" yaml:"operator_type" validate:"required,excludesall=/"`
	UserFriendlyName  string `json:"userFriendlyName" yaml:"user_friendly_name" validate:"required"`
	OperatorGroupName string `json:"operatorGroupName,omitempty" yaml:"operator_group_name,omitempty"`
	Description       string `json:"operatorDescription,omitempty" yaml:"description,omitempty"`
	NumInputPorts     int    `json:"numInputPorts" yaml:"num_input_ports" validate:"min=0,max=16"`
	NumOutputPorts    int    `json:"numOutputPorts" yaml:"num_output_ports" validate:"min=0,max=16"`
}

// ErrInvalidSchema is returned when a schema fails validation
var ErrInvalidSchema = errors.New("invalid operator schema")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a single schema
func (s OperatorSchema) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidSchema, s.OperatorType, err)
	}
	return nil
}

// InputPortIDs returns input-0 .. input-(n-1)
func (s OperatorSchema) InputPortIDs() []string {
	return portIDs("input", s.NumInputPorts)
}

// OutputPortIDs returns output-0 .. output-(n-1)
func (s OperatorSchema) OutputPortIDs() []string {
	return portIDs("output", s.NumOutputPorts)
}

func portIDs(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s-%d", prefix, i)
	}
	return ids
}
