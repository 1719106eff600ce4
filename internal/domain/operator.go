package domain

import "slices"

// Operator is a logical processing node in a workflow
type Operator struct {
	OperatorID         string         `json:"operatorID" yaml:"operator_id"`
	OperatorType       string         `json:"operatorType" yaml:"operator_type"`
	OperatorProperties map[string]any `json:"operatorProperties" yaml:"operator_properties,omitempty"`
	InputPorts         []string       `json:"inputPorts" yaml:"input_ports,omitempty"`
	OutputPorts        []string       `json:"outputPorts" yaml:"output_ports,omitempty"`
}

// NewOperator creates an operator with an empty property bag
func NewOperator(id, operatorType string, inputPorts, outputPorts []string) Operator {
	return Operator{
		OperatorID:         id,
		OperatorType:       operatorType,
		OperatorProperties: make(map[string]any),
		InputPorts:         inputPorts,
		OutputPorts:        outputPorts,
	}
}

// HasInputPort reports whether portID is one of the operator's input ports
func (o *Operator) HasInputPort(portID string) bool {
	return slices.Contains(o.InputPorts, portID)
}

// HasOutputPort reports whether portID is one of the operator's output ports
func (o *Operator) HasOutputPort(portID string) bool {
	return slices.Contains(o.OutputPorts, portID)
}

// SetProperty sets a property value
func (o *Operator) SetProperty(key string, value any) {
	if o.OperatorProperties == nil {
		o.OperatorProperties = make(map[string]any)
	}
	o.OperatorProperties[key] = value
}

// Clone returns a copy that shares no maps or slices with o.
// Property values themselves are copied shallowly.
func (o Operator) Clone() Operator {
	c := o
	c.OperatorProperties = CloneProperties(o.OperatorProperties)
	c.InputPorts = slices.Clone(o.InputPorts)
	c.OutputPorts = slices.Clone(o.OutputPorts)
	return c
}

// CloneProperties copies a property bag, returning an empty map for nil
func CloneProperties(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
