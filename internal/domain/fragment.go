package domain

// WorkflowFragment is a serializable set of operators and links used by import/export
type WorkflowFragment struct {
	Operators []Operator `json:"operators" yaml:"operators"`
	Links     []Link     `json:"links" yaml:"links"`
	// Canvas positions by operator id; operators without one are placed at the origin
	Positions map[string]Point `json:"positions,omitempty" yaml:"positions,omitempty"`
}

// NewWorkflowFragment creates an empty fragment
func NewWorkflowFragment() *WorkflowFragment {
	return &WorkflowFragment{
		Operators: make([]Operator, 0),
		Links:     make([]Link, 0),
		Positions: make(map[string]Point),
	}
}

// AddOperator adds an operator to the fragment
func (f *WorkflowFragment) AddOperator(op Operator) {
	f.Operators = append(f.Operators, op)
}

// AddLink adds a link to the fragment
func (f *WorkflowFragment) AddLink(link Link) {
	f.Links = append(f.Links, link)
}

// SetPosition records where an operator sits on the canvas
func (f *WorkflowFragment) SetPosition(operatorID string, at Point) {
	if f.Positions == nil {
		f.Positions = make(map[string]Point)
	}
	f.Positions[operatorID] = at
}
