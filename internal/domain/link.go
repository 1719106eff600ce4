package domain

import "fmt"

// PortRef addresses one port of one operator
type PortRef struct {
	OperatorID string `json:"operatorID" yaml:"operator_id"`
	PortID     string `json:"portID" yaml:"port_id"`
}

func (p PortRef) String() string {
	return fmt.Sprintf("%s:%s", p.OperatorID, p.PortID)
}

// Link is a directed connection from an output port to an input port
type Link struct {
	LinkID string  `json:"linkID" yaml:"link_id"`
	Source PortRef `json:"source" yaml:"source"`
	Target PortRef `json:"target" yaml:"target"`
}

// NewLink creates a link between two ports
func NewLink(id string, source, target PortRef) Link {
	return Link{LinkID: id, Source: source, Target: target}
}

// References reports whether either endpoint of the link is on the operator
func (l Link) References(operatorID string) bool {
	return l.Source.OperatorID == operatorID || l.Target.OperatorID == operatorID
}

// Connects reports whether the link joins exactly this ordered port pair
func (l Link) Connects(source, target PortRef) bool {
	return l.Source == source && l.Target == target
}
