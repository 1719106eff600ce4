package canvas

import (
	"fmt"

	"flowcanvas/internal/domain"
)

// Role names one end of a link
type Role string

const (
	RoleSource Role = "source"
	RoleTarget Role = "target"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleSource || r == RoleTarget
}

// Endpoint is one end of a visual link: attached to a port, or resting on a free point
type Endpoint struct {
	Port  *domain.PortRef `json:"port,omitempty"`
	Point *domain.Point   `json:"point,omitempty"`
}

// AtPort returns an endpoint attached to a port
func AtPort(operatorID, portID string) Endpoint {
	return Endpoint{Port: &domain.PortRef{OperatorID: operatorID, PortID: portID}}
}

// AtPortRef returns an endpoint attached to the referenced port
func AtPortRef(ref domain.PortRef) Endpoint {
	return AtPort(ref.OperatorID, ref.PortID)
}

// AtPoint returns an unattached endpoint
func AtPoint(x, y float64) Endpoint {
	return Endpoint{Point: &domain.Point{X: x, Y: y}}
}

// Attached reports whether the endpoint references a port
func (e Endpoint) Attached() bool {
	return e.Port != nil && e.Port.OperatorID != "" && e.Port.PortID != ""
}

// Clone returns a copy that shares no pointers with e
func (e Endpoint) Clone() Endpoint {
	var c Endpoint
	if e.Port != nil {
		p := *e.Port
		c.Port = &p
	}
	if e.Point != nil {
		p := *e.Point
		c.Point = &p
	}
	return c
}

func (e Endpoint) String() string {
	switch {
	case e.Attached():
		return e.Port.String()
	case e.Point != nil:
		return fmt.Sprintf("(%g,%g)", e.Point.X, e.Point.Y)
	default:
		return "(none)"
	}
}
