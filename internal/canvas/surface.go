package canvas

import "flowcanvas/internal/domain"

// Native event names raised by a Surface
const (
	EventAdd            = "add"
	EventRemove         = "remove"
	EventChangeSource   = "change:source"
	EventChangeTarget   = "change:target"
	EventChangePosition = "change:position"
)

// Cell is anything the surface holds
type Cell interface {
	ID() string
}

// NativeElement is a surface cell standing for an operator
type NativeElement interface {
	Cell
	OperatorType() string
	Position() domain.Point
}

// NativeLink is a surface cell connecting two endpoints
type NativeLink interface {
	Cell
	Endpoint(role Role) Endpoint
}

// NativeEvent is a change notification in the surface's own shape.
// Cell is a NativeElement or a NativeLink, read at the time of the event.
type NativeEvent struct {
	Name string
	Cell Cell
}

// Surface is the diagramming surface wrapped by Adapter
type Surface interface {
	AddElement(id, operatorType string, at domain.Point) error
	AddLink(id string, source, target Endpoint) error
	SetLinkEndpoint(id string, role Role, endpoint Endpoint) error
	// RemoveCell removes a cell, and for an element every link attached to it.
	// It reports whether the cell was present.
	RemoveCell(id string) bool
	Cell(id string) (Cell, bool)
	Cells() []Cell
	OnEvent(fn func(NativeEvent)) (unsubscribe func())
}
