package canvas

import "flowcanvas/internal/domain"

// Completeness classifies a visual link
type Completeness int

const (
	// Incomplete links have at least one end on a free point
	Incomplete Completeness = iota
	// Complete links have both ends attached to a port
	Complete
)

func (c Completeness) String() string {
	if c == Complete {
		return "complete"
	}
	return "incomplete"
}

// ElementCell is a normalized snapshot of an element
type ElementCell struct {
	ID           string       `json:"id"`
	OperatorType string       `json:"operatorType"`
	Position     domain.Point `json:"position"`
}

// LinkCell is a normalized snapshot of a link
type LinkCell struct {
	ID     string   `json:"id"`
	Source Endpoint `json:"source"`
	Target Endpoint `json:"target"`
	// EverComplete is set once the link has been attached at both ends at any
	// point of its life, up to and including this snapshot.
	EverComplete bool `json:"everComplete"`
}

// Classify reports whether both ends of the link are attached to a port
func Classify(l LinkCell) Completeness {
	if l.Source.Attached() && l.Target.Attached() {
		return Complete
	}
	return Incomplete
}

// Link converts a complete visual link to a logical link.
// It returns false for incomplete links.
func (l LinkCell) Link() (domain.Link, bool) {
	if Classify(l) != Complete {
		return domain.Link{}, false
	}
	return domain.NewLink(l.ID, *l.Source.Port, *l.Target.Port), true
}

func elementSnapshot(e NativeElement) ElementCell {
	return ElementCell{
		ID:           e.ID(),
		OperatorType: e.OperatorType(),
		Position:     e.Position(),
	}
}

func linkSnapshot(l NativeLink) LinkCell {
	return LinkCell{
		ID:     l.ID(),
		Source: l.Endpoint(RoleSource).Clone(),
		Target: l.Endpoint(RoleTarget).Clone(),
	}
}
