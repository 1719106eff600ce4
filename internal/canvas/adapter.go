package canvas

import (
	"fmt"
	"log/slog"

	"flowcanvas/internal/domain"
	"flowcanvas/internal/event"
)

// Adapter wraps a Surface, normalizing its native events and translating
// logical mutations into surface operations
type Adapter struct {
	surface Surface
	logger  *slog.Logger

	// link id -> attached at both ends at some point
	everComplete map[string]bool

	elementAdded   event.Stream[ElementCell]
	elementDeleted event.Stream[ElementCell]
	linkAdded      event.Stream[LinkCell]
	linkDeleted    event.Stream[LinkCell]
	linkChanged    event.Stream[LinkCell]

	unsubscribe func()
}

// NewAdapter creates an adapter and starts listening to the surface
func NewAdapter(surface Surface, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Adapter{
		surface:      surface,
		logger:       logger.With("component", "canvas"),
		everComplete: make(map[string]bool),
	}
	a.unsubscribe = surface.OnEvent(a.handleNative)
	return a
}

// Close stops listening to the surface
func (a *Adapter) Close() {
	a.unsubscribe()
}

// ElementAdded streams elements placed on the surface
func (a *Adapter) ElementAdded() event.Source[ElementCell] { return &a.elementAdded }

// ElementDeleted streams elements removed from the surface
func (a *Adapter) ElementDeleted() event.Source[ElementCell] { return &a.elementDeleted }

// LinkAdded streams links created on the surface, complete or not
func (a *Adapter) LinkAdded() event.Source[LinkCell] { return &a.linkAdded }

// LinkDeleted streams links removed from the surface with their last known endpoints
func (a *Adapter) LinkDeleted() event.Source[LinkCell] { return &a.linkDeleted }

// LinkChanged streams endpoint changes, including attaching and detaching
func (a *Adapter) LinkChanged() event.Source[LinkCell] { return &a.linkChanged }

// AddElement places an element for the operator at the given point
func (a *Adapter) AddElement(op domain.Operator, at domain.Point) error {
	if err := a.surface.AddElement(op.OperatorID, op.OperatorType, at); err != nil {
		return fmt.Errorf("add element %s: %w", op.OperatorID, err)
	}
	return nil
}

// AddLink draws a link between the two ports of a logical link
func (a *Adapter) AddLink(link domain.Link) error {
	if err := a.surface.AddLink(link.LinkID, AtPortRef(link.Source), AtPortRef(link.Target)); err != nil {
		return fmt.Errorf("add visual link %s: %w", link.LinkID, err)
	}
	return nil
}

// RemoveCell removes an element or link. Removing an absent cell is a no-op.
func (a *Adapter) RemoveCell(id string) bool {
	removed := a.surface.RemoveCell(id)
	if !removed {
		a.logger.Debug("cell already gone", "cell_id", id)
	}
	return removed
}

// HasCell reports whether the surface holds a cell with the id
func (a *Adapter) HasCell(id string) bool {
	_, ok := a.surface.Cell(id)
	return ok
}

// Element returns a snapshot of an element
func (a *Adapter) Element(id string) (ElementCell, bool) {
	c, ok := a.surface.Cell(id)
	if !ok {
		return ElementCell{}, false
	}
	e, ok := c.(NativeElement)
	if !ok {
		return ElementCell{}, false
	}
	return elementSnapshot(e), true
}

// Link returns a snapshot of a link
func (a *Adapter) Link(id string) (LinkCell, bool) {
	c, ok := a.surface.Cell(id)
	if !ok {
		return LinkCell{}, false
	}
	l, ok := c.(NativeLink)
	if !ok {
		return LinkCell{}, false
	}
	return a.trackLink(l), true
}

// Elements returns snapshots of all elements
func (a *Adapter) Elements() []ElementCell {
	var out []ElementCell
	for _, c := range a.surface.Cells() {
		if e, ok := c.(NativeElement); ok {
			out = append(out, elementSnapshot(e))
		}
	}
	return out
}

// Links returns snapshots of all links
func (a *Adapter) Links() []LinkCell {
	var out []LinkCell
	for _, c := range a.surface.Cells() {
		if l, ok := c.(NativeLink); ok {
			out = append(out, a.trackLink(l))
		}
	}
	return out
}

func (a *Adapter) handleNative(ev NativeEvent) {
	switch cell := ev.Cell.(type) {
	case NativeLink:
		a.handleLink(ev.Name, cell)
	case NativeElement:
		a.handleElement(ev.Name, cell)
	default:
		a.logger.Debug("ignoring event for unknown cell", "event", ev.Name)
	}
}

func (a *Adapter) handleElement(name string, e NativeElement) {
	switch name {
	case EventAdd:
		a.elementAdded.Publish(elementSnapshot(e))
	case EventRemove:
		a.elementDeleted.Publish(elementSnapshot(e))
	}
}

func (a *Adapter) handleLink(name string, l NativeLink) {
	switch name {
	case EventAdd:
		a.linkAdded.Publish(a.trackLink(l))
	case EventChangeSource, EventChangeTarget:
		a.linkChanged.Publish(a.trackLink(l))
	case EventRemove:
		cell := a.trackLink(l)
		delete(a.everComplete, cell.ID)
		a.linkDeleted.Publish(cell)
	default:
		a.logger.Debug("ignoring link event", "event", name, "link_id", l.ID())
	}
}

// trackLink snapshots a link and folds its current completeness into its history
func (a *Adapter) trackLink(l NativeLink) LinkCell {
	cell := linkSnapshot(l)
	if Classify(cell) == Complete {
		a.everComplete[cell.ID] = true
	}
	cell.EverComplete = a.everComplete[cell.ID]
	return cell
}
