package canvas

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"flowcanvas/internal/domain"
	"flowcanvas/internal/event"
)

type memElement struct {
	id           string
	operatorType string
	position     domain.Point
}

func (e *memElement) ID() string             { return e.id }
func (e *memElement) OperatorType() string   { return e.operatorType }
func (e *memElement) Position() domain.Point { return e.position }

type memLink struct {
	id     string
	source Endpoint
	target Endpoint
}

func (l *memLink) ID() string { return l.id }

func (l *memLink) Endpoint(role Role) Endpoint {
	if role == RoleSource {
		return l.source.Clone()
	}
	return l.target.Clone()
}

// MemorySurface is an in-process Surface. It is not safe for concurrent use.
type MemorySurface struct {
	elements map[string]*memElement
	links    map[string]*memLink
	order    []string
	events   event.Stream[NativeEvent]
	newID    func() string
}

// NewMemorySurface creates an empty surface. Links drawn by the user get
// link-<uuid> ids.
func NewMemorySurface() *MemorySurface {
	return &MemorySurface{
		elements: make(map[string]*memElement),
		links:    make(map[string]*memLink),
		newID:    func() string { return "link-" + uuid.NewString() },
	}
}

// OnEvent registers a listener for native events
func (s *MemorySurface) OnEvent(fn func(NativeEvent)) func() {
	return s.events.Subscribe(fn)
}

// AddElement places an element
func (s *MemorySurface) AddElement(id, operatorType string, at domain.Point) error {
	if s.exists(id) {
		return fmt.Errorf("cell %s already on surface", id)
	}
	e := &memElement{id: id, operatorType: operatorType, position: at}
	s.elements[id] = e
	s.order = append(s.order, id)

	s.emit(EventAdd, e)
	return nil
}

// AddLink draws a link
func (s *MemorySurface) AddLink(id string, source, target Endpoint) error {
	if s.exists(id) {
		return fmt.Errorf("cell %s already on surface", id)
	}
	if err := s.checkEndpoint(source); err != nil {
		return err
	}
	if err := s.checkEndpoint(target); err != nil {
		return err
	}
	l := &memLink{id: id, source: source.Clone(), target: target.Clone()}
	s.links[id] = l
	s.order = append(s.order, id)

	s.emit(EventAdd, l)
	return nil
}

// SetLinkEndpoint moves one end of a link
func (s *MemorySurface) SetLinkEndpoint(id string, role Role, endpoint Endpoint) error {
	l, ok := s.links[id]
	if !ok {
		return fmt.Errorf("link %s: %w", id, domain.ErrNotFound)
	}
	if !role.Valid() {
		return fmt.Errorf("unknown link role %q", role)
	}
	if err := s.checkEndpoint(endpoint); err != nil {
		return err
	}

	if role == RoleSource {
		l.source = endpoint.Clone()
		s.emit(EventChangeSource, l)
	} else {
		l.target = endpoint.Clone()
		s.emit(EventChangeTarget, l)
	}
	return nil
}

// MoveElement changes the position of an element
func (s *MemorySurface) MoveElement(id string, to domain.Point) error {
	e, ok := s.elements[id]
	if !ok {
		return fmt.Errorf("element %s: %w", id, domain.ErrNotFound)
	}
	e.position = to
	s.emit(EventChangePosition, e)
	return nil
}

// RemoveCell removes a cell. Links attached to a removed element are removed
// first, each raising its own remove event.
func (s *MemorySurface) RemoveCell(id string) bool {
	if l, ok := s.links[id]; ok {
		s.removeLink(l)
		return true
	}

	e, ok := s.elements[id]
	if !ok {
		return false
	}
	for _, cellID := range slices.Clone(s.order) {
		if l, ok := s.links[cellID]; ok && l.attachedTo(id) {
			s.removeLink(l)
		}
	}
	delete(s.elements, id)
	s.order = deleteCellID(s.order, id)

	s.emit(EventRemove, e)
	return true
}

// Cell returns a cell by id
func (s *MemorySurface) Cell(id string) (Cell, bool) {
	if e, ok := s.elements[id]; ok {
		return e, true
	}
	if l, ok := s.links[id]; ok {
		return l, true
	}
	return nil, false
}

// Cells returns every cell in insertion order
func (s *MemorySurface) Cells() []Cell {
	cells := make([]Cell, 0, len(s.order))
	for _, id := range s.order {
		c, _ := s.Cell(id)
		cells = append(cells, c)
	}
	return cells
}

// DrawLink is the user dragging a new link out of source and releasing it at target
func (s *MemorySurface) DrawLink(source, target Endpoint) (string, error) {
	id := s.newID()
	if err := s.AddLink(id, source, target); err != nil {
		return "", err
	}
	return id, nil
}

// DetachLinkEnd is the user pulling one end of a link off its port and dropping it on empty canvas
func (s *MemorySurface) DetachLinkEnd(id string, role Role, at domain.Point) error {
	return s.SetLinkEndpoint(id, role, AtPoint(at.X, at.Y))
}

// DeleteCell is the user deleting a cell
func (s *MemorySurface) DeleteCell(id string) error {
	if !s.RemoveCell(id) {
		return fmt.Errorf("cell %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *MemorySurface) removeLink(l *memLink) {
	delete(s.links, l.id)
	s.order = deleteCellID(s.order, l.id)
	s.emit(EventRemove, l)
}

func (s *MemorySurface) exists(id string) bool {
	_, ok := s.Cell(id)
	return ok
}

func (s *MemorySurface) checkEndpoint(e Endpoint) error {
	if !e.Attached() {
		if e.Point == nil {
			return fmt.Errorf("endpoint needs a port or a point")
		}
		return nil
	}
	if _, ok := s.elements[e.Port.OperatorID]; !ok {
		return fmt.Errorf("endpoint element %s: %w", e.Port.OperatorID, domain.ErrNotFound)
	}
	return nil
}

func (s *MemorySurface) emit(name string, c Cell) {
	s.events.Publish(NativeEvent{Name: name, Cell: c})
}

func (l *memLink) attachedTo(elementID string) bool {
	return (l.source.Attached() && l.source.Port.OperatorID == elementID) ||
		(l.target.Attached() && l.target.Port.OperatorID == elementID)
}

func deleteCellID(ids []string, id string) []string {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}
