// Package workflow holds the logical workflow graph: the canonical set of
// operators and links that is validated and serialized for execution.
//
// Graph knows nothing about the canvas. Every mutation either fails without
// touching the graph or completes and publishes its notifications before it
// returns. Cascades are published in dependency order: links attached to an
// operator are removed (and announced) before the operator itself, and a
// link replaced by a reconnect is announced as deleted before the new link
// is announced as added.
package workflow

import (
	"fmt"
	"slices"

	"flowcanvas/internal/domain"
	"flowcanvas/internal/event"
)

// PropertyChange is published when an operator's property bag is replaced
type PropertyChange struct {
	OperatorID string         `json:"operatorID"`
	Properties map[string]any `json:"operatorProperties"`
}

// Graph is the logical graph store. Operators and links share one id space.
type Graph struct {
	operators map[string]*domain.Operator
	links     map[string]*domain.Link

	// operator ids are never handed out twice, even after deletion
	retired map[string]struct{}

	// insertion order, for stable reads
	operatorOrder []string
	linkOrder     []string

	operatorAdded   event.Stream[domain.Operator]
	operatorDeleted event.Stream[domain.Operator]
	linkAdded       event.Stream[domain.Link]
	linkDeleted     event.Stream[domain.Link]
	propertyChanged event.Stream[PropertyChange]
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		operators: make(map[string]*domain.Operator),
		links:     make(map[string]*domain.Link),
		retired:   make(map[string]struct{}),
	}
}

// OperatorAdded streams every operator added to the graph
func (g *Graph) OperatorAdded() event.Source[domain.Operator] { return &g.operatorAdded }

// OperatorDeleted streams every operator removed from the graph
func (g *Graph) OperatorDeleted() event.Source[domain.Operator] { return &g.operatorDeleted }

// LinkAdded streams every link added to the graph
func (g *Graph) LinkAdded() event.Source[domain.Link] { return &g.linkAdded }

// LinkDeleted streams every link removed from the graph, including cascades
func (g *Graph) LinkDeleted() event.Source[domain.Link] { return &g.linkDeleted }

// OperatorPropertyChanged streams property bag replacements
func (g *Graph) OperatorPropertyChanged() event.Source[PropertyChange] { return &g.propertyChanged }

// AddOperator inserts a new operator
func (g *Graph) AddOperator(op domain.Operator) error {
	if op.OperatorID == "" {
		return fmt.Errorf("add operator: %w", domain.ErrMissingIdentifier)
	}
	if _, exists := g.operators[op.OperatorID]; exists {
		return fmt.Errorf("add operator %s: %w", op.OperatorID, domain.ErrDuplicateIdentifier)
	}
	if _, used := g.retired[op.OperatorID]; used {
		return fmt.Errorf("add operator %s: id was used by a deleted operator: %w", op.OperatorID, domain.ErrDuplicateIdentifier)
	}
	if _, taken := g.links[op.OperatorID]; taken {
		return fmt.Errorf("add operator %s: id names a link: %w", op.OperatorID, domain.ErrDuplicateIdentifier)
	}

	stored := op.Clone()
	g.operators[op.OperatorID] = &stored
	g.operatorOrder = append(g.operatorOrder, op.OperatorID)

	g.operatorAdded.Publish(stored.Clone())
	return nil
}

// DeleteOperator removes an operator together with every link attached to it.
// One link-deleted notification is published per removed link, then the
// operator-deleted notification.
func (g *Graph) DeleteOperator(id string) (domain.Operator, error) {
	op, ok := g.operators[id]
	if !ok {
		return domain.Operator{}, fmt.Errorf("delete operator %s: %w", id, domain.ErrNotFound)
	}

	for _, l := range g.LinksOf(id) {
		// a subscriber may already have removed it
		if _, ok := g.links[l.LinkID]; ok {
			g.removeLink(l.LinkID)
		}
	}

	removed := *op
	delete(g.operators, id)
	g.retired[id] = struct{}{}
	g.operatorOrder = deleteID(g.operatorOrder, id)

	g.operatorDeleted.Publish(removed.Clone())
	return removed.Clone(), nil
}

// SetOperatorProperties replaces the property bag of an operator
func (g *Graph) SetOperatorProperties(id string, props map[string]any) error {
	op, ok := g.operators[id]
	if !ok {
		return fmt.Errorf("set properties of %s: %w", id, domain.ErrNotFound)
	}

	op.OperatorProperties = domain.CloneProperties(props)

	g.propertyChanged.Publish(PropertyChange{
		OperatorID: id,
		Properties: domain.CloneProperties(props),
	})
	return nil
}

// AddLink inserts a link. Both endpoints must resolve to an existing port:
// the source to an output port and the target to an input port. A link that
// already joins the same ordered port pair is removed first.
func (g *Graph) AddLink(link domain.Link) error {
	if err := g.validateLink(link); err != nil {
		return fmt.Errorf("add link %s: %w", link.LinkID, err)
	}
	if _, exists := g.links[link.LinkID]; exists {
		return fmt.Errorf("add link %s: %w", link.LinkID, domain.ErrDuplicateIdentifier)
	}
	if _, taken := g.operators[link.LinkID]; taken {
		return fmt.Errorf("add link %s: id names an operator: %w", link.LinkID, domain.ErrDuplicateIdentifier)
	}

	if existing, ok := g.linkBetween(link.Source, link.Target); ok {
		g.removeLink(existing.LinkID)
	}

	stored := link
	g.links[link.LinkID] = &stored
	g.linkOrder = append(g.linkOrder, link.LinkID)

	g.linkAdded.Publish(stored)
	return nil
}

// DeleteLink removes a link. Deleting an id that is not present fails with ErrNotFound.
func (g *Graph) DeleteLink(id string) (domain.Link, error) {
	if _, ok := g.links[id]; !ok {
		return domain.Link{}, fmt.Errorf("delete link %s: %w", id, domain.ErrNotFound)
	}
	return g.removeLink(id), nil
}

func (g *Graph) removeLink(id string) domain.Link {
	removed := *g.links[id]
	delete(g.links, id)
	g.linkOrder = deleteID(g.linkOrder, id)

	g.linkDeleted.Publish(removed)
	return removed
}

func (g *Graph) validateLink(link domain.Link) error {
	if link.LinkID == "" {
		return domain.ErrMissingIdentifier
	}

	source, ok := g.operators[link.Source.OperatorID]
	if !ok {
		return fmt.Errorf("source operator %q: %w", link.Source.OperatorID, domain.ErrInvalidEndpoint)
	}
	if !source.HasOutputPort(link.Source.PortID) {
		return fmt.Errorf("source port %s: %w", link.Source, domain.ErrInvalidEndpoint)
	}

	target, ok := g.operators[link.Target.OperatorID]
	if !ok {
		return fmt.Errorf("target operator %q: %w", link.Target.OperatorID, domain.ErrInvalidEndpoint)
	}
	if !target.HasInputPort(link.Target.PortID) {
		return fmt.Errorf("target port %s: %w", link.Target, domain.ErrInvalidEndpoint)
	}

	return nil
}

func (g *Graph) linkBetween(source, target domain.PortRef) (domain.Link, bool) {
	for _, id := range g.linkOrder {
		if l := g.links[id]; l.Connects(source, target) {
			return *l, true
		}
	}
	return domain.Link{}, false
}

func deleteID(ids []string, id string) []string {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}
