package workflow

import "flowcanvas/internal/domain"

// HasOperator reports whether an operator with the id exists
func (g *Graph) HasOperator(id string) bool {
	_, ok := g.operators[id]
	return ok
}

// HasLink reports whether a link joins the ordered port pair
func (g *Graph) HasLink(source, target domain.PortRef) bool {
	_, ok := g.linkBetween(source, target)
	return ok
}

// HasLinkWithID reports whether a link with the id exists
func (g *Graph) HasLinkWithID(id string) bool {
	_, ok := g.links[id]
	return ok
}

// GetOperator returns a copy of the operator
func (g *Graph) GetOperator(id string) (domain.Operator, bool) {
	op, ok := g.operators[id]
	if !ok {
		return domain.Operator{}, false
	}
	return op.Clone(), true
}

// GetLink returns the link with the id
func (g *Graph) GetLink(id string) (domain.Link, bool) {
	l, ok := g.links[id]
	if !ok {
		return domain.Link{}, false
	}
	return *l, true
}

// GetOperators returns copies of all operators in insertion order
func (g *Graph) GetOperators() []domain.Operator {
	ops := make([]domain.Operator, 0, len(g.operatorOrder))
	for _, id := range g.operatorOrder {
		ops = append(ops, g.operators[id].Clone())
	}
	return ops
}

// GetLinks returns all links in insertion order
func (g *Graph) GetLinks() []domain.Link {
	links := make([]domain.Link, 0, len(g.linkOrder))
	for _, id := range g.linkOrder {
		links = append(links, *g.links[id])
	}
	return links
}

// LinksOf returns the links attached to an operator
func (g *Graph) LinksOf(operatorID string) []domain.Link {
	var links []domain.Link
	for _, id := range g.linkOrder {
		if l := g.links[id]; l.References(operatorID) {
			links = append(links, *l)
		}
	}
	return links
}

// Fragment exports the graph contents
func (g *Graph) Fragment() *domain.WorkflowFragment {
	return &domain.WorkflowFragment{
		Operators: g.GetOperators(),
		Links:     g.GetLinks(),
	}
}
