package syncer

import "flowcanvas/internal/domain"

// Placements holds the canvas point requested for operators about to be added
type Placements struct {
	points map[string]domain.Point
}

// NewPlacements creates an empty placement table
func NewPlacements() *Placements {
	return &Placements{points: make(map[string]domain.Point)}
}

// Set records where the operator should appear
func (p *Placements) Set(operatorID string, at domain.Point) {
	p.points[operatorID] = at
}

// Take returns and forgets the point for the operator
func (p *Placements) Take(operatorID string) (domain.Point, bool) {
	at, ok := p.points[operatorID]
	delete(p.points, operatorID)
	return at, ok
}

// Forget drops a pending placement
func (p *Placements) Forget(operatorID string) {
	delete(p.points, operatorID)
}
