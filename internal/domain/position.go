package domain

// Point is a coordinate on the canvas
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NewPoint creates a point
func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Offset returns the point translated by dx, dy
func (p Point) Offset(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}
