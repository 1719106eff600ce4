package syncer

import (
	"log/slog"

	"flowcanvas/internal/canvas"
	"flowcanvas/internal/domain"
	"flowcanvas/internal/event"
	"flowcanvas/internal/metrics"
)

// LogicalGraph is what the engine needs from the logical graph store
type LogicalGraph interface {
	LogicalWriter
	OperatorAdded() event.Source[domain.Operator]
	OperatorDeleted() event.Source[domain.Operator]
	LinkAdded() event.Source[domain.Link]
	LinkDeleted() event.Source[domain.Link]
}

// VisualGraph is what the engine needs from the canvas adapter
type VisualGraph interface {
	VisualWriter
	ElementDeleted() event.Source[canvas.ElementCell]
	LinkAdded() event.Source[canvas.LinkCell]
	LinkDeleted() event.Source[canvas.LinkCell]
	LinkChanged() event.Source[canvas.LinkCell]
}

// Failure is a change that could not be propagated
type Failure struct {
	Direction string
	ID        string
	Err       error
}

// Engine subscribes both halves to their event sources
type Engine struct {
	inbound     *Inbound
	outbound    *Outbound
	failures    event.Stream[Failure]
	unsubscribe []func()
}

// New wires logical notifications to the outbound half and canvas events to
// the inbound half. Placements may be nil.
func New(graph LogicalGraph, visual VisualGraph, placements *Placements, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if placements == nil {
		placements = NewPlacements()
	}
	logger = logger.With("component", "syncer")
	g := newGate()

	e := &Engine{
		inbound:  &Inbound{logical: graph, gate: g, logger: logger.With("direction", "inbound")},
		outbound: &Outbound{visual: visual, gate: g, placements: placements, logger: logger.With("direction", "outbound")},
	}

	out := e.outbound
	in := e.inbound
	e.unsubscribe = []func(){
		graph.OperatorAdded().Subscribe(func(op domain.Operator) {
			e.report(metrics.DirectionOutbound, op.OperatorID, out.OperatorAdded(op))
		}),
		graph.LinkAdded().Subscribe(func(l domain.Link) {
			e.report(metrics.DirectionOutbound, l.LinkID, out.LinkAdded(l))
		}),
		graph.OperatorDeleted().Subscribe(out.OperatorDeleted),
		graph.LinkDeleted().Subscribe(out.LinkDeleted),

		visual.ElementDeleted().Subscribe(func(c canvas.ElementCell) {
			e.report(metrics.DirectionInbound, c.ID, in.ElementDeleted(c))
		}),
		visual.LinkAdded().Subscribe(func(c canvas.LinkCell) {
			e.report(metrics.DirectionInbound, c.ID, in.LinkAdded(c))
		}),
		visual.LinkDeleted().Subscribe(func(c canvas.LinkCell) {
			e.report(metrics.DirectionInbound, c.ID, in.LinkDeleted(c))
		}),
		visual.LinkChanged().Subscribe(func(c canvas.LinkCell) {
			e.report(metrics.DirectionInbound, c.ID, in.LinkChanged(c))
		}),
	}
	return e
}

func (e *Engine) report(direction, id string, err error) {
	if err != nil {
		e.failures.Publish(Failure{Direction: direction, ID: id, Err: err})
	}
}

// Failures streams propagation errors. Handlers have already logged them.
func (e *Engine) Failures() event.Source[Failure] { return &e.failures }

// Inbound returns the canvas-to-workflow half
func (e *Engine) Inbound() *Inbound { return e.inbound }

// Outbound returns the workflow-to-canvas half
func (e *Engine) Outbound() *Outbound { return e.outbound }

// Close removes every subscription
func (e *Engine) Close() {
	for _, unsubscribe := range e.unsubscribe {
		unsubscribe()
	}
	e.unsubscribe = nil
}
