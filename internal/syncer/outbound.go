package syncer

import (
	"log/slog"

	"flowcanvas/internal/domain"
	"flowcanvas/internal/metrics"
)

// VisualWriter is the mutation side of the canvas adapter
type VisualWriter interface {
	AddElement(op domain.Operator, at domain.Point) error
	AddLink(link domain.Link) error
	RemoveCell(id string) bool
}

// Outbound mirrors logical notifications onto the canvas
type Outbound struct {
	visual     VisualWriter
	gate       *gate
	placements *Placements
	logger     *slog.Logger
}

// OperatorAdded places an element for the operator at its requested point,
// or at the origin when none was requested
func (o *Outbound) OperatorAdded(op domain.Operator) error {
	at, _ := o.placements.Take(op.OperatorID)
	if o.suppressed("operator_added", op.OperatorID) {
		return nil
	}
	defer o.gate.enter(outbound, op.OperatorID)()

	err := o.visual.AddElement(op, at)
	o.done("operator_added", op.OperatorID, err)
	return err
}

// LinkAdded draws the link between its two ports
func (o *Outbound) LinkAdded(link domain.Link) error {
	if o.suppressed("link_added", link.LinkID) {
		return nil
	}
	defer o.gate.enter(outbound, link.LinkID)()

	err := o.visual.AddLink(link)
	o.done("link_added", link.LinkID, err)
	return err
}

// OperatorDeleted removes the operator's element if it is still on the canvas
func (o *Outbound) OperatorDeleted(op domain.Operator) {
	o.placements.Forget(op.OperatorID)
	o.remove("operator_deleted", op.OperatorID)
}

// LinkDeleted removes the visual link if it is still on the canvas
func (o *Outbound) LinkDeleted(link domain.Link) {
	o.remove("link_deleted", link.LinkID)
}

func (o *Outbound) remove(event, id string) {
	if o.suppressed(event, id) {
		return
	}
	defer o.gate.enter(outbound, id)()

	if !o.visual.RemoveCell(id) {
		metrics.SyncPropagations.WithLabelValues(metrics.DirectionOutbound, event, metrics.ResultSkipped).Inc()
		o.logger.Debug("cell already removed from canvas", "event", event, "cell_id", id)
		return
	}
	o.done(event, id, nil)
}

func (o *Outbound) suppressed(event, id string) bool {
	if !o.gate.echo(outbound, id) {
		return false
	}
	metrics.SyncPropagations.WithLabelValues(metrics.DirectionOutbound, event, metrics.ResultSuppressed).Inc()
	o.logger.Debug("suppressed echo of canvas change", "event", event, "id", id)
	return true
}

func (o *Outbound) done(event, id string, err error) {
	if err != nil {
		metrics.SyncPropagations.WithLabelValues(metrics.DirectionOutbound, event, metrics.ResultFailed).Inc()
		o.logger.Error("failed to mirror logical change onto canvas", "event", event, "id", id, "error", err)
		return
	}
	metrics.SyncPropagations.WithLabelValues(metrics.DirectionOutbound, event, metrics.ResultApplied).Inc()
	o.logger.Debug("mirrored logical change onto canvas", "event", event, "id", id)
}
