package syncer

import (
	"fmt"
	"log/slog"

	"flowcanvas/internal/canvas"
	"flowcanvas/internal/domain"
	"flowcanvas/internal/metrics"
)

// LogicalWriter is the part of the logical graph the inbound half may touch
type LogicalWriter interface {
	HasOperator(id string) bool
	HasLinkWithID(id string) bool
	DeleteOperator(id string) (domain.Operator, error)
	AddLink(link domain.Link) error
	DeleteLink(id string) (domain.Link, error)
}

// Inbound turns canvas events into logical mutations
type Inbound struct {
	logical LogicalWriter
	gate    *gate
	logger  *slog.Logger
}

// ElementDeleted deletes the logical operator behind a removed element
func (in *Inbound) ElementDeleted(cell canvas.ElementCell) error {
	const event = "element_deleted"
	if in.suppressed(event, cell.ID) {
		return nil
	}
	if !in.logical.HasOperator(cell.ID) {
		in.skip(event, cell.ID, "operator already deleted")
		return nil
	}
	defer in.gate.enter(inbound, cell.ID)()

	_, err := in.logical.DeleteOperator(cell.ID)
	return in.done(event, cell.ID, err)
}

// LinkAdded adds a logical link for a complete visual link
func (in *Inbound) LinkAdded(cell canvas.LinkCell) error {
	const event = "link_added"
	if in.suppressed(event, cell.ID) {
		return nil
	}
	link, ok := cell.Link()
	if !ok {
		in.skip(event, cell.ID, "link is incomplete")
		return nil
	}
	defer in.gate.enter(inbound, cell.ID)()

	return in.done(event, cell.ID, in.logical.AddLink(link))
}

// LinkDeleted deletes the logical link behind a removed visual link
func (in *Inbound) LinkDeleted(cell canvas.LinkCell) error {
	const event = "link_deleted"
	if in.suppressed(event, cell.ID) {
		return nil
	}
	if !cell.EverComplete {
		in.skip(event, cell.ID, "link was never complete")
		return nil
	}
	if !in.logical.HasLinkWithID(cell.ID) {
		in.skip(event, cell.ID, "link already deleted")
		return nil
	}
	defer in.gate.enter(inbound, cell.ID)()

	_, err := in.logical.DeleteLink(cell.ID)
	return in.done(event, cell.ID, err)
}

// LinkChanged replaces the logical link after an endpoint moved. The old link
// is deleted before the new one is considered, so no subscriber ever sees two
// links with the same id. A link left incomplete is not re-added.
func (in *Inbound) LinkChanged(cell canvas.LinkCell) error {
	const event = "link_changed"
	if in.suppressed(event, cell.ID) {
		return nil
	}
	defer in.gate.enter(inbound, cell.ID)()

	deleted := false
	if in.logical.HasLinkWithID(cell.ID) {
		if _, err := in.logical.DeleteLink(cell.ID); err != nil {
			return in.done(event, cell.ID, err)
		}
		deleted = true
	}

	link, ok := cell.Link()
	if !ok {
		if deleted {
			return in.done(event, cell.ID, nil)
		}
		in.skip(event, cell.ID, "link is incomplete")
		return nil
	}

	if err := in.logical.AddLink(link); err != nil {
		return in.done(event, cell.ID, fmt.Errorf("reattach: %w", err))
	}
	return in.done(event, cell.ID, nil)
}

func (in *Inbound) suppressed(event, id string) bool {
	if !in.gate.echo(inbound, id) {
		return false
	}
	metrics.SyncPropagations.WithLabelValues(metrics.DirectionInbound, event, metrics.ResultSuppressed).Inc()
	in.logger.Debug("suppressed echo of logical change", "event", event, "id", id)
	return true
}

func (in *Inbound) skip(event, id, reason string) {
	metrics.SyncPropagations.WithLabelValues(metrics.DirectionInbound, event, metrics.ResultSkipped).Inc()
	in.logger.Debug("canvas change has no logical effect", "event", event, "id", id, "reason", reason)
}

func (in *Inbound) done(event, id string, err error) error {
	if err != nil {
		metrics.SyncPropagations.WithLabelValues(metrics.DirectionInbound, event, metrics.ResultFailed).Inc()
		in.logger.Error("failed to apply canvas change to workflow", "event", event, "id", id, "error", err)
		return fmt.Errorf("%s %s: %w", event, id, err)
	}
	metrics.SyncPropagations.WithLabelValues(metrics.DirectionInbound, event, metrics.ResultApplied).Inc()
	in.logger.Debug("applied canvas change to workflow", "event", event, "id", id)
	return nil
}
