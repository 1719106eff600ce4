package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"flowcanvas/internal/builder"
	"flowcanvas/internal/canvas"
	"flowcanvas/internal/catalog"
	"flowcanvas/internal/ctxlog"
	"flowcanvas/internal/domain"
	"flowcanvas/internal/execution"
	"flowcanvas/internal/metrics"
	"flowcanvas/internal/syncer"
	"flowcanvas/internal/workflow"
)

// ErrExecutionDisabled is returned by Execute when no backend is configured
var ErrExecutionDisabled = errors.New("execution backend not configured")

// Snapshot is the state of both graphs at one instant
type Snapshot struct {
	Operators []domain.Operator    `json:"operators"`
	Links     []domain.Link        `json:"links"`
	Elements  []canvas.ElementCell `json:"elements"`
	Cells     []canvas.LinkCell    `json:"visualLinks"`
}

// WorkflowService provides business logic for workflow editing
type WorkflowService struct {
	mu sync.Mutex

	graph      *workflow.Graph
	surface    *canvas.MemorySurface
	adapter    *canvas.Adapter
	engine     *syncer.Engine
	placements *syncer.Placements
	builder    *builder.Builder
	catalog    *catalog.Catalog
	executor   *execution.Service
	eventBus   *EventBus
	logger     *slog.Logger

	// failures raised by the engine while a mutation runs
	recording   bool
	failures    []syncer.Failure
	unsubscribe []func()
}

// Options configures a WorkflowService
type Options struct {
	Catalog  *catalog.Catalog
	IDs      builder.IDGenerator
	Executor *execution.Service
	EventBus *EventBus
	Logger   *slog.Logger
}

// NewWorkflowService creates an empty workflow with its canvas
func NewWorkflowService(opts Options) *WorkflowService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	bus := opts.EventBus
	if bus == nil {
		bus = NewEventBus()
	}
	cat := opts.Catalog
	if cat == nil {
		cat, _ = catalog.New(catalog.Defaults())
	}

	s := &WorkflowService{
		graph:      workflow.NewGraph(),
		surface:    canvas.NewMemorySurface(),
		placements: syncer.NewPlacements(),
		builder:    builder.New(opts.IDs, cat),
		catalog:    cat,
		executor:   opts.Executor,
		eventBus:   bus,
		logger:     logger.With("component", "service"),
	}
	s.adapter = canvas.NewAdapter(s.surface, logger)
	s.engine = syncer.New(s.graph, s.adapter, s.placements, logger)
	s.subscribe()
	return s
}

func (s *WorkflowService) subscribe() {
	s.unsubscribe = append(s.unsubscribe,
		s.engine.Failures().Subscribe(func(f syncer.Failure) {
			if s.recording {
				s.failures = append(s.failures, f)
			}
		}),
		s.graph.OperatorAdded().Subscribe(func(op domain.Operator) {
			s.mutated("operator_added")
			s.eventBus.Publish(Event{Type: EventOperatorAdded, Payload: op})
		}),
		s.graph.OperatorDeleted().Subscribe(func(op domain.Operator) {
			s.mutated("operator_deleted")
			s.eventBus.Publish(Event{Type: EventOperatorDeleted, Payload: map[string]string{"operatorID": op.OperatorID}})
		}),
		s.graph.OperatorPropertyChanged().Subscribe(func(c workflow.PropertyChange) {
			s.mutated("operator_property_changed")
			s.eventBus.Publish(Event{Type: EventOperatorPropertyChanged, Payload: c})
		}),
		s.graph.LinkAdded().Subscribe(func(l domain.Link) {
			s.mutated("link_added")
			s.eventBus.Publish(Event{Type: EventLinkAdded, Payload: l})
		}),
		s.graph.LinkDeleted().Subscribe(func(l domain.Link) {
			s.mutated("link_deleted")
			s.eventBus.Publish(Event{Type: EventLinkDeleted, Payload: map[string]string{"linkID": l.LinkID}})
		}),
	)
	if s.executor != nil {
		s.unsubscribe = append(s.unsubscribe,
			s.executor.Started().Subscribe(func(e execution.Started) {
				s.eventBus.Publish(Event{Type: EventExecuteStarted, Payload: e})
			}),
			s.executor.Ended().Subscribe(func(e execution.Ended) {
				s.eventBus.Publish(Event{Type: EventExecuteEnded, Payload: e})
			}),
		)
	}
}

// mutated runs on every logical notification, inside the caller's lock
func (s *WorkflowService) mutated(kind string) {
	metrics.GraphMutations.WithLabelValues(kind).Inc()
	metrics.GraphSize.WithLabelValues("operators").Set(float64(len(s.graph.GetOperators())))
	metrics.GraphSize.WithLabelValues("links").Set(float64(len(s.graph.GetLinks())))
}

// Close detaches every subscription
func (s *WorkflowService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fn := range s.unsubscribe {
		fn()
	}
	s.unsubscribe = nil
	s.engine.Close()
	s.adapter.Close()
}

// Snapshot returns both graphs
func (s *WorkflowService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Operators: s.graph.GetOperators(),
		Links:     s.graph.GetLinks(),
		Elements:  s.adapter.Elements(),
		Cells:     s.adapter.Links(),
	}
}

// GetOperator returns one operator
func (s *WorkflowService) GetOperator(id string) (domain.Operator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.graph.GetOperator(id)
	if !ok {
		return domain.Operator{}, fmt.Errorf("operator %s: %w", id, domain.ErrNotFound)
	}
	return op, nil
}

// DropOperator creates an operator of the given type and places it at the point
func (s *WorkflowService) DropOperator(ctx context.Context, operatorType string, at domain.Point) (domain.Operator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op, err := s.builder.NewOperator(operatorType)
	if err != nil {
		return domain.Operator{}, err
	}
	if err := s.addOperator(op, &at); err != nil {
		return domain.Operator{}, err
	}
	ctxlog.FromContext(ctx).Info("operator dropped", "operator_id", op.OperatorID, "type", operatorType)
	return op, nil
}

// AddOperator adds a fully specified operator, optionally at a point
func (s *WorkflowService) AddOperator(ctx context.Context, op domain.Operator, at *domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.addOperator(op, at); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("operator added", "operator_id", op.OperatorID)
	return nil
}

func (s *WorkflowService) addOperator(op domain.Operator, at *domain.Point) error {
	if err := s.claim(op.OperatorID); err != nil {
		return err
	}
	if at != nil {
		s.placements.Set(op.OperatorID, *at)
	}
	failures, err := s.record(func() error { return s.graph.AddOperator(op) })
	if err != nil {
		s.placements.Forget(op.OperatorID)
		return err
	}
	if err := mirrorFailure(failures); err != nil {
		_, _ = s.graph.DeleteOperator(op.OperatorID)
		return fmt.Errorf("add operator %s: %w", op.OperatorID, err)
	}
	return nil
}

func (s *WorkflowService) addLink(link domain.Link) error {
	if err := s.claim(link.LinkID); err != nil {
		return err
	}
	failures, err := s.record(func() error { return s.graph.AddLink(link) })
	if err != nil {
		return err
	}
	if err := mirrorFailure(failures); err != nil {
		_, _ = s.graph.DeleteLink(link.LinkID)
		return fmt.Errorf("add link %s: %w", link.LinkID, err)
	}
	return nil
}

// claim fails when id already names a canvas cell. A link cell that never
// reached the workflow still holds its id.
func (s *WorkflowService) claim(id string) error {
	if id != "" && s.adapter.HasCell(id) {
		return fmt.Errorf("%s is already on the canvas: %w", id, domain.ErrDuplicateIdentifier)
	}
	return nil
}

// DeleteOperator deletes an operator and every link touching it
func (s *WorkflowService) DeleteOperator(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.graph.DeleteOperator(id); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("operator deleted", "operator_id", id)
	return nil
}

// SetOperatorProperties replaces an operator's properties
func (s *WorkflowService) SetOperatorProperties(ctx context.Context, id string, props map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.graph.SetOperatorProperties(id, props); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("operator properties set", "operator_id", id, "keys", len(props))
	return nil
}

// AddLink adds a logical link. An empty id gets a generated one.
func (s *WorkflowService) AddLink(ctx context.Context, link domain.Link) (domain.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if link.LinkID == "" {
		link.LinkID = "link-" + uuid.NewString()
	}
	if err := s.addLink(link); err != nil {
		return domain.Link{}, err
	}
	ctxlog.FromContext(ctx).Info("link added", "link_id", link.LinkID,
		"source", link.Source.String(), "target", link.Target.String())
	return link, nil
}

// DeleteLink deletes a logical link
func (s *WorkflowService) DeleteLink(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.graph.DeleteLink(id); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("link deleted", "link_id", id)
	return nil
}

// DrawLink draws a link on the canvas as a user would. A complete link
// that the workflow rejects is removed again and the error returned.
func (s *WorkflowService) DrawLink(ctx context.Context, source, target canvas.Endpoint) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id string
	err := s.gesture(func() error {
		var err error
		id, err = s.surface.DrawLink(source, target)
		return err
	})
	if err != nil {
		return "", err
	}
	ctxlog.FromContext(ctx).Debug("link drawn", "link_id", id, "source", source.String(), "target", target.String())
	return id, nil
}

// MoveLinkEnd moves one end of a canvas link to a port or a free point
func (s *WorkflowService) MoveLinkEnd(ctx context.Context, id string, role canvas.Role, to canvas.Endpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !role.Valid() {
		return fmt.Errorf("%w: link end %q", domain.ErrInvalidEndpoint, role)
	}
	err := s.gesture(func() error { return s.surface.SetLinkEndpoint(id, role, to) })
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("link end moved", "link_id", id, "role", role, "to", to.String())
	return nil
}

// MoveElement repositions an element
func (s *WorkflowService) MoveElement(ctx context.Context, id string, to domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.MoveElement(id, to)
}

// DeleteCell removes an element or link from the canvas as a user would
func (s *WorkflowService) DeleteCell(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gesture(func() error { return s.surface.DeleteCell(id) }); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("cell deleted", "cell_id", id)
	return nil
}

// gesture runs a canvas change and surfaces the first engine failure it
// caused. Visual links whose logical counterpart was rejected are removed
// so both graphs keep agreeing.
func (s *WorkflowService) gesture(fn func() error) error {
	failures, err := s.record(fn)
	if err != nil {
		return err
	}
	if len(failures) == 0 {
		return nil
	}
	for _, f := range failures {
		if f.Direction != metrics.DirectionInbound {
			continue
		}
		if cell, ok := s.adapter.Link(f.ID); ok && canvas.Classify(cell) == canvas.Complete && !s.graph.HasLinkWithID(f.ID) {
			s.surface.RemoveCell(f.ID)
		}
	}
	return failures[0].Err
}

// record runs fn and returns the engine failures raised while it ran
func (s *WorkflowService) record(fn func() error) ([]syncer.Failure, error) {
	s.recording = true
	defer func() {
		s.recording = false
		s.failures = nil
	}()
	err := fn()
	return s.failures, err
}

// mirrorFailure returns the first change that could not be mirrored onto the canvas
func mirrorFailure(failures []syncer.Failure) error {
	for _, f := range failures {
		if f.Direction == metrics.DirectionOutbound {
			return f.Err
		}
	}
	return nil
}

// Plan returns the execution request for the current workflow
func (s *WorkflowService) Plan() domain.LogicalPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return execution.LogicalPlanRequest(s.graph)
}

// Execute submits the current workflow. The result arrives later as an
// execute_ended event.
func (s *WorkflowService) Execute(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.executor == nil {
		return ErrExecutionDisabled
	}
	s.executor.Execute(ctx, s.graph)
	return nil
}

// Catalog returns the operator schemas currently offered
func (s *WorkflowService) Catalog() []catalog.OperatorSchema {
	return s.catalog.Schemas()
}

// CatalogGroups returns the operator schemas keyed by palette group
func (s *WorkflowService) CatalogGroups() map[string][]catalog.OperatorSchema {
	return s.catalog.Groups()
}
