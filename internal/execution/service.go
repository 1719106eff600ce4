package execution

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"flowcanvas/internal/ctxlog"
	"flowcanvas/internal/domain"
	"flowcanvas/internal/event"
	"flowcanvas/internal/metrics"
)

// Submitter sends a plan to a backend
type Submitter interface {
	Submit(ctx context.Context, plan domain.LogicalPlan) (Response, error)
}

// Started is published when a plan is handed to the backend
type Started struct {
	Plan domain.LogicalPlan `json:"plan"`
	At   time.Time          `json:"at"`
}

// Ended is published when the backend answered or the submission failed.
// Result holds the backend body in both cases when one was received.
type Ended struct {
	Result   json.RawMessage `json:"result,omitempty"`
	Status   int             `json:"status,omitempty"`
	Error    string          `json:"error,omitempty"`
	Duration time.Duration   `json:"duration"`
}

// Service runs fire-and-forget submissions and reports them on two streams
type Service struct {
	submitter Submitter
	timeout   time.Duration
	started   event.Stream[Started]
	ended     event.Stream[Ended]
}

// NewService returns a service using submitter. A zero timeout means none.
func NewService(submitter Submitter, timeout time.Duration) *Service {
	return &Service{submitter: submitter, timeout: timeout}
}

// Started streams submission starts
func (s *Service) Started() event.Source[Started] { return &s.started }

// Ended streams submission results
func (s *Service) Ended() event.Source[Ended] { return &s.ended }

// Execute snapshots the graph, publishes Started and submits in the
// background. The returned channel is closed after Ended was published.
func (s *Service) Execute(ctx context.Context, g GraphReader) <-chan struct{} {
	plan := LogicalPlanRequest(g)
	logger := ctxlog.FromContext(ctx).With("component", "execution")
	s.started.Publish(Started{Plan: plan, At: time.Now()})

	// the submission usually outlives the request that started it
	runCtx := context.WithoutCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.ended.Publish(s.submit(runCtx, plan, logger))
	}()
	return done
}

func (s *Service) submit(ctx context.Context, plan domain.LogicalPlan, logger *slog.Logger) Ended {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.submitter.Submit(ctx, plan)
	elapsed := time.Since(start)
	metrics.ExecutionDuration.Observe(elapsed.Seconds())

	ended := Ended{Result: resp.Body, Status: resp.StatusCode, Duration: elapsed}
	switch {
	case err == nil:
		metrics.ExecutionSubmissions.WithLabelValues("ok").Inc()
		logger.Info("workflow executed", "operators", len(plan.Operators), "duration", elapsed)
	case errors.Is(err, ErrBackend):
		metrics.ExecutionSubmissions.WithLabelValues("rejected").Inc()
		ended.Error = err.Error()
		logger.Warn("backend rejected workflow", "status", resp.StatusCode, "error", err)
	default:
		metrics.ExecutionSubmissions.WithLabelValues("error").Inc()
		ended.Error = err.Error()
		logger.Error("workflow submission failed", "error", err)
	}
	return ended
}
