package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"flowcanvas/internal/canvas"
	"flowcanvas/internal/catalog"
	"flowcanvas/internal/ctxlog"
	"flowcanvas/internal/domain"
	"flowcanvas/internal/service"
)

// WorkflowService is what the handler needs from the service layer
type WorkflowService interface {
	Snapshot() service.Snapshot
	GetOperator(id string) (domain.Operator, error)
	DropOperator(ctx context.Context, operatorType string, at domain.Point) (domain.Operator, error)
	AddOperator(ctx context.Context, op domain.Operator, at *domain.Point) error
	DeleteOperator(ctx context.Context, id string) error
	SetOperatorProperties(ctx context.Context, id string, props map[string]any) error
	AddLink(ctx context.Context, link domain.Link) (domain.Link, error)
	DeleteLink(ctx context.Context, id string) error
	DrawLink(ctx context.Context, source, target canvas.Endpoint) (string, error)
	MoveLinkEnd(ctx context.Context, id string, role canvas.Role, to canvas.Endpoint) error
	MoveElement(ctx context.Context, id string, to domain.Point) error
	DeleteCell(ctx context.Context, id string) error
	Plan() domain.LogicalPlan
	Execute(ctx context.Context) error
	Catalog() []catalog.OperatorSchema
	CatalogGroups() map[string][]catalog.OperatorSchema
	Import(ctx context.Context, r io.Reader, format string) (*service.ImportResult, error)
	Export(w io.Writer, format string) error
}

// WorkflowHandler handles workflow API requests
type WorkflowHandler struct {
	svc    WorkflowService
	logger *slog.Logger
}

// NewWorkflowHandler creates a new workflow handler
func NewWorkflowHandler(svc WorkflowService, logger *slog.Logger) *WorkflowHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkflowHandler{svc: svc, logger: logger.With("component", "handler")}
}

// Register adds every workflow route to mux
func (h *WorkflowHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/graph", h.GetGraph)

	mux.HandleFunc("POST /api/operators", h.CreateOperator)
	mux.HandleFunc("GET /api/operators/{id}", h.GetOperator)
	mux.HandleFunc("DELETE /api/operators/{id}", h.DeleteOperator)
	mux.HandleFunc("PUT /api/operators/{id}/properties", h.SetOperatorProperties)

	mux.HandleFunc("POST /api/links", h.CreateLink)
	mux.HandleFunc("DELETE /api/links/{id}", h.DeleteLink)

	mux.HandleFunc("POST /api/canvas/links", h.DrawLink)
	mux.HandleFunc("PUT /api/canvas/links/{id}", h.MoveLinkEnd)
	mux.HandleFunc("PUT /api/canvas/elements/{id}", h.MoveElement)
	mux.HandleFunc("DELETE /api/canvas/cells/{id}", h.DeleteCell)

	mux.HandleFunc("GET /api/plan", h.GetPlan)
	mux.HandleFunc("POST /api/execute", h.Execute)
	mux.HandleFunc("GET /api/catalog", h.GetCatalog)
	mux.HandleFunc("GET /api/catalog/groups", h.GetCatalogGroups)

	mux.HandleFunc("POST /api/import", h.Import)
	mux.HandleFunc("GET /api/export", h.Export)
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CreateOperatorRequest either drops a catalog type at a point, or adds a
// fully specified operator when Operator is set
type CreateOperatorRequest struct {
	OperatorType string           `json:"operatorType"`
	Operator     *domain.Operator `json:"operator,omitempty"`
	Position     *domain.Point    `json:"position,omitempty"`
}

// DrawLinkRequest describes a link drawn on the canvas
type DrawLinkRequest struct {
	Source canvas.Endpoint `json:"source"`
	Target canvas.Endpoint `json:"target"`
}

// MoveLinkEndRequest moves one end of a canvas link
type MoveLinkEndRequest struct {
	Role canvas.Role     `json:"role"`
	To   canvas.Endpoint `json:"to"`
}

// GetGraph returns both graphs
func (h *WorkflowHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Snapshot(), http.StatusOK)
}

// CreateOperator adds an operator
func (h *WorkflowHandler) CreateOperator(w http.ResponseWriter, r *http.Request) {
	var req CreateOperatorRequest
	if !h.decode(w, r, &req) {
		return
	}

	if req.Operator != nil {
		op := *req.Operator
		if op.OperatorProperties == nil {
			op.OperatorProperties = make(map[string]any)
		}
		if err := h.svc.AddOperator(r.Context(), op, req.Position); err != nil {
			h.fail(w, r, "Failed to add operator", err)
			return
		}
		h.writeJSON(w, op, http.StatusCreated)
		return
	}

	if req.OperatorType == "" {
		h.writeError(w, "Invalid request body", "operatorType or operator is required", http.StatusBadRequest)
		return
	}
	var at domain.Point
	if req.Position != nil {
		at = *req.Position
	}
	op, err := h.svc.DropOperator(r.Context(), req.OperatorType, at)
	if err != nil {
		h.fail(w, r, "Failed to add operator", err)
		return
	}
	h.writeJSON(w, op, http.StatusCreated)
}

// GetOperator returns one operator
func (h *WorkflowHandler) GetOperator(w http.ResponseWriter, r *http.Request) {
	op, err := h.svc.GetOperator(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "Failed to get operator", err)
		return
	}
	h.writeJSON(w, op, http.StatusOK)
}

// DeleteOperator deletes an operator and its links
func (h *WorkflowHandler) DeleteOperator(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteOperator(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, "Failed to delete operator", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetOperatorProperties replaces an operator's properties
func (h *WorkflowHandler) SetOperatorProperties(w http.ResponseWriter, r *http.Request) {
	var props map[string]any
	if !h.decode(w, r, &props) {
		return
	}
	id := r.PathValue("id")
	if err := h.svc.SetOperatorProperties(r.Context(), id, props); err != nil {
		h.fail(w, r, "Failed to set properties", err)
		return
	}
	op, err := h.svc.GetOperator(id)
	if err != nil {
		h.fail(w, r, "Failed to get operator", err)
		return
	}
	h.writeJSON(w, op, http.StatusOK)
}

// CreateLink adds a logical link
func (h *WorkflowHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var link domain.Link
	if !h.decode(w, r, &link) {
		return
	}
	created, err := h.svc.AddLink(r.Context(), link)
	if err != nil {
		h.fail(w, r, "Failed to add link", err)
		return
	}
	h.writeJSON(w, created, http.StatusCreated)
}

// DeleteLink deletes a logical link
func (h *WorkflowHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteLink(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, "Failed to delete link", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DrawLink draws a link on the canvas
func (h *WorkflowHandler) DrawLink(w http.ResponseWriter, r *http.Request) {
	var req DrawLinkRequest
	if !h.decode(w, r, &req) {
		return
	}
	id, err := h.svc.DrawLink(r.Context(), req.Source, req.Target)
	if err != nil {
		h.fail(w, r, "Failed to draw link", err)
		return
	}
	h.writeJSON(w, map[string]string{"id": id}, http.StatusCreated)
}

// MoveLinkEnd attaches or detaches one end of a canvas link
func (h *WorkflowHandler) MoveLinkEnd(w http.ResponseWriter, r *http.Request) {
	var req MoveLinkEndRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.MoveLinkEnd(r.Context(), r.PathValue("id"), req.Role, req.To); err != nil {
		h.fail(w, r, "Failed to move link end", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveElement repositions an element on the canvas
func (h *WorkflowHandler) MoveElement(w http.ResponseWriter, r *http.Request) {
	var to domain.Point
	if !h.decode(w, r, &to) {
		return
	}
	if err := h.svc.MoveElement(r.Context(), r.PathValue("id"), to); err != nil {
		h.fail(w, r, "Failed to move element", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCell removes an element or link from the canvas
func (h *WorkflowHandler) DeleteCell(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCell(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, "Failed to delete cell", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPlan returns the execution request for the current workflow
func (h *WorkflowHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Plan(), http.StatusOK)
}

// Execute submits the workflow; the result arrives on the event stream
func (h *WorkflowHandler) Execute(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Execute(r.Context()); err != nil {
		h.fail(w, r, "Failed to execute workflow", err)
		return
	}
	h.writeJSON(w, map[string]string{"status": "started"}, http.StatusAccepted)
}

// GetCatalog lists the operator types that can be dropped
func (h *WorkflowHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Catalog(), http.StatusOK)
}

// GetCatalogGroups lists the operator types by palette group
func (h *WorkflowHandler) GetCatalogGroups(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.CatalogGroups(), http.StatusOK)
}

// Import adds a workflow document. ?format=json (default) or yaml.
func (h *WorkflowHandler) Import(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Import(r.Context(), r.Body, r.URL.Query().Get("format"))
	if err != nil {
		h.fail(w, r, "Failed to import workflow", err)
		return
	}
	h.writeJSON(w, result, http.StatusOK)
}

// Export downloads the workflow. ?format=json (default) or yaml.
func (h *WorkflowHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	var contentType string
	switch format {
	case "json":
		contentType = "application/json"
	case "yaml", "yml":
		contentType = "application/x-yaml"
	default:
		h.writeError(w, "Unsupported format", format, http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=workflow.%s", format))

	if err := h.svc.Export(w, format); err != nil {
		// headers are already out
		ctxlog.FromContext(r.Context()).Error("failed to export workflow", "error", err)
	}
}

// Helper methods

func (h *WorkflowHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *WorkflowHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		ctxlog.FromContext(r.Context()).Error(msg, "error", err)
	}
	h.writeError(w, msg, err.Error(), status)
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateIdentifier):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidEndpoint), errors.Is(err, domain.ErrUnknownOperatorType),
		errors.Is(err, domain.ErrMissingIdentifier), errors.Is(err, service.ErrInvalidDocument):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrExecutionDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *WorkflowHandler) writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *WorkflowHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	h.writeJSON(w, ErrorResponse{Error: error, Details: details}, statusCode)
}
