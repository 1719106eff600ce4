package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcanvas/internal/builder"
	"flowcanvas/internal/catalog"
	"flowcanvas/internal/domain"
	"flowcanvas/internal/service"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	svc := service.NewWorkflowService(service.Options{IDs: builder.NewFixedGenerator("scan", "kw", "view")})
	t.Cleanup(svc.Close)

	mux := http.NewServeMux()
	NewWorkflowHandler(svc, nil).Register(mux)
	return mux
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func seed(t *testing.T, h http.Handler) {
	t.Helper()
	for _, typ := range []string{"ScanSource", "KeywordMatcher", "ViewResults"} {
		rec := do(t, h, http.MethodPost, "/api/operators", fmt.Sprintf(`{"operatorType":%q,"position":{"x":1,"y":2}}`, typ))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
}

func TestCreateOperatorFromCatalog(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/operators", `{"operatorType":"Join","position":{"x":10,"y":20}}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	op := decodeBody[domain.Operator](t, rec)
	assert.Equal(t, "scan", op.OperatorID)
	assert.Equal(t, []string{"input-0", "input-1"}, op.InputPorts)

	snap := decodeBody[service.Snapshot](t, do(t, h, http.MethodGet, "/api/graph", ""))
	require.Len(t, snap.Elements, 1)
	assert.Equal(t, domain.NewPoint(10, 20), snap.Elements[0].Position)
}

func TestCreateExplicitOperator(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/operators",
		`{"operator":{"operatorID":"custom","operatorType":"X","inputPorts":["in"],"outputPorts":[]}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/operators",
		`{"operator":{"operatorID":"custom","operatorType":"X"}}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/operators/custom", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"in"}, decodeBody[domain.Operator](t, rec).InputPorts)
}

func TestCreateOperatorErrors(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"nothing to create", `{}`, http.StatusBadRequest},
		{"unknown type", `{"operatorType":"Teleport"}`, http.StatusBadRequest},
		{"missing id", `{"operator":{"operatorType":"X"}}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/operators", tt.body)
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, decodeBody[ErrorResponse](t, rec).Error)
		})
	}
}

func TestLinkRoutes(t *testing.T) {
	h := newTestServer(t)
	seed(t, h)

	rec := do(t, h, http.MethodPost, "/api/links",
		`{"linkID":"L1","source":{"operatorID":"scan","portID":"output-0"},"target":{"operatorID":"kw","portID":"input-0"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/links",
		`{"source":{"operatorID":"kw","portID":"input-0"},"target":{"operatorID":"view","portID":"input-0"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	plan := decodeBody[domain.LogicalPlan](t, do(t, h, http.MethodGet, "/api/plan", ""))
	assert.Equal(t, []domain.LogicalLink{{Origin: "scan", Destination: "kw"}}, plan.Links)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/links/L1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/api/links/L1", "").Code)
}

func TestDeleteOperatorRoute(t *testing.T) {
	h := newTestServer(t)
	seed(t, h)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/operators/kw", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/api/operators/kw", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/operators/kw", "").Code)
}

func TestSetPropertiesRoute(t *testing.T) {
	h := newTestServer(t)
	seed(t, h)

	rec := do(t, h, http.MethodPut, "/api/operators/scan/properties", `{"tableName":"twitter"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "twitter", decodeBody[domain.Operator](t, rec).OperatorProperties["tableName"])
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPut, "/api/operators/ghost/properties", `{}`).Code)
}

func TestCanvasGestureRoutes(t *testing.T) {
	h := newTestServer(t)
	seed(t, h)

	rec := do(t, h, http.MethodPost, "/api/canvas/links",
		`{"source":{"port":{"operatorID":"scan","portID":"output-0"}},"target":{"point":{"x":50,"y":50}}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decodeBody[map[string]string](t, rec)["id"]
	require.NotEmpty(t, id)
	assert.Empty(t, decodeBody[service.Snapshot](t, do(t, h, http.MethodGet, "/api/graph", "")).Links)

	rec = do(t, h, http.MethodPut, "/api/canvas/links/"+id,
		`{"role":"target","to":{"port":{"operatorID":"kw","portID":"input-0"}}}`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	snap := decodeBody[service.Snapshot](t, do(t, h, http.MethodGet, "/api/graph", ""))
	require.Len(t, snap.Links, 1)
	assert.Equal(t, id, snap.Links[0].LinkID)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodPut, "/api/canvas/elements/kw", `{"x":300,"y":40}`).Code)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/canvas/cells/kw", "").Code)
	snap = decodeBody[service.Snapshot](t, do(t, h, http.MethodGet, "/api/graph", ""))
	assert.Empty(t, snap.Links)
	assert.Len(t, snap.Operators, 2)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/api/canvas/cells/kw", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPut, "/api/canvas/links/"+id,
		`{"role":"middle","to":{"point":{"x":1,"y":1}}}`).Code)
}

func TestDrawInvalidLinkIsRejected(t *testing.T) {
	h := newTestServer(t)
	seed(t, h)

	rec := do(t, h, http.MethodPost, "/api/canvas/links",
		`{"source":{"port":{"operatorID":"view","portID":"input-0"}},"target":{"port":{"operatorID":"kw","portID":"input-0"}}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	snap := decodeBody[service.Snapshot](t, do(t, h, http.MethodGet, "/api/graph", ""))
	assert.Empty(t, snap.Cells)
}

func TestExecuteWithoutBackend(t *testing.T) {
	h := newTestServer(t)

	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodPost, "/api/execute", "").Code)
}

func TestCatalogRoute(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/catalog", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeBody[[]map[string]any](t, rec))

	rec = do(t, h, http.MethodGet, "/api/catalog/groups", "")
	require.Equal(t, http.StatusOK, rec.Code)
	groups := decodeBody[map[string][]catalog.OperatorSchema](t, rec)
	require.Len(t, groups["Search"], 3)
	assert.Equal(t, "DictionaryMatcher", groups["Search"][0].OperatorType)
}

func TestImportExportRoutes(t *testing.T) {
	h := newTestServer(t)
	seed(t, h)
	rec := do(t, h, http.MethodPost, "/api/links",
		`{"linkID":"L1","source":{"operatorID":"scan","portID":"output-0"},"target":{"operatorID":"kw","portID":"input-0"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/export?format=yaml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-yaml", rec.Header().Get("Content-Type"))
	exported := rec.Body.String()
	assert.Contains(t, exported, "scan:output-0")

	other := newTestServer(t)
	rec = do(t, other, http.MethodPost, "/api/import?format=yaml", exported)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, service.ImportResult{OperatorsAdded: 3, LinksAdded: 1}, decodeBody[service.ImportResult](t, rec))

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/export?format=xml", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, other, http.MethodPost, "/api/import", "{").Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("x: %w", domain.ErrDuplicateIdentifier), http.StatusConflict},
		{fmt.Errorf("x: %w", domain.ErrInvalidEndpoint), http.StatusBadRequest},
		{fmt.Errorf("x: %w", domain.ErrUnknownOperatorType), http.StatusBadRequest},
		{service.ErrExecutionDisabled, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestMiddlewareChain(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") })
	var logs bytes.Buffer
	h := Chain(panicking, Recover, CORS, Logger(newBufferLogger(&logs)))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "req-1", rec.Header().Get("X-Request-ID"))
	assert.Contains(t, logs.String(), "request_id=req-1")
	assert.Contains(t, logs.String(), "panic in handler")
}

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/graph", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, called)
}

func TestLoggerAssignsRequestID(t *testing.T) {
	var logs bytes.Buffer
	h := Logger(newBufferLogger(&logs))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tea", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Contains(t, logs.String(), "status=418")
}
