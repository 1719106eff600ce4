package execution

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcanvas/internal/domain"
)

func samplePlan() domain.LogicalPlan {
	return domain.LogicalPlan{
		Operators: []map[string]any{{"operatorID": "1", "operatorType": "ScanSource"}},
		Links:     []domain.LogicalLink{},
	}
}

func TestClientSubmit(t *testing.T) {
	var gotPath, gotType string
	var gotPlan domain.LogicalPlan
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotPlan)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":0,"result":[]}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL+"/api/", time.Second).Submit(context.Background(), samplePlan())

	require.NoError(t, err)
	assert.Equal(t, "/api/queryplan/execute", gotPath)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "ScanSource", gotPlan.Operators[0]["operatorType"])
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"code":0,"result":[]}`, string(resp.Body))
}

func TestClientSubmitBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "plan is invalid", http.StatusBadRequest)
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, time.Second).Submit(context.Background(), samplePlan())

	require.ErrorIs(t, err, ErrBackend)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `"plan is invalid"`, string(resp.Body))
}

func TestClientSubmitUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Submit(context.Background(), samplePlan())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBackend)
}

type stubSubmitter struct {
	resp Response
	err  error
}

func (s stubSubmitter) Submit(context.Context, domain.LogicalPlan) (Response, error) {
	return s.resp, s.err
}

func TestServiceExecutePublishesStartedThenEnded(t *testing.T) {
	svc := NewService(stubSubmitter{resp: Response{StatusCode: 200, Body: json.RawMessage(`{"code":0}`)}}, time.Second)
	var (
		mu    sync.Mutex
		order []string
		ended Ended
	)
	svc.Started().Subscribe(func(Started) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, "started")
	})
	svc.Ended().Subscribe(func(e Ended) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, "ended")
		ended = e
	})

	done := svc.Execute(context.Background(), fakeGraph{})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("execution did not finish")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"started", "ended"}, order)
	assert.JSONEq(t, `{"code":0}`, string(ended.Result))
	assert.Empty(t, ended.Error)
}

func TestServiceExecuteReportsErrorBody(t *testing.T) {
	svc := NewService(stubSubmitter{
		resp: Response{StatusCode: 400, Body: json.RawMessage(`{"message":"bad"}`)},
		err:  ErrBackend,
	}, 0)
	results := make(chan Ended, 1)
	svc.Ended().Subscribe(func(e Ended) { results <- e })

	svc.Execute(context.Background(), fakeGraph{})

	select {
	case e := <-results:
		assert.JSONEq(t, `{"message":"bad"}`, string(e.Result))
		assert.Equal(t, 400, e.Status)
		assert.NotEmpty(t, e.Error)
	case <-time.After(2 * time.Second):
		t.Fatal("no result")
	}
}
