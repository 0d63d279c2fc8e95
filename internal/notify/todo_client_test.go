package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dootask/asset-hub-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedCall struct {
	Path string
	Auth string
	Body map[string]interface{}
}

func newTodoServer(t *testing.T, status int, reply string) (*httptest.Server, *[]capturedCall) {
	t.Helper()
	var calls []capturedCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := capturedCall{Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
		_ = json.NewDecoder(r.Body).Decode(&call.Body)
		calls = append(calls, call)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestTodoClientUnconfiguredIsNoop(t *testing.T) {
	c := NewTodoClient(TodoConfig{})
	assert.False(t, c.Configured())

	id, err := c.OnCreated(context.Background(), *newRequest())
	assert.NoError(t, err)
	assert.Empty(t, id)
	assert.NoError(t, c.OnCompleted(context.Background(), *newRequest()))
	assert.NoError(t, c.OnOverdue(context.Background(), model.BorrowRecord{Borrower: "U1"}))
}

func TestTodoClientCreatesTodo(t *testing.T) {
	srv, calls := newTodoServer(t, http.StatusOK, `{"data":{"id":"T-42"}}`)
	c := NewTodoClient(TodoConfig{BaseURL: srv.URL, Token: "secret", AppBaseURL: "https://hub.example"})

	req := newRequest()
	approver, name := "U1", "Bob"
	req.ApproverID, req.ApproverName = &approver, &name

	id, err := c.OnCreated(context.Background(), *req)
	require.NoError(t, err)
	assert.Equal(t, "T-42", id)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/todos", call.Path)
	assert.Equal(t, "Bearer secret", call.Auth)
	assert.Equal(t, "https://hub.example/approvals/"+req.ID.String(), call.Body["link"])
	assert.Equal(t, map[string]interface{}{"id": "U1", "name": "Bob"}, call.Body["approver"])
}

func TestTodoClientCompletesLinkedTodoOnly(t *testing.T) {
	srv, calls := newTodoServer(t, http.StatusNoContent, "")
	c := NewTodoClient(TodoConfig{BaseURL: srv.URL})

	req := newRequest()
	req.Status = model.ApprovalRejected
	require.NoError(t, c.OnCompleted(context.Background(), *req))
	assert.Empty(t, *calls)

	todoID, result := "T 7", "over budget"
	req.ExternalTodoID, req.Result = &todoID, &result
	require.NoError(t, c.OnCompleted(context.Background(), *req))
	require.Len(t, *calls, 1)
	assert.Equal(t, "/todos/T 7/complete", (*calls)[0].Path)
	assert.Equal(t, "rejected", (*calls)[0].Body["status"])
	assert.Equal(t, "over budget", (*calls)[0].Body["result"])
}

func TestTodoClientOverdueNotice(t *testing.T) {
	srv, calls := newTodoServer(t, http.StatusOK, "{}")
	c := NewTodoClient(TodoConfig{BaseURL: srv.URL, AppBaseURL: "https://hub.example"})

	due := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rec := model.BorrowRecord{AssetID: uuid.New(), Borrower: "U5", PlannedReturnAt: &due}
	require.NoError(t, c.OnOverdue(context.Background(), rec))

	require.Len(t, *calls, 1)
	body := (*calls)[0].Body
	assert.Equal(t, "/notifications", (*calls)[0].Path)
	assert.Equal(t, "borrow_overdue", body["type"])
	assert.Equal(t, "U5", body["user"])
	assert.Equal(t, "2026-03-01T09:00:00Z", body["planned_return_at"])
}

func TestTodoClientReportsHTTPFailure(t *testing.T) {
	srv, _ := newTodoServer(t, http.StatusBadGateway, "upstream down")
	c := NewTodoClient(TodoConfig{BaseURL: srv.URL})

	_, err := c.OnCreated(context.Background(), *newRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream down")
}
