package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dootask/asset-hub-sub002/internal/model"
)

// TodoConfig points the client at the host platform's todo/bot API.
// An empty BaseURL turns every call into a no-op.
type TodoConfig struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	AppBaseURL string // prefix for deep links back into the admin UI
}

// TodoClient creates and completes todos on the host collaboration platform
type TodoClient struct {
	cfg  TodoConfig
	http *http.Client
}

func NewTodoClient(cfg TodoConfig) *TodoClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &TodoClient{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// Configured reports whether calls reach a downstream system
func (c *TodoClient) Configured() bool { return c.cfg.BaseURL != "" }

type todoPerson struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type createTodoRequest struct {
	Title     string                 `json:"title"`
	Link      string                 `json:"link"`
	Applicant todoPerson             `json:"applicant"`
	Approver  *todoPerson            `json:"approver,omitempty"`
	Metadata  map[string]interface{} `json:"metadata"`
}

type createTodoResponse struct {
	ID   string `json:"id"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type completeTodoRequest struct {
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
}

type overdueNotice struct {
	Type            string `json:"type"`
	User            string `json:"user"`
	AssetID         string `json:"asset_id"`
	BorrowID        string `json:"borrow_id"`
	PlannedReturnAt string `json:"planned_return_at,omitempty"`
	Link            string `json:"link"`
}

func (c *TodoClient) OnCreated(ctx context.Context, req model.ApprovalRequest) (string, error) {
	if !c.Configured() {
		return "", nil
	}

	body := createTodoRequest{
		Title:     req.Title,
		Link:      c.approvalLink(req),
		Applicant: todoPerson{ID: req.ApplicantID, Name: req.ApplicantName},
		Metadata: map[string]interface{}{
			"approval_id": req.ID.String(),
			"type":        req.Type,
			"reason":      req.Reason,
		},
	}
	if req.ApproverID != nil {
		approver := todoPerson{ID: *req.ApproverID}
		if req.ApproverName != nil {
			approver.Name = *req.ApproverName
		}
		body.Approver = &approver
	}

	var resp createTodoResponse
	if err := c.post(ctx, "/todos", body, &resp); err != nil {
		return "", err
	}
	if resp.ID != "" {
		return resp.ID, nil
	}
	return resp.Data.ID, nil
}

func (c *TodoClient) OnCompleted(ctx context.Context, req model.ApprovalRequest) error {
	if !c.Configured() || req.ExternalTodoID == nil || *req.ExternalTodoID == "" {
		return nil
	}
	body := completeTodoRequest{Status: req.Status}
	if req.Result != nil {
		body.Result = *req.Result
	}
	return c.post(ctx, "/todos/"+url.PathEscape(*req.ExternalTodoID)+"/complete", body, nil)
}

func (c *TodoClient) OnOverdue(ctx context.Context, rec model.BorrowRecord) error {
	if !c.Configured() || rec.Borrower == "" {
		return nil
	}
	notice := overdueNotice{
		Type:     "borrow_overdue",
		User:     rec.Borrower,
		AssetID:  rec.AssetID.String(),
		BorrowID: rec.ID.String(),
		Link:     c.cfg.AppBaseURL + "/assets/" + rec.AssetID.String(),
	}
	if rec.PlannedReturnAt != nil {
		notice.PlannedReturnAt = rec.PlannedReturnAt.Format(time.RFC3339)
	}
	return c.post(ctx, "/notifications", notice, nil)
}

func (c *TodoClient) approvalLink(req model.ApprovalRequest) string {
	return c.cfg.AppBaseURL + "/approvals/" + req.ID.String()
}

func (c *TodoClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal todo request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build todo request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("todo request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("todo request %s: unexpected status %d: %s", path, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode todo response: %w", err)
	}
	return nil
}
