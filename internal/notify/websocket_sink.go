package notify

import (
	"context"

	"github.com/dootask/asset-hub-sub002/internal/model"
)

// Broadcaster pushes an event to connected UI clients
type Broadcaster interface {
	Broadcast(event string, data interface{}) error
}

// WebsocketSink mirrors approval events to the admin UI so open lists refresh live
type WebsocketSink struct {
	hub Broadcaster
}

func NewWebsocketSink(hub Broadcaster) *WebsocketSink {
	return &WebsocketSink{hub: hub}
}

func (s *WebsocketSink) OnCreated(_ context.Context, req model.ApprovalRequest) (string, error) {
	return "", s.hub.Broadcast("approval.created", req)
}

func (s *WebsocketSink) OnCompleted(_ context.Context, req model.ApprovalRequest) error {
	return s.hub.Broadcast("approval."+req.Status, req)
}

func (s *WebsocketSink) OnOverdue(_ context.Context, rec model.BorrowRecord) error {
	return s.hub.Broadcast("borrow.overdue", rec)
}
