package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/dootask/asset-hub-sub002/internal/model"

	"github.com/stretchr/testify/assert"
)

type fakeBroadcaster struct {
	events []string
	err    error
}

func (b *fakeBroadcaster) Broadcast(event string, _ interface{}) error {
	b.events = append(b.events, event)
	return b.err
}

func TestWebsocketSinkEventNames(t *testing.T) {
	hub := &fakeBroadcaster{}
	sink := NewWebsocketSink(hub)

	req := *newRequest()
	id, err := sink.OnCreated(context.Background(), req)
	assert.NoError(t, err)
	assert.Empty(t, id)

	req.Status = model.ApprovalApproved
	assert.NoError(t, sink.OnCompleted(context.Background(), req))
	assert.NoError(t, sink.OnOverdue(context.Background(), model.BorrowRecord{}))

	assert.Equal(t, []string{"approval.created", "approval.approved", "borrow.overdue"}, hub.events)
}

func TestWebsocketSinkPassesHubErrors(t *testing.T) {
	sink := NewWebsocketSink(&fakeBroadcaster{err: errors.New("busy")})
	assert.EqualError(t, sink.OnCompleted(context.Background(), *newRequest()), "busy")
}
