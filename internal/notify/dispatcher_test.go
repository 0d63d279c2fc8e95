package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dootask/asset-hub-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu        sync.Mutex
	created   []model.ApprovalRequest
	completed []model.ApprovalRequest
	overdue   []model.BorrowRecord
	todoID    string
	err       error
	block     chan struct{}
	panics    bool
}

func (n *recordingNotifier) OnCreated(_ context.Context, req model.ApprovalRequest) (string, error) {
	if n.block != nil {
		<-n.block
	}
	if n.panics {
		panic("boom")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, req)
	return n.todoID, n.err
}

func (n *recordingNotifier) OnCompleted(_ context.Context, req model.ApprovalRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, req)
	return n.err
}

func (n *recordingNotifier) OnOverdue(_ context.Context, rec model.BorrowRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.overdue = append(n.overdue, rec)
	return n.err
}

func (n *recordingNotifier) counts() (int, int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.created), len(n.completed), len(n.overdue)
}

type memoryStore struct {
	mu    sync.Mutex
	reqs  map[uuid.UUID]model.ApprovalRequest
	err   error
	links int
}

func newMemoryStore(reqs ...model.ApprovalRequest) *memoryStore {
	s := &memoryStore{reqs: map[uuid.UUID]model.ApprovalRequest{}}
	for _, r := range reqs {
		s.reqs[r.ID] = r
	}
	return s
}

func (s *memoryStore) FindByID(_ context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reqs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &r, nil
}

func (s *memoryStore) SetExternalTodoID(_ context.Context, id uuid.UUID, externalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	r := s.reqs[id]
	r.ExternalTodoID = &externalID
	s.reqs[id] = r
	s.links++
	return nil
}

func newRequest() *model.ApprovalRequest {
	req := &model.ApprovalRequest{Title: "Borrow laptop", Status: model.ApprovalPending, ApplicantID: "U100"}
	req.ID = uuid.New()
	return req
}

func TestInlineDeliveryLinksTodo(t *testing.T) {
	req := newRequest()
	store := newMemoryStore(*req)
	notifier := &recordingNotifier{todoID: "T-1"}
	d := NewDispatcher(notifier, store, DispatcherConfig{}, zerolog.Nop())

	d.Publish(context.Background(), Intent{Kind: KindCreated, Request: req})

	created, _, _ := notifier.counts()
	assert.Equal(t, 1, created)
	linked, err := store.FindByID(context.Background(), req.ID)
	require.NoError(t, err)
	require.NotNil(t, linked.ExternalTodoID)
	assert.Equal(t, "T-1", *linked.ExternalTodoID)
}

func TestInlineDeliverySurvivesCancelledContext(t *testing.T) {
	notifier := &recordingNotifier{}
	d := NewDispatcher(notifier, nil, DispatcherConfig{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Publish(ctx, Intent{Kind: KindCreated, Request: newRequest()})

	created, _, _ := notifier.counts()
	assert.Equal(t, 1, created)
}

func TestCompletedPicksUpLinkedTodo(t *testing.T) {
	req := newRequest()
	todoID := "T-9"
	stored := *req
	stored.ExternalTodoID = &todoID
	store := newMemoryStore(stored)
	notifier := &recordingNotifier{}
	d := NewDispatcher(notifier, store, DispatcherConfig{}, zerolog.Nop())

	done := *req
	done.Status = model.ApprovalApproved
	d.Publish(context.Background(), Intent{Kind: KindCompleted, Request: &done})

	require.Len(t, notifier.completed, 1)
	require.NotNil(t, notifier.completed[0].ExternalTodoID)
	assert.Equal(t, "T-9", *notifier.completed[0].ExternalTodoID)
	assert.Nil(t, done.ExternalTodoID, "published snapshot is not mutated")
}

func TestFailuresAreSwallowed(t *testing.T) {
	req := newRequest()
	store := newMemoryStore(*req)
	store.err = errors.New("db down")
	notifier := &recordingNotifier{todoID: "T-1", err: errors.New("downstream 500")}
	d := NewDispatcher(notifier, store, DispatcherConfig{}, zerolog.Nop())

	assert.NotPanics(t, func() {
		d.Publish(context.Background(), Intent{Kind: KindCreated, Request: req})
		d.Publish(context.Background(), Intent{Kind: KindCompleted, Request: req})
		d.Publish(context.Background(), Intent{Kind: KindOverdue, Borrow: &model.BorrowRecord{Borrower: "U100"}})
		d.Publish(context.Background(), Intent{Kind: KindOverdue})
		d.Publish(context.Background(), Intent{Kind: "unknown"})
	})
	created, completed, overdue := notifier.counts()
	assert.Equal(t, []int{1, 1, 1}, []int{created, completed, overdue})
	assert.Zero(t, store.links)
}

func TestNotifierPanicIsRecovered(t *testing.T) {
	d := NewDispatcher(&recordingNotifier{panics: true}, nil, DispatcherConfig{}, zerolog.Nop())
	assert.NotPanics(t, func() {
		d.Publish(context.Background(), Intent{Kind: KindCreated, Request: newRequest()})
	})
}

func TestQueuedDeliveryDrainsOnClose(t *testing.T) {
	notifier := &recordingNotifier{}
	d := NewDispatcher(notifier, nil, DispatcherConfig{QueueSize: 8}, zerolog.Nop())

	for i := 0; i < 5; i++ {
		d.Publish(context.Background(), Intent{Kind: KindCreated, Request: newRequest()})
	}
	require.NoError(t, d.Close(context.Background()))

	created, _, _ := notifier.counts()
	assert.Equal(t, 5, created)

	// publishing after Close is dropped, not a panic
	d.Publish(context.Background(), Intent{Kind: KindCreated, Request: newRequest()})
	created, _, _ = notifier.counts()
	assert.Equal(t, 5, created)
	assert.NoError(t, d.Close(context.Background()))
}

func TestFullQueueDropsIntent(t *testing.T) {
	block := make(chan struct{})
	notifier := &recordingNotifier{block: block}
	d := NewDispatcher(notifier, nil, DispatcherConfig{QueueSize: 1}, zerolog.Nop())

	// the first intent occupies the worker, the second fills the queue
	d.Publish(context.Background(), Intent{Kind: KindCreated, Request: newRequest()})
	require.Eventually(t, func() bool { return len(d.queue) == 0 }, time.Second, 5*time.Millisecond)
	d.Publish(context.Background(), Intent{Kind: KindCreated, Request: newRequest()})
	d.Publish(context.Background(), Intent{Kind: KindCreated, Request: newRequest()})

	close(block)
	require.NoError(t, d.Close(context.Background()))
	created, _, _ := notifier.counts()
	assert.Equal(t, 2, created)
}

func TestCloseHonoursContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	d := NewDispatcher(&recordingNotifier{block: block}, nil, DispatcherConfig{QueueSize: 1}, zerolog.Nop())
	d.Publish(context.Background(), Intent{Kind: KindCreated, Request: newRequest()})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)
}

func TestMultiFansOut(t *testing.T) {
	first := &recordingNotifier{err: errors.New("first failed")}
	second := &recordingNotifier{todoID: "T-2"}
	third := &recordingNotifier{todoID: "T-3"}
	m := Multi{first, second, third}

	id, err := m.OnCreated(context.Background(), *newRequest())
	assert.Equal(t, "T-2", id)
	assert.ErrorContains(t, err, "first failed")

	require.Error(t, m.OnCompleted(context.Background(), *newRequest()))
	for _, n := range []*recordingNotifier{first, second, third} {
		_, completed, _ := n.counts()
		assert.Equal(t, 1, completed)
	}
	assert.NoError(t, Multi{second, third}.OnOverdue(context.Background(), model.BorrowRecord{}))
}
