package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dootask/asset-hub-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Kind names the event an Intent carries
type Kind string

const (
	KindCreated   Kind = "created"
	KindCompleted Kind = "completed"
	KindOverdue   Kind = "overdue"
)

// Intent is a notification the engine wants delivered after its transaction committed
type Intent struct {
	Kind    Kind
	Request *model.ApprovalRequest
	Borrow  *model.BorrowRecord
}

// Publisher accepts intents. Publish never fails and never blocks on the downstream system.
type Publisher interface {
	Publish(ctx context.Context, intent Intent)
}

// TodoStore links propagated todos back to their approval request
type TodoStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error)
	SetExternalTodoID(ctx context.Context, id uuid.UUID, externalID string) error
}

// DispatcherConfig tunes the delivery worker
type DispatcherConfig struct {
	// QueueSize bounds pending intents; 0 delivers inline on the publishing goroutine
	QueueSize int
	// CallTimeout bounds each downstream call
	CallTimeout time.Duration
}

// Dispatcher decouples notification delivery from request handling.
// A single worker drains the queue in publish order. A full queue drops the intent.
type Dispatcher struct {
	notifier Notifier
	store    TodoStore
	cfg      DispatcherConfig
	log      zerolog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan Intent
	done   chan struct{}
}

func NewDispatcher(notifier Notifier, store TodoStore, cfg DispatcherConfig, log zerolog.Logger) *Dispatcher {
	if notifier == nil {
		notifier = Nop{}
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 5 * time.Second
	}
	d := &Dispatcher{
		notifier: notifier,
		store:    store,
		cfg:      cfg,
		log:      log.With().Str("component", "notify").Logger(),
		done:     make(chan struct{}),
	}
	if cfg.QueueSize > 0 {
		d.queue = make(chan Intent, cfg.QueueSize)
		go d.run()
	} else {
		close(d.done)
	}
	return d
}

// Publish enqueues intent, or delivers it inline when the dispatcher has no queue
func (d *Dispatcher) Publish(ctx context.Context, intent Intent) {
	if d.queue == nil {
		// detach from the request so its cancellation cannot abort delivery
		d.Deliver(context.WithoutCancel(ctx), intent)
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("kind", string(intent.Kind)).Msg("notification: dispatcher closed, intent dropped")
		return
	}
	select {
	case d.queue <- intent:
	default:
		d.log.Warn().Str("kind", string(intent.Kind)).Msg("notification: queue full, intent dropped")
	}
}

// Close stops accepting intents and waits until queued ones were delivered or ctx ends
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		if d.queue != nil {
			close(d.queue)
		}
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for intent := range d.queue {
		d.Deliver(context.Background(), intent)
	}
}

// Deliver performs the downstream call for intent synchronously.
// Failures and panics are logged and swallowed.
func (d *Dispatcher) Deliver(ctx context.Context, intent Intent) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Str("kind", string(intent.Kind)).Str("panic", fmt.Sprint(r)).Msg("notification: notifier panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, d.cfg.CallTimeout)
	defer cancel()

	switch intent.Kind {
	case KindCreated:
		d.deliverCreated(ctx, intent.Request)
	case KindCompleted:
		d.deliverCompleted(ctx, intent.Request)
	case KindOverdue:
		if intent.Borrow == nil {
			return
		}
		if err := d.notifier.OnOverdue(ctx, *intent.Borrow); err != nil {
			d.log.Warn().Err(err).Str("borrow_id", intent.Borrow.ID.String()).Msg("notification: overdue reminder failed (non-fatal)")
		}
	default:
		d.log.Warn().Str("kind", string(intent.Kind)).Msg("notification: unknown intent kind")
	}
}

func (d *Dispatcher) deliverCreated(ctx context.Context, req *model.ApprovalRequest) {
	if req == nil {
		return
	}
	externalID, err := d.notifier.OnCreated(ctx, *req)
	if err != nil {
		d.log.Warn().Err(err).Str("approval_id", req.ID.String()).Msg("notification: create todo failed (non-fatal)")
	}
	if externalID == "" || d.store == nil {
		return
	}
	if err := d.store.SetExternalTodoID(ctx, req.ID, externalID); err != nil {
		d.log.Warn().Err(err).Str("approval_id", req.ID.String()).Str("todo_id", externalID).Msg("notification: failed to link todo")
		return
	}
	d.log.Debug().Str("approval_id", req.ID.String()).Str("todo_id", externalID).Msg("notification: todo created")
}

func (d *Dispatcher) deliverCompleted(ctx context.Context, req *model.ApprovalRequest) {
	if req == nil {
		return
	}
	// the creation intent may have linked the todo after this snapshot was taken
	if req.ExternalTodoID == nil && d.store != nil {
		if latest, err := d.store.FindByID(ctx, req.ID); err == nil && latest.ExternalTodoID != nil {
			snapshot := *req
			snapshot.ExternalTodoID = latest.ExternalTodoID
			req = &snapshot
		}
	}
	if err := d.notifier.OnCompleted(ctx, *req); err != nil {
		d.log.Warn().Err(err).Str("approval_id", req.ID.String()).Str("status", req.Status).Msg("notification: complete todo failed (non-fatal)")
	}
}
