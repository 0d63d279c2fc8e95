// Package notify propagates approval outcomes to systems outside the service.
//
// Delivery is best effort and at most once: every failure is logged and dropped,
// and nothing here ever reports back to the code that changed approval state.
package notify

import (
	"context"
	"errors"

	"github.com/dootask/asset-hub-sub002/internal/model"
)

// Notifier performs the outbound calls for one downstream system
type Notifier interface {
	// OnCreated announces a new pending request and returns the downstream id, if any
	OnCreated(ctx context.Context, req model.ApprovalRequest) (string, error)
	// OnCompleted closes the downstream item for a finalized request
	OnCompleted(ctx context.Context, req model.ApprovalRequest) error
	// OnOverdue reminds the borrower of an overdue asset
	OnOverdue(ctx context.Context, rec model.BorrowRecord) error
}

// Nop is the notifier used when nothing downstream is configured
type Nop struct{}

func (Nop) OnCreated(context.Context, model.ApprovalRequest) (string, error) { return "", nil }
func (Nop) OnCompleted(context.Context, model.ApprovalRequest) error         { return nil }
func (Nop) OnOverdue(context.Context, model.BorrowRecord) error              { return nil }

// Multi fans out to several notifiers. The first non-empty external id wins.
type Multi []Notifier

func (m Multi) OnCreated(ctx context.Context, req model.ApprovalRequest) (string, error) {
	var externalID string
	var errs []error
	for _, n := range m {
		id, err := n.OnCreated(ctx, req)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if externalID == "" {
			externalID = id
		}
	}
	return externalID, errors.Join(errs...)
}

func (m Multi) OnCompleted(ctx context.Context, req model.ApprovalRequest) error {
	var errs []error
	for _, n := range m {
		if err := n.OnCompleted(ctx, req); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) OnOverdue(ctx context.Context, rec model.BorrowRecord) error {
	var errs []error
	for _, n := range m {
		if err := n.OnOverdue(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
