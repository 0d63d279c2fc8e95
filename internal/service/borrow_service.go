package service

import (
	"context"
	"strings"
	"time"

	"github.com/dootask/asset-hub-sub002/internal/model"
	"github.com/dootask/asset-hub-sub002/internal/notify"
	"github.com/dootask/asset-hub-sub002/internal/repository"
	"github.com/dootask/asset-hub-sub002/pkg/apperror"
	"github.com/dootask/asset-hub-sub002/pkg/pagination"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type BorrowListFilter struct {
	AssetID  *uuid.UUID
	Status   string
	Page     int
	PageSize int
}

type BorrowService interface {
	List(ctx context.Context, filter BorrowListFilter) ([]model.BorrowRecord, int64, error)
	// NotifyOverdue publishes one reminder per active record past its planned return and
	// returns how many were sent. Each record is reminded at most once.
	NotifyOverdue(ctx context.Context, now time.Time) (int, error)
}

type borrowService struct {
	borrowRepo repository.BorrowRepository
	publisher  notify.Publisher
	log        zerolog.Logger
}

func NewBorrowService(borrowRepo repository.BorrowRepository, publisher notify.Publisher, log zerolog.Logger) BorrowService {
	return &borrowService{
		borrowRepo: borrowRepo,
		publisher:  publisher,
		log:        log.With().Str("component", "borrow").Logger(),
	}
}

func (s *borrowService) List(ctx context.Context, filter BorrowListFilter) ([]model.BorrowRecord, int64, error) {
	status := strings.TrimSpace(filter.Status)
	if status != "" && status != model.BorrowActive && status != model.BorrowReturned {
		return nil, 0, apperror.Newf(apperror.CodeValidation, "unknown borrow status: %s", filter.Status)
	}
	p := pagination.New(filter.Page, filter.PageSize)
	recs, total, err := s.borrowRepo.List(ctx, filter.AssetID, status, p.Offset, p.PageSize)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodeInternal, "failed to list borrow records")
	}
	return recs, total, nil
}

func (s *borrowService) NotifyOverdue(ctx context.Context, now time.Time) (int, error) {
	recs, err := s.borrowRepo.ListOverdue(ctx, now)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.CodeInternal, "failed to list overdue borrow records")
	}

	sent := 0
	for i := range recs {
		rec := recs[i]
		// mark first: a reminder lost downstream is preferred over a repeated one
		if err := s.borrowRepo.MarkOverdueNotified(ctx, rec.ID, now); err != nil {
			s.log.Error().Err(err).Str("borrow_id", rec.ID.String()).Msg("failed to mark overdue reminder")
			continue
		}
		rec.OverdueNotifiedAt = &now
		s.publisher.Publish(ctx, notify.Intent{Kind: notify.KindOverdue, Borrow: &rec})
		sent++
	}
	if sent > 0 {
		s.log.Info().Int("count", sent).Msg("overdue borrow reminders sent")
	}
	return sent, nil
}
