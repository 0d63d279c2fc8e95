package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dootask/asset-hub-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BorrowRepository interface {
	// Upsert registers the record for (asset, borrow operation), refreshing borrower and plan on conflict
	Upsert(ctx context.Context, rec *model.BorrowRecord) error
	// FindActiveByAsset returns the most recent active record, or nil when none is open
	FindActiveByAsset(ctx context.Context, assetID uuid.UUID) (*model.BorrowRecord, error)
	MarkReturned(ctx context.Context, id uuid.UUID, returnOperationID uuid.UUID, at time.Time) error
	ListOverdue(ctx context.Context, now time.Time) ([]model.BorrowRecord, error)
	MarkOverdueNotified(ctx context.Context, id uuid.UUID, at time.Time) error
	List(ctx context.Context, assetID *uuid.UUID, status string, offset, limit int) ([]model.BorrowRecord, int64, error)
}

type borrowRepository struct {
	db *gorm.DB
}

func NewBorrowRepository(db *gorm.DB) BorrowRepository {
	return &borrowRepository{db: db}
}

func (r *borrowRepository) Upsert(ctx context.Context, rec *model.BorrowRecord) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "asset_id"}, {Name: "borrow_operation_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"borrower", "planned_return_at", "status", "updated_at"}),
	}).Create(rec).Error
}

func (r *borrowRepository) FindActiveByAsset(ctx context.Context, assetID uuid.UUID) (*model.BorrowRecord, error) {
	var rec model.BorrowRecord
	err := forUpdate(GetDB(ctx, r.db)).
		Where("asset_id = ? AND status = ?", assetID, model.BorrowActive).
		Order("created_at desc").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *borrowRepository) MarkReturned(ctx context.Context, id uuid.UUID, returnOperationID uuid.UUID, at time.Time) error {
	return GetDB(ctx, r.db).Model(&model.BorrowRecord{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":              model.BorrowReturned,
		"returned_at":         at,
		"return_operation_id": returnOperationID,
	}).Error
}

func (r *borrowRepository) ListOverdue(ctx context.Context, now time.Time) ([]model.BorrowRecord, error) {
	var recs []model.BorrowRecord
	if err := GetDB(ctx, r.db).
		Where("status = ? AND planned_return_at IS NOT NULL AND planned_return_at < ? AND overdue_notified_at IS NULL",
			model.BorrowActive, now).
		Order("planned_return_at asc").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *borrowRepository) MarkOverdueNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	return GetDB(ctx, r.db).Model(&model.BorrowRecord{}).Where("id = ?", id).Update("overdue_notified_at", at).Error
}

func (r *borrowRepository) List(ctx context.Context, assetID *uuid.UUID, status string, offset, limit int) ([]model.BorrowRecord, int64, error) {
	var recs []model.BorrowRecord
	var total int64

	db := GetDB(ctx, r.db).Model(&model.BorrowRecord{})
	if assetID != nil {
		db = db.Where("asset_id = ?", *assetID)
	}
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}
