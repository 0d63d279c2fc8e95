package repository

import (
	"context"

	"github.com/dootask/asset-hub-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OperationRepository stores the side-effect payloads of asset and consumable actions
type OperationRepository interface {
	Create(ctx context.Context, op *model.Operation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Operation, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Operation, error)
	ListByAsset(ctx context.Context, assetID uuid.UUID) ([]model.Operation, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error

	CreateConsumable(ctx context.Context, op *model.ConsumableOperation) error
	FindConsumableByID(ctx context.Context, id uuid.UUID) (*model.ConsumableOperation, error)
	FindConsumableByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ConsumableOperation, error)
	ListByConsumable(ctx context.Context, consumableID uuid.UUID) ([]model.ConsumableOperation, error)
	SetConsumableStatus(ctx context.Context, id uuid.UUID, status string) error
	MarkConsumableApplied(ctx context.Context, id uuid.UUID, quantityAfter, reservedAfter int64) error
}

type operationRepository struct {
	db *gorm.DB
}

func NewOperationRepository(db *gorm.DB) OperationRepository {
	return &operationRepository{db: db}
}

func (r *operationRepository) Create(ctx context.Context, op *model.Operation) error {
	return GetDB(ctx, r.db).Create(op).Error
}

func (r *operationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Operation, error) {
	var op model.Operation
	if err := GetDB(ctx, r.db).First(&op, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "operation not found")
	}
	return &op, nil
}

func (r *operationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Operation, error) {
	var op model.Operation
	if err := forUpdate(GetDB(ctx, r.db)).First(&op, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "operation not found")
	}
	return &op, nil
}

func (r *operationRepository) ListByAsset(ctx context.Context, assetID uuid.UUID) ([]model.Operation, error) {
	var ops []model.Operation
	if err := GetDB(ctx, r.db).Where("asset_id = ?", assetID).Order("created_at desc").Find(&ops).Error; err != nil {
		return nil, err
	}
	return ops, nil
}

func (r *operationRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.Operation{}).Where("id = ?", id).Update("status", status).Error
}

func (r *operationRepository) CreateConsumable(ctx context.Context, op *model.ConsumableOperation) error {
	return GetDB(ctx, r.db).Create(op).Error
}

func (r *operationRepository) FindConsumableByID(ctx context.Context, id uuid.UUID) (*model.ConsumableOperation, error) {
	var op model.ConsumableOperation
	if err := GetDB(ctx, r.db).First(&op, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "consumable operation not found")
	}
	return &op, nil
}

func (r *operationRepository) FindConsumableByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ConsumableOperation, error) {
	var op model.ConsumableOperation
	if err := forUpdate(GetDB(ctx, r.db)).First(&op, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "consumable operation not found")
	}
	return &op, nil
}

func (r *operationRepository) ListByConsumable(ctx context.Context, consumableID uuid.UUID) ([]model.ConsumableOperation, error) {
	var ops []model.ConsumableOperation
	if err := GetDB(ctx, r.db).Where("consumable_id = ?", consumableID).Order("created_at desc").Find(&ops).Error; err != nil {
		return nil, err
	}
	return ops, nil
}

func (r *operationRepository) SetConsumableStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.ConsumableOperation{}).Where("id = ?", id).Update("status", status).Error
}

func (r *operationRepository) MarkConsumableApplied(ctx context.Context, id uuid.UUID, quantityAfter, reservedAfter int64) error {
	return GetDB(ctx, r.db).Model(&model.ConsumableOperation{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":         model.OperationDone,
		"quantity_after": quantityAfter,
		"reserved_after": reservedAfter,
	}).Error
}
