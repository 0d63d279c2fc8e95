package repository

import (
	"context"
	"time"

	"github.com/dootask/asset-hub-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalFilter narrows approval listings. Zero values mean "any".
type ApprovalFilter struct {
	Status       string
	Type         model.ActionType
	ApplicantID  string
	ApproverID   string
	ApproverIDs  []string // approver must be one of these (role scope)
	AssetID      *uuid.UUID
	ConsumableID *uuid.UUID
	Offset       int
	Limit        int
}

type ApprovalRepository interface {
	Create(ctx context.Context, req *model.ApprovalRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error)
	List(ctx context.Context, filter ApprovalFilter) ([]model.ApprovalRequest, int64, error)
	Update(ctx context.Context, req *model.ApprovalRequest) error
	SetExternalTodoID(ctx context.Context, id uuid.UUID, externalID string) error
	// HasPendingForOperation reports whether a pending request already links the asset or consumable operation
	HasPendingForOperation(ctx context.Context, operationID uuid.UUID) (bool, error)
}

type approvalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, req *model.ApprovalRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *approvalRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	var req model.ApprovalRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "approval request not found")
	}
	return &req, nil
}

// FindByIDForUpdate locks the row until the surrounding transaction ends.
// Concurrent transitions on the same request serialize here.
func (r *approvalRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	var req model.ApprovalRequest
	if err := forUpdate(GetDB(ctx, r.db)).First(&req, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "approval request not found")
	}
	return &req, nil
}

func (r *approvalRepository) List(ctx context.Context, filter ApprovalFilter) ([]model.ApprovalRequest, int64, error) {
	var requests []model.ApprovalRequest
	var total int64

	query := applyApprovalFilter(GetDB(ctx, r.db).Model(&model.ApprovalRequest{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fetchQuery := applyApprovalFilter(GetDB(ctx, r.db), filter)
	if filter.Limit > 0 {
		fetchQuery = fetchQuery.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := fetchQuery.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func applyApprovalFilter(query *gorm.DB, filter ApprovalFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.ApplicantID != "" {
		query = query.Where("applicant_id = ?", filter.ApplicantID)
	}
	if filter.ApproverID != "" {
		query = query.Where("approver_id = ?", filter.ApproverID)
	}
	if filter.ApproverIDs != nil {
		query = query.Where("approver_id IN ?", filter.ApproverIDs)
	}
	if filter.AssetID != nil {
		query = query.Where("asset_id = ?", *filter.AssetID)
	}
	if filter.ConsumableID != nil {
		query = query.Where("consumable_id = ?", *filter.ConsumableID)
	}
	return query
}

func (r *approvalRepository) Update(ctx context.Context, req *model.ApprovalRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}

// SetExternalTodoID links a propagated todo without touching any other column
func (r *approvalRepository) SetExternalTodoID(ctx context.Context, id uuid.UUID, externalID string) error {
	return GetDB(ctx, r.db).Model(&model.ApprovalRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"external_todo_id": externalID, "updated_at": time.Now()}).Error
}

func (r *approvalRepository) HasPendingForOperation(ctx context.Context, operationID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.ApprovalRequest{}).
		Where("status = ?", model.ApprovalPending).
		Where("operation_id = ? OR consumable_operation_id = ?", operationID, operationID).
		Count(&count).Error
	return count > 0, err
}
