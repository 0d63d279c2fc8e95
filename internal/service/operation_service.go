package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dootask/asset-hub-sub002/internal/model"
	"github.com/dootask/asset-hub-sub002/internal/repository"
	"github.com/dootask/asset-hub-sub002/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

// --- DTOs ---

type AssetOperationInput struct {
	Type        string             `json:"type" binding:"required"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Reason      string             `json:"reason"`
	Metadata    datatypes.JSON     `json:"metadata" swaggertype:"object"`
	Approver    *ApproverCandidate `json:"approver"`
	Actor       Actor              `json:"-"`
}

type ConsumableOperationInput struct {
	Type          string             `json:"type" binding:"required"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Reason        string             `json:"reason"`
	QuantityDelta int64              `json:"quantity_delta"`
	ReservedDelta int64              `json:"reserved_delta"`
	Metadata      datatypes.JSON     `json:"metadata" swaggertype:"object"`
	Approver      *ApproverCandidate `json:"approver"`
	Actor         Actor              `json:"-"`
}

// OperationResult carries the created operation and either its approval request or,
// when the action needs no approval, the applied operation
type OperationResult struct {
	Operation           *model.Operation           `json:"operation,omitempty"`
	ConsumableOperation *model.ConsumableOperation `json:"consumable_operation,omitempty"`
	Approval            *model.ApprovalRequest     `json:"approval,omitempty"`
	Applied             bool                       `json:"applied"`
}

// --- Interface ---

type OperationService interface {
	RequestAssetOperation(ctx context.Context, assetID uuid.UUID, in AssetOperationInput) (*OperationResult, error)
	RequestConsumableOperation(ctx context.Context, consumableID uuid.UUID, in ConsumableOperationInput) (*OperationResult, error)
	ListAssetOperations(ctx context.Context, assetID uuid.UUID) ([]model.Operation, error)
	ListConsumableOperations(ctx context.Context, consumableID uuid.UUID) ([]model.ConsumableOperation, error)
}

type operationService struct {
	txManager      repository.TransactionManager
	assetRepo      repository.AssetRepository
	consumableRepo repository.ConsumableRepository
	operationRepo  repository.OperationRepository
	configRepo     repository.ActionConfigRepository
	auditRepo      repository.AuditRepository
	approvals      ApprovalService
	effects        EffectApplier
	log            zerolog.Logger
}

func NewOperationService(
	txManager repository.TransactionManager,
	assetRepo repository.AssetRepository,
	consumableRepo repository.ConsumableRepository,
	operationRepo repository.OperationRepository,
	configRepo repository.ActionConfigRepository,
	auditRepo repository.AuditRepository,
	approvals ApprovalService,
	effects EffectApplier,
	log zerolog.Logger,
) OperationService {
	return &operationService{
		txManager:      txManager,
		assetRepo:      assetRepo,
		consumableRepo: consumableRepo,
		operationRepo:  operationRepo,
		configRepo:     configRepo,
		auditRepo:      auditRepo,
		approvals:      approvals,
		effects:        effects,
		log:            log.With().Str("component", "operations").Logger(),
	}
}

// --- Implementation ---

func (s *operationService) RequestAssetOperation(ctx context.Context, assetID uuid.UUID, in AssetOperationInput) (*OperationResult, error) {
	actionType, ok := model.ParseActionType(in.Type)
	if !ok {
		return nil, apperror.Newf(apperror.CodeValidation, "unknown action type: %s", in.Type)
	}
	if strings.TrimSpace(in.Actor.ID) == "" {
		return nil, apperror.New(apperror.CodeValidation, "actor is required")
	}

	result := &OperationResult{}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		asset, err := s.assetRepo.FindByIDForUpdate(txCtx, assetID)
		if err != nil {
			return err
		}
		if asset.Status == model.AssetStatusRetired {
			return apperror.Newf(apperror.CodeValidation, "asset %s is retired", asset.Name)
		}
		cfg, err := s.configRepo.FindByType(txCtx, actionType)
		if err != nil {
			return err
		}

		op := &model.Operation{
			AssetID:     asset.ID,
			Type:        actionType,
			Status:      model.OperationPending,
			Actor:       in.Actor.ID,
			Description: strings.TrimSpace(in.Description),
			Metadata:    in.Metadata,
		}
		if err := s.operationRepo.Create(txCtx, op); err != nil {
			return apperror.Wrap(err, apperror.CodeInternal, "failed to create operation")
		}
		result.Operation = op

		if !cfg.RequiresApproval {
			if err := s.effects.ApplyAssetOperation(txCtx, op); err != nil {
				return err
			}
			result.Applied = true
			return s.logApplied(txCtx, in.Actor, op.ID, asset.Name, actionType)
		}

		title := strings.TrimSpace(in.Title)
		if title == "" {
			title = fmt.Sprintf("%s: %s", actionType, asset.Name)
		}
		result.Approval, err = s.approvals.createPending(txCtx, CreateApprovalInput{
			Type:        string(actionType),
			Title:       title,
			Reason:      in.Reason,
			AssetID:     &asset.ID,
			OperationID: &op.ID,
			Approver:    in.Approver,
			Metadata:    in.Metadata,
			Applicant:   in.Actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.Approval != nil {
		s.approvals.announceCreated(ctx, result.Approval)
	}
	return result, nil
}

func (s *operationService) RequestConsumableOperation(ctx context.Context, consumableID uuid.UUID, in ConsumableOperationInput) (*OperationResult, error) {
	actionType, ok := model.ParseActionType(in.Type)
	if !ok {
		return nil, apperror.Newf(apperror.CodeValidation, "unknown action type: %s", in.Type)
	}
	if strings.TrimSpace(in.Actor.ID) == "" {
		return nil, apperror.New(apperror.CodeValidation, "actor is required")
	}
	if in.QuantityDelta == 0 && in.ReservedDelta == 0 {
		return nil, apperror.New(apperror.CodeValidation, "quantity_delta or reserved_delta is required")
	}

	result := &OperationResult{}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		consumable, err := s.consumableRepo.FindByID(txCtx, consumableID)
		if err != nil {
			return err
		}
		cfg, err := s.configRepo.FindByType(txCtx, actionType)
		if err != nil {
			return err
		}

		op := &model.ConsumableOperation{
			ConsumableID:  consumable.ID,
			Type:          actionType,
			Status:        model.OperationPending,
			QuantityDelta: in.QuantityDelta,
			ReservedDelta: in.ReservedDelta,
			Actor:         in.Actor.ID,
			Description:   strings.TrimSpace(in.Description),
			Metadata:      in.Metadata,
		}
		if err := s.operationRepo.CreateConsumable(txCtx, op); err != nil {
			return apperror.Wrap(err, apperror.CodeInternal, "failed to create consumable operation")
		}
		result.ConsumableOperation = op

		if !cfg.RequiresApproval {
			if err := s.effects.ApplyConsumableOperation(txCtx, op); err != nil {
				return err
			}
			result.Applied = true
			return s.logApplied(txCtx, in.Actor, op.ID, consumable.Name, actionType)
		}

		title := strings.TrimSpace(in.Title)
		if title == "" {
			title = fmt.Sprintf("%s: %s", actionType, consumable.Name)
		}
		result.Approval, err = s.approvals.createPending(txCtx, CreateApprovalInput{
			Type:                  string(actionType),
			Title:                 title,
			Reason:                in.Reason,
			ConsumableID:          &consumable.ID,
			ConsumableOperationID: &op.ID,
			Approver:              in.Approver,
			Metadata:              in.Metadata,
			Applicant:             in.Actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.Approval != nil {
		s.approvals.announceCreated(ctx, result.Approval)
	}
	return result, nil
}

func (s *operationService) logApplied(txCtx context.Context, actor Actor, opID uuid.UUID, subject string, actionType model.ActionType) error {
	audit := &model.AuditLog{
		UserID:     actor.ID,
		UserName:   actor.Name,
		Action:     model.ActionApplyOperation,
		EntityID:   opID.String(),
		EntityName: subject,
		Details:    repository.AuditDetails(map[string]interface{}{"type": actionType, "approval": false}),
	}
	if err := s.auditRepo.Log(txCtx, audit); err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "failed to write audit log")
	}
	s.log.Info().Str("operation_id", opID.String()).Str("type", string(actionType)).Msg("operation applied without approval")
	return nil
}

func (s *operationService) ListAssetOperations(ctx context.Context, assetID uuid.UUID) ([]model.Operation, error) {
	if _, err := s.assetRepo.FindByID(ctx, assetID); err != nil {
		return nil, err
	}
	ops, err := s.operationRepo.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to list operations")
	}
	return ops, nil
}

func (s *operationService) ListConsumableOperations(ctx context.Context, consumableID uuid.UUID) ([]model.ConsumableOperation, error) {
	if _, err := s.consumableRepo.FindByID(ctx, consumableID); err != nil {
		return nil, err
	}
	ops, err := s.operationRepo.ListByConsumable(ctx, consumableID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to list consumable operations")
	}
	return ops, nil
}
