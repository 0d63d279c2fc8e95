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
	"gorm.io/datatypes"
)

// --- DTOs ---

// Actor is the authenticated user behind a call
type Actor struct {
	ID   string
	Name string
	// Manager may decide requests assigned to another approver
	Manager bool
}

type CreateApprovalInput struct {
	Type                  string
	Title                 string
	Reason                string
	AssetID               *uuid.UUID
	ConsumableID          *uuid.UUID
	OperationID           *uuid.UUID
	ConsumableOperationID *uuid.UUID
	Approver              *ApproverCandidate
	Metadata              datatypes.JSON
	Applicant             Actor
}

// Transition actions accepted by Apply
const (
	TransitionApprove = "approve"
	TransitionReject  = "reject"
	TransitionCancel  = "cancel"
)

type ApplyInput struct {
	Action  string
	Actor   Actor
	Comment string
}

type ApprovalListFilter struct {
	Status       string
	Type         string
	ApplicantID  string
	ApproverID   string
	RoleID       string // approver must be a member of this role
	AssetID      *uuid.UUID
	ConsumableID *uuid.UUID
	Page         int
	PageSize     int
}

// ApproverPreview is what a UI needs to prompt for an approver before creating a request
type ApproverPreview struct {
	ActionType       model.ActionType `json:"action_type"`
	RequiresApproval bool             `json:"requires_approval"`
	AllowOverride    bool             `json:"allow_override"`
	Approver         *Approver        `json:"approver"`
	Candidates       []string         `json:"candidates,omitempty"`
}

// --- Interface ---

type ApprovalService interface {
	Create(ctx context.Context, in CreateApprovalInput) (*model.ApprovalRequest, error)
	Apply(ctx context.Context, id uuid.UUID, in ApplyInput) (*model.ApprovalRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error)
	List(ctx context.Context, filter ApprovalListFilter) ([]model.ApprovalRequest, int64, error)
	PreviewApprover(ctx context.Context, actionType string, requested *ApproverCandidate) (*ApproverPreview, error)

	// createPending persists a pending request inside the caller's transaction;
	// the caller announces it once that transaction committed.
	createPending(txCtx context.Context, in CreateApprovalInput) (*model.ApprovalRequest, error)
	announceCreated(ctx context.Context, req *model.ApprovalRequest)
}

type approvalService struct {
	txManager      repository.TransactionManager
	approvalRepo   repository.ApprovalRepository
	configRepo     repository.ActionConfigRepository
	roleRepo       repository.RoleRepository
	assetRepo      repository.AssetRepository
	consumableRepo repository.ConsumableRepository
	operationRepo  repository.OperationRepository
	auditRepo      repository.AuditRepository
	resolver       ApproverResolver
	effects        EffectApplier
	publisher      notify.Publisher
	log            zerolog.Logger
	now            func() time.Time
}

func NewApprovalService(
	txManager repository.TransactionManager,
	approvalRepo repository.ApprovalRepository,
	configRepo repository.ActionConfigRepository,
	roleRepo repository.RoleRepository,
	assetRepo repository.AssetRepository,
	consumableRepo repository.ConsumableRepository,
	operationRepo repository.OperationRepository,
	auditRepo repository.AuditRepository,
	resolver ApproverResolver,
	effects EffectApplier,
	publisher notify.Publisher,
	log zerolog.Logger,
) ApprovalService {
	return &approvalService{
		txManager:      txManager,
		approvalRepo:   approvalRepo,
		configRepo:     configRepo,
		roleRepo:       roleRepo,
		assetRepo:      assetRepo,
		consumableRepo: consumableRepo,
		operationRepo:  operationRepo,
		auditRepo:      auditRepo,
		resolver:       resolver,
		effects:        effects,
		publisher:      publisher,
		log:            log.With().Str("component", "approvals").Logger(),
		now:            time.Now,
	}
}

// --- Implementation ---

func (s *approvalService) Create(ctx context.Context, in CreateApprovalInput) (*model.ApprovalRequest, error) {
	var req *model.ApprovalRequest
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		req, err = s.createPending(txCtx, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.announceCreated(ctx, req)
	return req, nil
}

func (s *approvalService) createPending(txCtx context.Context, in CreateApprovalInput) (*model.ApprovalRequest, error) {
	actionType, err := validateCreate(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkSubject(txCtx, in); err != nil {
		return nil, err
	}
	if err := s.checkOperation(txCtx, in, actionType); err != nil {
		return nil, err
	}

	cfg, err := s.configRepo.FindByType(txCtx, actionType.ConfigType())
	if err != nil {
		return nil, err
	}
	approver, err := s.resolver.Resolve(txCtx, *cfg, in.Approver)
	if err != nil {
		return nil, err
	}
	if approver == nil && cfg.DefaultApproverType == model.ApproverTypeRole {
		return nil, apperror.New(apperror.CodeValidation, "approver must be chosen from role members")
	}

	now := s.now()
	req := &model.ApprovalRequest{
		AssetID:               in.AssetID,
		ConsumableID:          in.ConsumableID,
		OperationID:           in.OperationID,
		ConsumableOperationID: in.ConsumableOperationID,
		Type:                  actionType,
		Status:                model.ApprovalPending,
		Title:                 strings.TrimSpace(in.Title),
		Reason:                strings.TrimSpace(in.Reason),
		ApplicantID:           in.Applicant.ID,
		ApplicantName:         in.Applicant.Name,
		Metadata:              in.Metadata,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if approver != nil {
		req.ApproverID = &approver.ID
		if approver.Name != "" {
			req.ApproverName = &approver.Name
		}
	}

	if err := s.approvalRepo.Create(txCtx, req); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to create approval request")
	}

	audit := &model.AuditLog{
		UserID:     in.Applicant.ID,
		UserName:   in.Applicant.Name,
		Action:     model.ActionCreateApprovalRequest,
		EntityID:   req.ID.String(),
		EntityName: req.Title,
		Details: repository.AuditDetails(map[string]interface{}{
			"type":        req.Type,
			"approver_id": req.ApproverID,
			"asset_id":    req.AssetID,
			"consumable":  req.ConsumableID,
		}),
	}
	if err := s.auditRepo.Log(txCtx, audit); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to write audit log")
	}

	return req, nil
}

func validateCreate(in CreateApprovalInput) (model.ActionType, error) {
	if strings.TrimSpace(in.Title) == "" {
		return "", apperror.New(apperror.CodeValidation, "title is required")
	}
	if strings.TrimSpace(in.Applicant.ID) == "" {
		return "", apperror.New(apperror.CodeValidation, "applicant is required")
	}
	actionType := model.ActionType(strings.ToLower(strings.TrimSpace(in.Type)))
	if actionType == "" {
		actionType = model.ActionGeneric
	}
	if !actionType.Valid() {
		return "", apperror.Newf(apperror.CodeValidation, "unknown action type: %s", in.Type)
	}
	if in.AssetID != nil && in.ConsumableID != nil {
		return "", apperror.New(apperror.CodeValidation, "a request targets at most one asset or consumable")
	}
	if in.OperationID != nil && in.AssetID == nil {
		return "", apperror.New(apperror.CodeValidation, "operation requires an asset")
	}
	if in.ConsumableOperationID != nil && in.ConsumableID == nil {
		return "", apperror.New(apperror.CodeValidation, "consumable operation requires a consumable")
	}
	if kind := effectFor(actionType).kind; (kind == effectBorrow || kind == effectReturn) && in.OperationID == nil {
		return "", apperror.Newf(apperror.CodeValidation, "%s requests need an asset operation", actionType)
	}
	return actionType, nil
}

// checkOperation locks the linked operation and makes sure this request is the only
// pending approval for it, of the same action type and subject.
func (s *approvalService) checkOperation(txCtx context.Context, in CreateApprovalInput, actionType model.ActionType) error {
	var (
		opID   uuid.UUID
		opType model.ActionType
		status string
	)
	switch {
	case in.OperationID != nil:
		op, err := s.operationRepo.FindByIDForUpdate(txCtx, *in.OperationID)
		if err != nil {
			return err
		}
		if op.AssetID != *in.AssetID {
			return apperror.New(apperror.CodeValidation, "operation does not belong to the request's asset")
		}
		opID, opType, status = op.ID, op.Type, op.Status
	case in.ConsumableOperationID != nil:
		op, err := s.operationRepo.FindConsumableByIDForUpdate(txCtx, *in.ConsumableOperationID)
		if err != nil {
			return err
		}
		if op.ConsumableID != *in.ConsumableID {
			return apperror.New(apperror.CodeValidation, "operation does not belong to the request's consumable")
		}
		opID, opType, status = op.ID, op.Type, op.Status
	default:
		return nil
	}

	if status != model.OperationPending {
		return apperror.Newf(apperror.CodeValidation, "operation %s is already %s", opID, status)
	}
	if opType != actionType {
		return apperror.Newf(apperror.CodeValidation, "operation type %s does not match request type %s", opType, actionType)
	}
	linked, err := s.approvalRepo.HasPendingForOperation(txCtx, opID)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "failed to check linked approvals")
	}
	if linked {
		return apperror.Newf(apperror.CodeValidation, "operation %s already has a pending approval", opID)
	}
	return nil
}

func (s *approvalService) checkSubject(txCtx context.Context, in CreateApprovalInput) error {
	if in.AssetID != nil {
		if _, err := s.assetRepo.FindByID(txCtx, *in.AssetID); err != nil {
			return err
		}
	}
	if in.ConsumableID != nil {
		if _, err := s.consumableRepo.FindByID(txCtx, *in.ConsumableID); err != nil {
			return err
		}
	}
	return nil
}

func (s *approvalService) announceCreated(ctx context.Context, req *model.ApprovalRequest) {
	snapshot := *req
	s.publisher.Publish(ctx, notify.Intent{Kind: notify.KindCreated, Request: &snapshot})
	s.log.Info().
		Str("approval_id", req.ID.String()).
		Str("type", string(req.Type)).
		Str("applicant", req.ApplicantID).
		Msg("approval request created")
}

func (s *approvalService) Apply(ctx context.Context, id uuid.UUID, in ApplyInput) (*model.ApprovalRequest, error) {
	action := strings.ToLower(strings.TrimSpace(in.Action))
	var status, auditAction string
	switch action {
	case TransitionApprove:
		status, auditAction = model.ApprovalApproved, model.ActionApproveRequest
	case TransitionReject:
		status, auditAction = model.ApprovalRejected, model.ActionRejectRequest
	case TransitionCancel:
		status, auditAction = model.ApprovalCancelled, model.ActionCancelRequest
	default:
		return nil, apperror.Newf(apperror.CodeValidation, "unknown action: %s", in.Action)
	}
	if strings.TrimSpace(in.Actor.ID) == "" {
		return nil, apperror.New(apperror.CodeValidation, "actor is required")
	}

	var result *model.ApprovalRequest
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.approvalRepo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if model.IsTerminalApprovalStatus(req.Status) {
			return apperror.Newf(apperror.CodeAlreadyFinalized, "approval request is already %s", req.Status)
		}
		if err := authorizeTransition(req, action, in.Actor); err != nil {
			return err
		}

		now := s.now()
		req.Status = status
		req.UpdatedAt = now
		req.CompletedAt = &now
		if comment := strings.TrimSpace(in.Comment); comment != "" {
			req.Result = &comment
		}
		if action != TransitionCancel {
			actorID, actorName := in.Actor.ID, in.Actor.Name
			req.ApproverID = &actorID
			if actorName != "" {
				req.ApproverName = &actorName
			}
		}

		if action == TransitionApprove {
			if err := s.effects.ApplyApproved(txCtx, req); err != nil {
				return err
			}
		} else if err := s.effects.CancelLinked(txCtx, req); err != nil {
			return err
		}

		if err := s.approvalRepo.Update(txCtx, req); err != nil {
			return apperror.Wrap(err, apperror.CodeInternal, "failed to update approval request")
		}

		audit := &model.AuditLog{
			UserID:     in.Actor.ID,
			UserName:   in.Actor.Name,
			Action:     auditAction,
			EntityID:   req.ID.String(),
			EntityName: req.Title,
			Details: repository.AuditDetails(map[string]interface{}{
				"type":    req.Type,
				"status":  req.Status,
				"comment": in.Comment,
			}),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return apperror.Wrap(err, apperror.CodeInternal, "failed to write audit log")
		}

		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	snapshot := *result
	s.publisher.Publish(ctx, notify.Intent{Kind: notify.KindCompleted, Request: &snapshot})
	s.log.Info().
		Str("approval_id", result.ID.String()).
		Str("status", result.Status).
		Str("actor", in.Actor.ID).
		Msg("approval request completed")

	return result, nil
}

// authorizeTransition: only the applicant cancels; approve/reject belong to the assigned approver
// unless the actor is a manager. Requests without an approver are open to any approver.
func authorizeTransition(req *model.ApprovalRequest, action string, actor Actor) error {
	if action == TransitionCancel {
		if actor.ID != req.ApplicantID {
			return apperror.New(apperror.CodeForbidden, "only the applicant can cancel a request")
		}
		return nil
	}
	if req.ApproverID != nil && *req.ApproverID != actor.ID && !actor.Manager {
		return apperror.New(apperror.CodeForbidden, "request is assigned to another approver")
	}
	return nil
}

func (s *approvalService) Get(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	return s.approvalRepo.FindByID(ctx, id)
}

func (s *approvalService) List(ctx context.Context, filter ApprovalListFilter) ([]model.ApprovalRequest, int64, error) {
	page := pagination.New(filter.Page, filter.PageSize)
	repoFilter := repository.ApprovalFilter{
		Status:       strings.TrimSpace(filter.Status),
		ApplicantID:  strings.TrimSpace(filter.ApplicantID),
		ApproverID:   strings.TrimSpace(filter.ApproverID),
		AssetID:      filter.AssetID,
		ConsumableID: filter.ConsumableID,
		Offset:       page.Offset,
		Limit:        page.PageSize,
	}
	if t := strings.TrimSpace(filter.Type); t != "" {
		actionType := model.ActionType(strings.ToLower(t))
		if !actionType.Valid() {
			return nil, 0, apperror.Newf(apperror.CodeValidation, "unknown action type: %s", filter.Type)
		}
		repoFilter.Type = actionType
	}
	if roleID := strings.TrimSpace(filter.RoleID); roleID != "" {
		role, err := s.roleRepo.FindByID(ctx, roleID)
		if err != nil {
			return nil, 0, err
		}
		repoFilter.ApproverIDs = model.NormalizeMembers(role.Members)
	}

	items, total, err := s.approvalRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodeInternal, "failed to list approval requests")
	}
	return items, total, nil
}

func (s *approvalService) PreviewApprover(ctx context.Context, actionType string, requested *ApproverCandidate) (*ApproverPreview, error) {
	t := model.ActionType(strings.ToLower(strings.TrimSpace(actionType)))
	if !t.Valid() {
		return nil, apperror.Newf(apperror.CodeValidation, "unknown action type: %s", actionType)
	}
	cfg, err := s.configRepo.FindByType(ctx, t.ConfigType())
	if err != nil {
		return nil, err
	}

	preview := &ApproverPreview{
		ActionType:       t,
		RequiresApproval: cfg.RequiresApproval,
		AllowOverride:    cfg.AllowOverride,
	}
	preview.Approver, err = s.resolver.Resolve(ctx, *cfg, requested)
	if err != nil {
		return nil, err
	}
	if preview.Approver == nil {
		if preview.Candidates, err = s.resolver.Candidates(ctx, *cfg); err != nil {
			return nil, err
		}
	}
	return preview, nil
}
