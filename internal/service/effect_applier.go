package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dootask/asset-hub-sub002/internal/model"
	"github.com/dootask/asset-hub-sub002/internal/repository"
	"github.com/dootask/asset-hub-sub002/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

// effectKind is what an approved action does to an asset
type effectKind uint8

const (
	effectNone effectKind = iota + 1 // operation is completed, asset untouched
	effectSetStatus
	effectBorrow
	effectReturn
)

type actionEffect struct {
	kind        effectKind
	assetStatus string
}

// actionEffects must cover every model.AllActionTypes entry; NewEffectApplier enforces it
var actionEffects = map[model.ActionType]actionEffect{
	model.ActionPurchase:    {kind: effectNone},
	model.ActionInbound:     {kind: effectSetStatus, assetStatus: model.AssetStatusIdle},
	model.ActionReceive:     {kind: effectSetStatus, assetStatus: model.AssetStatusInUse},
	model.ActionBorrow:      {kind: effectBorrow, assetStatus: model.AssetStatusInUse},
	model.ActionReturn:      {kind: effectReturn, assetStatus: model.AssetStatusIdle},
	model.ActionMaintenance: {kind: effectSetStatus, assetStatus: model.AssetStatusMaintenance},
	model.ActionDispose:     {kind: effectSetStatus, assetStatus: model.AssetStatusRetired},
	model.ActionOutbound:    {kind: effectNone},
	model.ActionReserve:     {kind: effectNone},
	model.ActionRelease:     {kind: effectNone},
	model.ActionAdjust:      {kind: effectNone},
	model.ActionOther:       {kind: effectNone},
}

func effectFor(t model.ActionType) actionEffect {
	return actionEffects[t.ConfigType()]
}

// EffectApplier mutates the subject of an approved request. Every method expects to run
// inside a transaction started by repository.TransactionManager.
type EffectApplier interface {
	// ApplyApproved runs the single applier chosen by the request's subject
	ApplyApproved(ctx context.Context, req *model.ApprovalRequest) error
	// CancelLinked marks the request's pending operation cancelled
	CancelLinked(ctx context.Context, req *model.ApprovalRequest) error
	ApplyAssetOperation(ctx context.Context, op *model.Operation) error
	ApplyConsumableOperation(ctx context.Context, op *model.ConsumableOperation) error
}

type effectApplier struct {
	assetRepo      repository.AssetRepository
	consumableRepo repository.ConsumableRepository
	operationRepo  repository.OperationRepository
	borrowRepo     repository.BorrowRepository
	log            zerolog.Logger
	now            func() time.Time
}

// NewEffectApplier panics when an action type has no registered effect
func NewEffectApplier(
	assetRepo repository.AssetRepository,
	consumableRepo repository.ConsumableRepository,
	operationRepo repository.OperationRepository,
	borrowRepo repository.BorrowRepository,
	log zerolog.Logger,
) EffectApplier {
	for _, t := range model.AllActionTypes {
		if _, ok := actionEffects[t]; !ok {
			panic(fmt.Sprintf("service: no side effect registered for action type %q", t))
		}
	}
	return &effectApplier{
		assetRepo:      assetRepo,
		consumableRepo: consumableRepo,
		operationRepo:  operationRepo,
		borrowRepo:     borrowRepo,
		log:            log.With().Str("component", "effects").Logger(),
		now:            time.Now,
	}
}

func (a *effectApplier) ApplyApproved(ctx context.Context, req *model.ApprovalRequest) error {
	switch {
	case req.AssetID != nil:
		if req.OperationID == nil {
			// no payload: only the status transition of the action applies
			return a.setAssetStatus(ctx, *req.AssetID, effectFor(req.Type))
		}
		op, err := a.operationRepo.FindByID(ctx, *req.OperationID)
		if err != nil {
			return err
		}
		if op.AssetID != *req.AssetID {
			return apperror.New(apperror.CodeValidation, "operation does not belong to the request's asset")
		}
		return a.ApplyAssetOperation(ctx, op)

	case req.ConsumableID != nil:
		if req.ConsumableOperationID == nil {
			return nil
		}
		op, err := a.operationRepo.FindConsumableByID(ctx, *req.ConsumableOperationID)
		if err != nil {
			return err
		}
		if op.ConsumableID != *req.ConsumableID {
			return apperror.New(apperror.CodeValidation, "operation does not belong to the request's consumable")
		}
		return a.ApplyConsumableOperation(ctx, op)
	}
	return nil
}

func (a *effectApplier) CancelLinked(ctx context.Context, req *model.ApprovalRequest) error {
	if req.OperationID != nil {
		if err := a.operationRepo.SetStatus(ctx, *req.OperationID, model.OperationCancelled); err != nil {
			return apperror.Wrap(err, apperror.CodeInternal, "failed to cancel operation")
		}
	}
	if req.ConsumableOperationID != nil {
		if err := a.operationRepo.SetConsumableStatus(ctx, *req.ConsumableOperationID, model.OperationCancelled); err != nil {
			return apperror.Wrap(err, apperror.CodeInternal, "failed to cancel consumable operation")
		}
	}
	return nil
}

func (a *effectApplier) ApplyAssetOperation(ctx context.Context, op *model.Operation) error {
	if op.Status != model.OperationPending {
		return apperror.Newf(apperror.CodeAlreadyFinalized, "operation %s is already %s", op.ID, op.Status)
	}
	effect := effectFor(op.Type)
	if err := a.setAssetStatus(ctx, op.AssetID, effect); err != nil {
		return err
	}

	switch effect.kind {
	case effectBorrow:
		fields := parseTemplateFields(op.Metadata)
		borrower := fields.borrower()
		if borrower == "" {
			borrower = op.Actor
		}
		rec := &model.BorrowRecord{
			AssetID:           op.AssetID,
			BorrowOperationID: op.ID,
			Borrower:          borrower,
			PlannedReturnAt:   fields.plannedReturn(),
			Status:            model.BorrowActive,
		}
		if err := a.borrowRepo.Upsert(ctx, rec); err != nil {
			return apperror.Wrap(err, apperror.CodeInternal, "failed to record borrow")
		}

	case effectReturn:
		rec, err := a.borrowRepo.FindActiveByAsset(ctx, op.AssetID)
		if err != nil {
			return apperror.Wrap(err, apperror.CodeInternal, "failed to load borrow record")
		}
		if rec == nil {
			a.log.Debug().Str("asset_id", op.AssetID.String()).Msg("return without an active borrow record")
			break
		}
		if err := a.borrowRepo.MarkReturned(ctx, rec.ID, op.ID, a.now()); err != nil {
			return apperror.Wrap(err, apperror.CodeInternal, "failed to close borrow record")
		}
	}

	if err := a.operationRepo.SetStatus(ctx, op.ID, model.OperationDone); err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "failed to complete operation")
	}
	op.Status = model.OperationDone
	return nil
}

func (a *effectApplier) setAssetStatus(ctx context.Context, assetID uuid.UUID, effect actionEffect) error {
	asset, err := a.assetRepo.FindByIDForUpdate(ctx, assetID)
	if err != nil {
		return err
	}
	if effect.assetStatus == "" || asset.Status == effect.assetStatus {
		return nil
	}
	if err := a.assetRepo.UpdateStatus(ctx, asset.ID, effect.assetStatus); err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "failed to update asset status")
	}
	return nil
}

func (a *effectApplier) ApplyConsumableOperation(ctx context.Context, op *model.ConsumableOperation) error {
	if op.Status != model.OperationPending {
		return apperror.Newf(apperror.CodeAlreadyFinalized, "operation %s is already %s", op.ID, op.Status)
	}
	c, err := a.consumableRepo.FindByIDForUpdate(ctx, op.ConsumableID)
	if err != nil {
		return err
	}

	quantity := c.Quantity + op.QuantityDelta
	reserved := c.Reserved + op.ReservedDelta
	if quantity < 0 {
		return apperror.Newf(apperror.CodeInsufficientStock,
			"insufficient stock for %s: have %d, change %d", c.Name, c.Quantity, op.QuantityDelta)
	}
	if reserved < 0 {
		return apperror.Newf(apperror.CodeInsufficientStock,
			"insufficient reserved stock for %s: have %d, change %d", c.Name, c.Reserved, op.ReservedDelta)
	}

	status := model.DeriveConsumableStatus(quantity, reserved, c.SafetyStock)
	if err := a.consumableRepo.UpdateStock(ctx, c.ID, quantity, reserved, status); err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "failed to update stock")
	}
	if err := a.operationRepo.MarkConsumableApplied(ctx, op.ID, quantity, reserved); err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "failed to complete consumable operation")
	}

	op.Status = model.OperationDone
	op.QuantityAfter = &quantity
	op.ReservedAfter = &reserved
	return nil
}

var (
	borrowerKeys      = []string{"borrower", "borrowerName", "user", "applicant"}
	plannedReturnKeys = []string{"plannedReturnDate", "returnPlanDate", "expectedReturnDate", "returnDate"}
)

// templateFields is the decoded operation template; values may sit at the top level or under "fields"
type templateFields struct {
	top    map[string]interface{}
	nested map[string]interface{}
}

func parseTemplateFields(raw datatypes.JSON) templateFields {
	var tf templateFields
	if len(raw) == 0 {
		return tf
	}
	if err := json.Unmarshal(raw, &tf.top); err != nil {
		return templateFields{}
	}
	if f, ok := tf.top["fields"].(map[string]interface{}); ok {
		tf.nested = f
	}
	return tf
}

// first returns the first non-empty string among keys
func (tf templateFields) first(keys []string) string {
	for _, k := range keys {
		for _, m := range []map[string]interface{}{tf.top, tf.nested} {
			if s := stringValue(m[k]); s != "" {
				return s
			}
		}
	}
	return ""
}

func (tf templateFields) borrower() string {
	return tf.first(borrowerKeys)
}

func (tf templateFields) plannedReturn() *time.Time {
	v := tf.first(plannedReturnKeys)
	if v == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

func stringValue(v interface{}) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case map[string]interface{}:
		// person pickers store {"id": ..., "name": ...}
		if s := stringValue(x["name"]); s != "" {
			return s
		}
		return stringValue(x["id"])
	default:
		return ""
	}
}
