package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/dootask/asset-hub-sub002/internal/model"
	"github.com/dootask/asset-hub-sub002/internal/notify"
	"github.com/dootask/asset-hub-sub002/internal/repository"
	"github.com/dootask/asset-hub-sub002/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestCreateThenGet(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.approvals.Create(env.ctx, CreateApprovalInput{
		Type:      "generic",
		Title:     "  New monitor  ",
		Reason:    "broken screen",
		Approver:  &ApproverCandidate{ID: "U1", Name: "Bob"},
		Metadata:  datatypes.JSON(`{"note":"urgent"}`),
		Applicant: testApplicant,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalPending, created.Status)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.Nil(t, created.CompletedAt)

	got, err := env.approvals.Get(env.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "New monitor", got.Title)
	assert.Equal(t, "broken screen", got.Reason)
	assert.Equal(t, model.ActionGeneric, got.Type)
	assert.Equal(t, "U100", got.ApplicantID)
	require.NotNil(t, got.ApproverID)
	assert.Equal(t, "U1", *got.ApproverID)
	require.NotNil(t, got.ApproverName)
	assert.Equal(t, "Bob", *got.ApproverName)
	assert.JSONEq(t, `{"note":"urgent"}`, string(got.Metadata))

	require.Len(t, env.publisher.intents, 1)
	assert.Equal(t, notify.KindCreated, env.publisher.intents[0].Kind)
	assert.Equal(t, created.ID, env.publisher.intents[0].Request.ID)

	logs, total, err := env.auditRepo.List(env.ctx, created.ID.String(), 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, model.ActionCreateApprovalRequest, logs[0].Action)
}

func TestCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	asset := env.addAsset(t, model.AssetStatusIdle)
	c := env.addConsumable(t, 1, 0)
	missing := uuid.New()
	opID := uuid.New()

	tests := []struct {
		name     string
		in       CreateApprovalInput
		wantCode apperror.Code
	}{
		{"title required", CreateApprovalInput{Type: "other", Title: "  ", Applicant: testApplicant}, apperror.CodeValidation},
		{"applicant required", CreateApprovalInput{Type: "other", Title: "x"}, apperror.CodeValidation},
		{"unknown type", CreateApprovalInput{Type: "teleport", Title: "x", Applicant: testApplicant}, apperror.CodeValidation},
		{"two subjects", CreateApprovalInput{Type: "other", Title: "x", AssetID: &asset.ID, ConsumableID: &c.ID, Applicant: testApplicant}, apperror.CodeValidation},
		{"operation without asset", CreateApprovalInput{Type: "other", Title: "x", OperationID: &opID, Applicant: testApplicant}, apperror.CodeValidation},
		{"unknown asset", CreateApprovalInput{Type: "other", Title: "x", AssetID: &missing, Applicant: testApplicant}, apperror.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.approvals.Create(env.ctx, tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperror.CodeOf(err))
		})
	}
	assert.Empty(t, env.publisher.intents)
}

func TestCreateResolvesRoleApprover(t *testing.T) {
	env := newTestEnv(t)
	env.addRole(t, "ROLE-1", "U1")
	env.setConfig(t, model.ActionInbound, func(cfg *model.ActionConfig) {
		cfg.RequiresApproval = true
		cfg.DefaultApproverType = model.ApproverTypeRole
		cfg.DefaultApproverRefs = []string{"ROLE-1"}
		cfg.AllowOverride = false
	})

	req, err := env.approvals.Create(env.ctx, CreateApprovalInput{Type: "inbound", Title: "restock", Applicant: testApplicant})
	require.NoError(t, err)
	require.NotNil(t, req.ApproverID)
	assert.Equal(t, "U1", *req.ApproverID)

	_, err = env.approvals.Create(env.ctx, CreateApprovalInput{
		Type:      "inbound",
		Title:     "restock",
		Approver:  &ApproverCandidate{ID: "U2"},
		Applicant: testApplicant,
	})
	assert.ErrorIs(t, err, apperror.ErrOverrideNotAllowed)
}

func TestCreateRequiresChoiceAmongRoleMembers(t *testing.T) {
	env := newTestEnv(t)
	env.addRole(t, "ROLE-2", "U1", "U2")
	env.setConfig(t, model.ActionPurchase, func(cfg *model.ActionConfig) {
		cfg.DefaultApproverType = model.ApproverTypeRole
		cfg.DefaultApproverRefs = []string{"ROLE-2"}
		cfg.AllowOverride = true
	})

	_, err := env.approvals.Create(env.ctx, CreateApprovalInput{Type: "purchase", Title: "chairs", Applicant: testApplicant})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	preview, err := env.approvals.PreviewApprover(env.ctx, "purchase", nil)
	require.NoError(t, err)
	assert.Nil(t, preview.Approver)
	assert.Equal(t, []string{"U1", "U2"}, preview.Candidates)
	assert.True(t, preview.RequiresApproval)

	req, err := env.approvals.Create(env.ctx, CreateApprovalInput{
		Type:      "purchase",
		Title:     "chairs",
		Approver:  &ApproverCandidate{ID: "U2"},
		Applicant: testApplicant,
	})
	require.NoError(t, err)
	assert.Equal(t, "U2", *req.ApproverID)
}

func TestApproveTwiceFailsAlreadyFinalized(t *testing.T) {
	env := newTestEnv(t)
	req, err := env.approvals.Create(env.ctx, CreateApprovalInput{Type: "other", Title: "laptop", Applicant: testApplicant})
	require.NoError(t, err)

	first, err := env.approvals.Apply(env.ctx, req.ID, ApplyInput{Action: "approve", Actor: testApprover, Comment: "ok"})
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalApproved, first.Status)
	require.NotNil(t, first.CompletedAt)
	require.NotNil(t, first.Result)
	assert.Equal(t, "ok", *first.Result)
	assert.Equal(t, "U1", *first.ApproverID)

	_, err = env.approvals.Apply(env.ctx, req.ID, ApplyInput{Action: "approve", Actor: testApprover, Comment: "again"})
	assert.ErrorIs(t, err, apperror.ErrAlreadyFinalized)

	got, err := env.approvals.Get(env.ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalApproved, got.Status)
	assert.Equal(t, "ok", *got.Result)

	assert.Equal(t, []string{"created", "completed"}, kindStrings(env.publisher))
}

func TestRejectCancelsLinkedOperation(t *testing.T) {
	env := newTestEnv(t)
	asset := env.addAsset(t, model.AssetStatusIdle)
	res, err := env.operations.RequestAssetOperation(env.ctx, asset.ID, AssetOperationInput{Type: "dispose", Actor: testApplicant})
	require.NoError(t, err)

	rejected, err := env.approvals.Apply(env.ctx, res.Approval.ID, ApplyInput{Action: "REJECT", Actor: testApprover, Comment: "still usable"})
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalRejected, rejected.Status)
	assert.NotNil(t, rejected.CompletedAt)

	op, err := env.operationRepo.FindByID(env.ctx, res.Operation.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OperationCancelled, op.Status)

	got, err := env.assetRepo.FindByID(env.ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AssetStatusIdle, got.Status)
}

func TestCancelOnlyByApplicant(t *testing.T) {
	env := newTestEnv(t)
	c := env.addConsumable(t, 3, 0)
	res, err := env.operations.RequestConsumableOperation(env.ctx, c.ID, ConsumableOperationInput{Type: "outbound", QuantityDelta: -1, Actor: testApplicant})
	require.NoError(t, err)

	_, err = env.approvals.Apply(env.ctx, res.Approval.ID, ApplyInput{Action: "cancel", Actor: testApprover})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	cancelled, err := env.approvals.Apply(env.ctx, res.Approval.ID, ApplyInput{Action: "cancel", Actor: testApplicant})
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalCancelled, cancelled.Status)
	assert.Nil(t, cancelled.ApproverID)

	op, err := env.operationRepo.FindConsumableByID(env.ctx, res.ConsumableOperation.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OperationCancelled, op.Status)
}

func TestAssignedApproverIsEnforced(t *testing.T) {
	env := newTestEnv(t)
	env.setConfig(t, model.ActionOther, func(cfg *model.ActionConfig) {
		cfg.DefaultApproverType = model.ApproverTypeUser
		cfg.DefaultApproverRefs = []string{"U9"}
		cfg.AllowOverride = false
	})
	req, err := env.approvals.Create(env.ctx, CreateApprovalInput{Type: "other", Title: "desk", Applicant: testApplicant})
	require.NoError(t, err)

	_, err = env.approvals.Apply(env.ctx, req.ID, ApplyInput{Action: "approve", Actor: testApprover})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	manager := Actor{ID: "admin", Name: "Root", Manager: true}
	approved, err := env.approvals.Apply(env.ctx, req.ID, ApplyInput{Action: "approve", Actor: manager})
	require.NoError(t, err)
	assert.Equal(t, "admin", *approved.ApproverID)
}

func TestApplyInputErrors(t *testing.T) {
	env := newTestEnv(t)
	req, err := env.approvals.Create(env.ctx, CreateApprovalInput{Type: "other", Title: "x", Applicant: testApplicant})
	require.NoError(t, err)

	_, err = env.approvals.Apply(env.ctx, req.ID, ApplyInput{Action: "escalate", Actor: testApprover})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.approvals.Apply(env.ctx, req.ID, ApplyInput{Action: "approve"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.approvals.Apply(env.ctx, uuid.New(), ApplyInput{Action: "approve", Actor: testApprover})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestApproveAssetRequestWithoutOperation(t *testing.T) {
	env := newTestEnv(t)
	asset := env.addAsset(t, model.AssetStatusInUse)
	req, err := env.approvals.Create(env.ctx, CreateApprovalInput{
		Type:      "maintenance",
		Title:     "fan noise",
		AssetID:   &asset.ID,
		Applicant: testApplicant,
	})
	require.NoError(t, err)

	_, err = env.approvals.Apply(env.ctx, req.ID, ApplyInput{Action: "approve", Actor: testApprover})
	require.NoError(t, err)

	got, err := env.assetRepo.FindByID(env.ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AssetStatusMaintenance, got.Status)
}

func TestListFilters(t *testing.T) {
	env := newTestEnv(t)
	env.addRole(t, "ROLE-3", "U1", "U2")
	asset := env.addAsset(t, model.AssetStatusIdle)

	mk := func(approverID string, assetID *uuid.UUID) *model.ApprovalRequest {
		req, err := env.approvals.Create(env.ctx, CreateApprovalInput{
			Type:      "other",
			Title:     "req " + approverID,
			AssetID:   assetID,
			Approver:  &ApproverCandidate{ID: approverID},
			Applicant: testApplicant,
		})
		require.NoError(t, err)
		return req
	}
	first := mk("U1", nil)
	mk("U2", &asset.ID)
	mk("U3", nil)
	_, err := env.approvals.Apply(env.ctx, first.ID, ApplyInput{Action: "approve", Actor: testApprover})
	require.NoError(t, err)

	items, total, err := env.approvals.List(env.ctx, ApprovalListFilter{RoleID: "ROLE-3"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	_, total, err = env.approvals.List(env.ctx, ApprovalListFilter{Status: model.ApprovalPending})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	items, total, err = env.approvals.List(env.ctx, ApprovalListFilter{AssetID: &asset.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "U2", *items[0].ApproverID)

	items, _, err = env.approvals.List(env.ctx, ApprovalListFilter{Page: 1, PageSize: 1})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, _, err = env.approvals.List(env.ctx, ApprovalListFilter{Type: "bogus"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, _, err = env.approvals.List(env.ctx, ApprovalListFilter{RoleID: "ROLE-404"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateGuardsLinkedOperation(t *testing.T) {
	env := newTestEnv(t)
	env.addRole(t, "DISPOSERS", "BOSS")
	env.setConfig(t, model.ActionDispose, func(cfg *model.ActionConfig) {
		cfg.RequiresApproval = true
		cfg.DefaultApproverType = model.ApproverTypeRole
		cfg.DefaultApproverRefs = []string{"DISPOSERS"}
		cfg.AllowOverride = false
	})
	asset := env.addAsset(t, model.AssetStatusIdle)
	other := env.addAsset(t, model.AssetStatusIdle)

	res, err := env.operations.RequestAssetOperation(env.ctx, asset.ID, AssetOperationInput{Type: "dispose", Actor: testApplicant})
	require.NoError(t, err)
	require.NotNil(t, res.Approval)
	assert.Equal(t, "BOSS", *res.Approval.ApproverID)
	opID := res.Operation.ID

	tests := []struct {
		name string
		in   CreateApprovalInput
	}{
		{"different action type", CreateApprovalInput{Type: "other", Title: "x", AssetID: &asset.ID, OperationID: &opID,
			Approver: &ApproverCandidate{ID: "FRIEND"}, Applicant: testApplicant}},
		{"second pending request", CreateApprovalInput{Type: "dispose", Title: "x", AssetID: &asset.ID, OperationID: &opID, Applicant: testApplicant}},
		{"operation of another asset", CreateApprovalInput{Type: "dispose", Title: "x", AssetID: &other.ID, OperationID: &opID, Applicant: testApplicant}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.approvals.Create(env.ctx, tt.in)
			require.Error(t, err)
			assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
		})
	}

	approved, err := env.approvals.Apply(env.ctx, res.Approval.ID, ApplyInput{Action: "approve", Actor: Actor{ID: "BOSS"}})
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalApproved, approved.Status)

	got, err := env.assetRepo.FindByID(env.ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AssetStatusRetired, got.Status)

	_, err = env.approvals.Create(env.ctx, CreateApprovalInput{Type: "dispose", Title: "again", AssetID: &asset.ID, OperationID: &opID, Applicant: testApplicant})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, total, err := env.approvalRepo.List(env.ctx, repository.ApprovalFilter{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestBorrowAndReturnRequestsNeedOperation(t *testing.T) {
	env := newTestEnv(t)
	asset := env.addAsset(t, model.AssetStatusIdle)

	for _, actionType := range []string{"borrow", "return"} {
		_, err := env.approvals.Create(env.ctx, CreateApprovalInput{Type: actionType, Title: "laptop", AssetID: &asset.ID, Applicant: testApplicant})
		assert.ErrorIs(t, err, apperror.ErrValidation, actionType)
	}

	got, err := env.assetRepo.FindByID(env.ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AssetStatusIdle, got.Status)
}

func TestApproveFinishedOperationKeepsRequestPending(t *testing.T) {
	env := newTestEnv(t)
	asset := env.addAsset(t, model.AssetStatusIdle)
	res, err := env.operations.RequestAssetOperation(env.ctx, asset.ID, AssetOperationInput{Type: "dispose", Actor: testApplicant})
	require.NoError(t, err)
	require.NoError(t, env.operationRepo.SetStatus(env.ctx, res.Operation.ID, model.OperationDone))

	_, err = env.approvals.Apply(env.ctx, res.Approval.ID, ApplyInput{Action: "approve", Actor: testApprover, Comment: "ok"})
	assert.ErrorIs(t, err, apperror.ErrAlreadyFinalized)

	got, err := env.approvals.Get(env.ctx, res.Approval.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalPending, got.Status)
	assert.Nil(t, got.CompletedAt)
	assert.Nil(t, got.Result)
	assert.Nil(t, got.ApproverID)

	a, err := env.assetRepo.FindByID(env.ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AssetStatusIdle, a.Status)
	assert.Equal(t, []string{"created"}, kindStrings(env.publisher))
}

func TestConcurrentApproveAppliesOnce(t *testing.T) {
	env := newTestEnv(t)
	c := env.addConsumable(t, 5, 0)
	res, err := env.operations.RequestConsumableOperation(env.ctx, c.ID, ConsumableOperationInput{Type: "outbound", QuantityDelta: -2, Actor: testApplicant})
	require.NoError(t, err)
	require.NotNil(t, res.Approval)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.approvals.Apply(env.ctx, res.Approval.ID, ApplyInput{Action: "approve", Actor: testApprover})
		}(i)
	}
	wg.Wait()

	var succeeded, finalized int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, apperror.ErrAlreadyFinalized):
			finalized++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, finalized)

	got, err := env.consumableRepo.FindByID(env.ctx, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.Quantity)
}
