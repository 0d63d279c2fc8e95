package service

import (
	"testing"

	"github.com/dootask/asset-hub-sub002/internal/model"
	"github.com/dootask/asset-hub-sub002/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationWithoutApprovalIsAppliedImmediately(t *testing.T) {
	env := newTestEnv(t)
	c := env.addConsumable(t, 0, 5)

	res, err := env.operations.RequestConsumableOperation(env.ctx, c.ID, ConsumableOperationInput{
		Type:          "inbound",
		QuantityDelta: 8,
		Actor:         testApplicant,
	})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Nil(t, res.Approval)
	require.NotNil(t, res.ConsumableOperation.QuantityAfter)
	assert.EqualValues(t, 8, *res.ConsumableOperation.QuantityAfter)

	got, err := env.consumableRepo.FindByID(env.ctx, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 8, got.Quantity)
	assert.Equal(t, model.ConsumableInStock, got.Status)

	logs, total, err := env.auditRepo.List(env.ctx, res.ConsumableOperation.ID.String(), 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, model.ActionApplyOperation, logs[0].Action)
	assert.Empty(t, env.publisher.intents)
}

func TestOperationRequestDefaultsTitle(t *testing.T) {
	env := newTestEnv(t)
	asset := env.addAsset(t, model.AssetStatusIdle)

	res, err := env.operations.RequestAssetOperation(env.ctx, asset.ID, AssetOperationInput{Type: "Receive", Actor: testApplicant})
	require.NoError(t, err)
	require.NotNil(t, res.Approval)
	assert.Equal(t, "receive: Laptop", res.Approval.Title)
	assert.Equal(t, model.ActionReceive, res.Approval.Type)
	require.NotNil(t, res.Approval.OperationID)
	assert.Equal(t, res.Operation.ID, *res.Approval.OperationID)

	ops, err := env.operations.ListAssetOperations(env.ctx, asset.ID)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, model.OperationPending, ops[0].Status)
}

func TestOperationRequestValidation(t *testing.T) {
	env := newTestEnv(t)
	retired := env.addAsset(t, model.AssetStatusRetired)
	c := env.addConsumable(t, 1, 0)

	_, err := env.operations.RequestAssetOperation(env.ctx, retired.ID, AssetOperationInput{Type: "borrow", Actor: testApplicant})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.operations.RequestAssetOperation(env.ctx, uuid.New(), AssetOperationInput{Type: "borrow", Actor: testApplicant})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = env.operations.RequestAssetOperation(env.ctx, retired.ID, AssetOperationInput{Type: "generic", Actor: testApplicant})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.operations.RequestConsumableOperation(env.ctx, c.ID, ConsumableOperationInput{Type: "adjust", Actor: testApplicant})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.operations.RequestConsumableOperation(env.ctx, c.ID, ConsumableOperationInput{Type: "adjust", QuantityDelta: 1})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestResolverFailureLeavesNoOperation(t *testing.T) {
	env := newTestEnv(t)
	env.setConfig(t, model.ActionMaintenance, func(cfg *model.ActionConfig) {
		cfg.AllowOverride = false
	})
	asset := env.addAsset(t, model.AssetStatusInUse)

	_, err := env.operations.RequestAssetOperation(env.ctx, asset.ID, AssetOperationInput{Type: "maintenance", Actor: testApplicant})
	assert.ErrorIs(t, err, apperror.ErrNoDefaultApprover)

	ops, err := env.operations.ListAssetOperations(env.ctx, asset.ID)
	require.NoError(t, err)
	assert.Empty(t, ops)
}
