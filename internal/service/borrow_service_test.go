package service

import (
	"testing"
	"time"

	"github.com/dootask/asset-hub-sub002/internal/model"
	"github.com/dootask/asset-hub-sub002/internal/notify"
	"github.com/dootask/asset-hub-sub002/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyOverdueOncePerRecord(t *testing.T) {
	env := newTestEnv(t)
	asset := env.addAsset(t, model.AssetStatusInUse)
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	overdue := &model.BorrowRecord{AssetID: asset.ID, BorrowOperationID: uuid.New(), Borrower: "Carol", PlannedReturnAt: &past, Status: model.BorrowActive}
	onTime := &model.BorrowRecord{AssetID: asset.ID, BorrowOperationID: uuid.New(), Borrower: "Dan", PlannedReturnAt: &future, Status: model.BorrowActive}
	undated := &model.BorrowRecord{AssetID: asset.ID, BorrowOperationID: uuid.New(), Borrower: "Eve", Status: model.BorrowActive}
	for _, rec := range []*model.BorrowRecord{overdue, onTime, undated} {
		require.NoError(t, env.borrowRepo.Upsert(env.ctx, rec))
	}

	sent, err := env.borrows.NotifyOverdue(env.ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, env.publisher.intents, 1)
	intent := env.publisher.intents[0]
	assert.Equal(t, notify.KindOverdue, intent.Kind)
	require.NotNil(t, intent.Borrow)
	assert.Equal(t, "Carol", intent.Borrow.Borrower)
	assert.NotNil(t, intent.Borrow.OverdueNotifiedAt)

	sent, err = env.borrows.NotifyOverdue(env.ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestBorrowListValidatesStatus(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.borrows.List(env.ctx, BorrowListFilter{Status: "lost"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	recs, total, err := env.borrows.List(env.ctx, BorrowListFilter{Status: model.BorrowActive})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, recs)
}
