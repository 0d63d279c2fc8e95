package service

import (
	"context"
	"sync"
	"testing"

	"github.com/dootask/asset-hub-sub002/internal/database"
	"github.com/dootask/asset-hub-sub002/internal/model"
	"github.com/dootask/asset-hub-sub002/internal/notify"
	"github.com/dootask/asset-hub-sub002/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu      sync.Mutex
	intents []notify.Intent
}

func (p *recordingPublisher) Publish(_ context.Context, intent notify.Intent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.intents = append(p.intents, intent)
}

func (p *recordingPublisher) kinds() []notify.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notify.Kind, 0, len(p.intents))
	for _, in := range p.intents {
		out = append(out, in.Kind)
	}
	return out
}

type testEnv struct {
	ctx            context.Context
	db             *gorm.DB
	txManager      repository.TransactionManager
	approvalRepo   repository.ApprovalRepository
	configRepo     repository.ActionConfigRepository
	roleRepo       repository.RoleRepository
	assetRepo      repository.AssetRepository
	consumableRepo repository.ConsumableRepository
	operationRepo  repository.OperationRepository
	borrowRepo     repository.BorrowRepository
	auditRepo      repository.AuditRepository
	publisher      *recordingPublisher

	effects    EffectApplier
	approvals  ApprovalService
	operations OperationService
	configs    ActionConfigService
	roles      RoleService
	borrows    BorrowService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewConnection("sqlite", "file::memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	env := &testEnv{
		ctx:            context.Background(),
		db:             db,
		txManager:      repository.NewTransactionManager(db),
		approvalRepo:   repository.NewApprovalRepository(db),
		configRepo:     repository.NewActionConfigRepository(db),
		roleRepo:       repository.NewRoleRepository(db),
		assetRepo:      repository.NewAssetRepository(db),
		consumableRepo: repository.NewConsumableRepository(db),
		operationRepo:  repository.NewOperationRepository(db),
		borrowRepo:     repository.NewBorrowRepository(db),
		auditRepo:      repository.NewAuditRepository(db),
		publisher:      &recordingPublisher{},
	}
	log := zerolog.Nop()
	env.effects = NewEffectApplier(env.assetRepo, env.consumableRepo, env.operationRepo, env.borrowRepo, log)
	env.approvals = NewApprovalService(env.txManager, env.approvalRepo, env.configRepo, env.roleRepo,
		env.assetRepo, env.consumableRepo, env.operationRepo, env.auditRepo, NewApproverResolver(env.roleRepo), env.effects, env.publisher, log)
	env.operations = NewOperationService(env.txManager, env.assetRepo, env.consumableRepo, env.operationRepo,
		env.configRepo, env.auditRepo, env.approvals, env.effects, log)
	env.configs = NewActionConfigService(env.txManager, env.configRepo, env.auditRepo, log)
	env.roles = NewRoleService(env.txManager, env.roleRepo, env.auditRepo, log)
	env.borrows = NewBorrowService(env.borrowRepo, env.publisher, log)

	seed, err := LoadActionConfigSeed("")
	require.NoError(t, err)
	require.NoError(t, env.configs.SeedDefaults(env.ctx, seed))
	return env
}

// setConfig rewrites one action config directly through the repository
func (e *testEnv) setConfig(t *testing.T, actionType model.ActionType, mutate func(cfg *model.ActionConfig)) {
	t.Helper()
	cfg, err := e.configRepo.FindByType(e.ctx, actionType)
	require.NoError(t, err)
	mutate(cfg)
	require.NoError(t, e.configRepo.Update(e.ctx, cfg))
}

func (e *testEnv) addRole(t *testing.T, id string, members ...string) {
	t.Helper()
	require.NoError(t, e.roleRepo.Upsert(e.ctx, &model.Role{ID: id, Name: id, Members: members}))
}

func (e *testEnv) addAsset(t *testing.T, status string) *model.Asset {
	t.Helper()
	asset := &model.Asset{Name: "Laptop", Status: status, PurchasePrice: decimal.NewFromInt(1200)}
	require.NoError(t, e.assetRepo.Create(e.ctx, asset))
	return asset
}

func (e *testEnv) addConsumable(t *testing.T, quantity, safetyStock int64) *model.Consumable {
	t.Helper()
	c := &model.Consumable{
		Name:        "A4 paper",
		Unit:        "box",
		Quantity:    quantity,
		SafetyStock: safetyStock,
		Status:      model.DeriveConsumableStatus(quantity, 0, safetyStock),
	}
	require.NoError(t, e.consumableRepo.Create(e.ctx, c))
	return c
}

var (
	testApplicant = Actor{ID: "U100", Name: "Alice"}
	testApprover  = Actor{ID: "U1", Name: "Bob"}
)
