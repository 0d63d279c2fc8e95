package repository

import (
	"context"

	"github.com/dootask/asset-hub-sub002/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ActionConfigRepository interface {
	FindByType(ctx context.Context, t model.ActionType) (*model.ActionConfig, error)
	ListAll(ctx context.Context) ([]model.ActionConfig, error)
	Update(ctx context.Context, cfg *model.ActionConfig) error
	// SeedMissing inserts configs whose action type has no row yet; existing rows are left alone
	SeedMissing(ctx context.Context, cfgs []model.ActionConfig) error
}

type actionConfigRepository struct {
	db *gorm.DB
}

func NewActionConfigRepository(db *gorm.DB) ActionConfigRepository {
	return &actionConfigRepository{db: db}
}

func (r *actionConfigRepository) FindByType(ctx context.Context, t model.ActionType) (*model.ActionConfig, error) {
	var cfg model.ActionConfig
	if err := GetDB(ctx, r.db).First(&cfg, "action_type = ?", t).Error; err != nil {
		return nil, notFound(err, "action config not found: "+string(t))
	}
	return &cfg, nil
}

func (r *actionConfigRepository) ListAll(ctx context.Context) ([]model.ActionConfig, error) {
	var cfgs []model.ActionConfig
	if err := GetDB(ctx, r.db).Order("action_type asc").Find(&cfgs).Error; err != nil {
		return nil, err
	}
	return cfgs, nil
}

func (r *actionConfigRepository) Update(ctx context.Context, cfg *model.ActionConfig) error {
	return GetDB(ctx, r.db).Save(cfg).Error
}

func (r *actionConfigRepository) SeedMissing(ctx context.Context, cfgs []model.ActionConfig) error {
	if len(cfgs) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&cfgs).Error
}
