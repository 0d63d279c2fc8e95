package repository

import (
	"context"

	"github.com/dootask/asset-hub-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConsumableRepository interface {
	Create(ctx context.Context, consumable *model.Consumable) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Consumable, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Consumable, error)
	List(ctx context.Context, status, search string, offset, limit int) ([]model.Consumable, int64, error)
	UpdateStock(ctx context.Context, id uuid.UUID, quantity, reserved int64, status string) error
}

type consumableRepository struct {
	db *gorm.DB
}

func NewConsumableRepository(db *gorm.DB) ConsumableRepository {
	return &consumableRepository{db: db}
}

func (r *consumableRepository) Create(ctx context.Context, consumable *model.Consumable) error {
	return GetDB(ctx, r.db).Create(consumable).Error
}

func (r *consumableRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Consumable, error) {
	var consumable model.Consumable
	if err := GetDB(ctx, r.db).First(&consumable, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "consumable not found")
	}
	return &consumable, nil
}

func (r *consumableRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Consumable, error) {
	var consumable model.Consumable
	if err := forUpdate(GetDB(ctx, r.db)).Where("id = ?", id).First(&consumable).Error; err != nil {
		return nil, notFound(err, "consumable not found")
	}
	return &consumable, nil
}

func (r *consumableRepository) List(ctx context.Context, status, search string, offset, limit int) ([]model.Consumable, int64, error) {
	var consumables []model.Consumable
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Consumable{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if search != "" {
		db = db.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&consumables).Error; err != nil {
		return nil, 0, err
	}

	return consumables, total, nil
}

func (r *consumableRepository) UpdateStock(ctx context.Context, id uuid.UUID, quantity, reserved int64, status string) error {
	return GetDB(ctx, r.db).Model(&model.Consumable{}).Where("id = ?", id).Updates(map[string]interface{}{
		"quantity": quantity,
		"reserved": reserved,
		"status":   status,
	}).Error
}
