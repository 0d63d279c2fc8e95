package repository

import (
	"context"

	"github.com/dootask/asset-hub-sub002/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleRepository interface {
	Upsert(ctx context.Context, role *model.Role) error
	FindByID(ctx context.Context, id string) (*model.Role, error)
	ListAll(ctx context.Context, scope string) ([]model.Role, error)
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Upsert(ctx context.Context, role *model.Role) error {
	role.Members = model.NormalizeMembers(role.Members)
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "scope", "members", "updated_at"}),
	}).Create(role).Error
}

func (r *roleRepository) FindByID(ctx context.Context, id string) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).First(&role, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "role not found: "+id)
	}
	return &role, nil
}

func (r *roleRepository) ListAll(ctx context.Context, scope string) ([]model.Role, error) {
	var roles []model.Role
	db := GetDB(ctx, r.db)
	if scope != "" {
		db = db.Where("scope = ?", scope)
	}
	if err := db.Order("id asc").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}
