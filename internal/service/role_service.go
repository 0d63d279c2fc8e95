package service

import (
	"context"
	"strings"

	"github.com/dootask/asset-hub-sub002/internal/model"
	"github.com/dootask/asset-hub-sub002/internal/repository"
	"github.com/dootask/asset-hub-sub002/pkg/apperror"

	"github.com/rs/zerolog"
)

// --- DTOs ---

type UpsertRoleRequest struct {
	ID      string   `json:"id"`
	Name    string   `json:"name" binding:"required"`
	Scope   string   `json:"scope"`
	Members []string `json:"members"`
	Actor   Actor    `json:"-"`
}

// --- Interface ---

type RoleService interface {
	ListRoles(ctx context.Context, scope string) ([]model.Role, error)
	GetRole(ctx context.Context, id string) (*model.Role, error)
	UpsertRole(ctx context.Context, req UpsertRoleRequest) (*model.Role, error)
}

type roleService struct {
	txManager repository.TransactionManager
	roleRepo  repository.RoleRepository
	auditRepo repository.AuditRepository
	log       zerolog.Logger
}

func NewRoleService(txManager repository.TransactionManager, roleRepo repository.RoleRepository, auditRepo repository.AuditRepository, log zerolog.Logger) RoleService {
	return &roleService{
		txManager: txManager,
		roleRepo:  roleRepo,
		auditRepo: auditRepo,
		log:       log.With().Str("component", "roles").Logger(),
	}
}

// --- Implementation ---

func (s *roleService) ListRoles(ctx context.Context, scope string) ([]model.Role, error) {
	roles, err := s.roleRepo.ListAll(ctx, strings.TrimSpace(scope))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to list roles")
	}
	return roles, nil
}

func (s *roleService) GetRole(ctx context.Context, id string) (*model.Role, error) {
	return s.roleRepo.FindByID(ctx, strings.TrimSpace(id))
}

// UpsertRole replaces the role's name, scope and member list
func (s *roleService) UpsertRole(ctx context.Context, req UpsertRoleRequest) (*model.Role, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return nil, apperror.New(apperror.CodeValidation, "role id is required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.New(apperror.CodeValidation, "role name is required")
	}

	role := &model.Role{
		ID:      id,
		Name:    name,
		Scope:   strings.TrimSpace(req.Scope),
		Members: model.NormalizeMembers(req.Members),
	}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.roleRepo.Upsert(txCtx, role); err != nil {
			return apperror.Wrap(err, apperror.CodeInternal, "failed to save role")
		}
		audit := &model.AuditLog{
			UserID:     req.Actor.ID,
			UserName:   req.Actor.Name,
			Action:     model.ActionUpsertRole,
			EntityID:   role.ID,
			EntityName: role.Name,
			Details:    repository.AuditDetails(map[string]interface{}{"members": role.Members, "scope": role.Scope}),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return apperror.Wrap(err, apperror.CodeInternal, "failed to write audit log")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("role_id", role.ID).Int("members", len(role.Members)).Msg("role saved")
	return s.roleRepo.FindByID(ctx, role.ID)
}
