package service

import (
	"context"
	"strings"

	"github.com/dootask/asset-hub-sub002/internal/model"
	"github.com/dootask/asset-hub-sub002/internal/repository"
	"github.com/dootask/asset-hub-sub002/pkg/apperror"
)

// ApproverCandidate is an approver proposed by the caller
type ApproverCandidate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Approver is the resolved approver identity
type Approver struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// normalizeCandidate trims the candidate; an empty id means no candidate
func normalizeCandidate(c *ApproverCandidate) *ApproverCandidate {
	if c == nil {
		return nil
	}
	id := strings.TrimSpace(c.ID)
	if id == "" {
		return nil
	}
	return &ApproverCandidate{ID: id, Name: strings.TrimSpace(c.Name)}
}

// ApproverResolver decides who approves a request for a given action config.
// A nil approver with a nil error means the caller must pick one of the role members.
type ApproverResolver interface {
	Resolve(ctx context.Context, cfg model.ActionConfig, requested *ApproverCandidate) (*Approver, error)
	// Candidates lists the members a caller may choose from when resolution is undetermined
	Candidates(ctx context.Context, cfg model.ActionConfig) ([]string, error)
}

type approverResolver struct {
	roleRepo repository.RoleRepository
}

func NewApproverResolver(roleRepo repository.RoleRepository) ApproverResolver {
	return &approverResolver{roleRepo: roleRepo}
}

func (r *approverResolver) Resolve(ctx context.Context, cfg model.ActionConfig, requested *ApproverCandidate) (*Approver, error) {
	var members []string
	if roleID, ok := cfg.FirstRef(); ok && cfg.DefaultApproverType == model.ApproverTypeRole {
		role, err := r.roleRepo.FindByID(ctx, roleID)
		if err != nil {
			return nil, err
		}
		members = model.NormalizeMembers(role.Members)
	}
	return decideApprover(cfg, members, requested)
}

func (r *approverResolver) Candidates(ctx context.Context, cfg model.ActionConfig) ([]string, error) {
	roleID, ok := cfg.FirstRef()
	if !ok || cfg.DefaultApproverType != model.ApproverTypeRole {
		return nil, nil
	}
	role, err := r.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	return model.NormalizeMembers(role.Members), nil
}

// decideApprover is the pure decision table. members are the normalized members of the
// config's role and are ignored for non-role configs.
func decideApprover(cfg model.ActionConfig, members []string, requested *ApproverCandidate) (*Approver, error) {
	requested = normalizeCandidate(requested)
	ref, hasRef := cfg.FirstRef()

	switch {
	case cfg.DefaultApproverType == model.ApproverTypeUser && hasRef:
		if requested != nil && requested.ID != ref {
			if !cfg.AllowOverride {
				return nil, apperror.Newf(apperror.CodeOverrideNotAllowed,
					"approver override is not allowed for %s: default approver is %s", cfg.ActionType, ref)
			}
			return &Approver{ID: requested.ID, Name: requested.Name}, nil
		}
		return withName(ref, requested), nil

	case cfg.DefaultApproverType == model.ApproverTypeRole && hasRef:
		return decideRoleApprover(cfg, ref, members, requested)

	default:
		if !cfg.AllowOverride {
			return nil, apperror.Newf(apperror.CodeNoDefaultApprover,
				"no default approver configured for %s", cfg.ActionType)
		}
		if requested == nil {
			return nil, nil
		}
		return &Approver{ID: requested.ID, Name: requested.Name}, nil
	}
}

func decideRoleApprover(cfg model.ActionConfig, roleID string, members []string, requested *ApproverCandidate) (*Approver, error) {
	if len(members) == 0 {
		return nil, apperror.Newf(apperror.CodeNoRoleMembers, "role %s has no members", roleID)
	}
	if !cfg.AllowOverride {
		if len(members) == 1 {
			if requested != nil && requested.ID != members[0] {
				return nil, apperror.Newf(apperror.CodeOverrideNotAllowed,
					"approver override is not allowed for %s: role %s resolves to %s", cfg.ActionType, roleID, members[0])
			}
			return withName(members[0], requested), nil
		}
		return nil, apperror.Newf(apperror.CodeAmbiguousRoleApprover,
			"role %s has %d members and no approver was chosen", roleID, len(members))
	}

	if requested != nil {
		if !contains(members, requested.ID) {
			return nil, apperror.Newf(apperror.CodeApproverNotInRole,
				"approver %s is not a member of role %s", requested.ID, roleID)
		}
		return withName(requested.ID, requested), nil
	}
	if len(members) == 1 {
		return &Approver{ID: members[0]}, nil
	}
	return nil, nil
}

// withName returns id as approver, borrowing the candidate's name when it names the same user
func withName(id string, candidate *ApproverCandidate) *Approver {
	a := &Approver{ID: id}
	if candidate != nil && candidate.ID == id {
		a.Name = candidate.Name
	}
	return a
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
