package service

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dootask/asset-hub-sub002/internal/model"
	"github.com/dootask/asset-hub-sub002/internal/repository"
	"github.com/dootask/asset-hub-sub002/pkg/apperror"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
)

//go:embed seed/action_configs.yaml
var defaultActionConfigYAML []byte

// --- DTOs ---

// UpdateActionConfigInput is a partial update; nil fields keep their current value
type UpdateActionConfigInput struct {
	RequiresApproval    *bool          `json:"requires_approval"`
	DefaultApproverType *string        `json:"default_approver_type"`
	DefaultApproverRefs *[]string      `json:"default_approver_refs"`
	AllowOverride       *bool          `json:"allow_override"`
	Metadata            datatypes.JSON `json:"metadata" swaggertype:"object"`
	Actor               Actor          `json:"-"`
}

type actionConfigSeed struct {
	ActionConfigs []actionConfigSeedEntry `yaml:"action_configs"`
}

type actionConfigSeedEntry struct {
	ActionType          string                 `yaml:"action_type"`
	RequiresApproval    bool                   `yaml:"requires_approval"`
	DefaultApproverType string                 `yaml:"default_approver_type"`
	DefaultApproverRefs []string               `yaml:"default_approver_refs"`
	AllowOverride       bool                   `yaml:"allow_override"`
	Metadata            map[string]interface{} `yaml:"metadata"`
}

// --- Interface ---

type ActionConfigService interface {
	List(ctx context.Context) ([]model.ActionConfig, error)
	Get(ctx context.Context, actionType string) (*model.ActionConfig, error)
	Update(ctx context.Context, actionType string, in UpdateActionConfigInput) (*model.ActionConfig, error)
	// SeedDefaults inserts the configs that do not exist yet
	SeedDefaults(ctx context.Context, cfgs []model.ActionConfig) error
}

type actionConfigService struct {
	txManager  repository.TransactionManager
	configRepo repository.ActionConfigRepository
	auditRepo  repository.AuditRepository
	log        zerolog.Logger
}

func NewActionConfigService(
	txManager repository.TransactionManager,
	configRepo repository.ActionConfigRepository,
	auditRepo repository.AuditRepository,
	log zerolog.Logger,
) ActionConfigService {
	return &actionConfigService{
		txManager:  txManager,
		configRepo: configRepo,
		auditRepo:  auditRepo,
		log:        log.With().Str("component", "action_config").Logger(),
	}
}

// --- Seed loading ---

// LoadActionConfigSeed returns the built-in defaults, with entries from the YAML file at
// path (if any) replacing the built-in entry of the same action type.
func LoadActionConfigSeed(path string) ([]model.ActionConfig, error) {
	defaults, err := parseActionConfigSeed(bytes.NewReader(defaultActionConfigYAML))
	if err != nil {
		return nil, fmt.Errorf("built-in action config seed: %w", err)
	}
	if path == "" {
		return defaults, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open action config seed: %w", err)
	}
	defer f.Close()

	overrides, err := parseActionConfigSeed(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	byType := make(map[model.ActionType]model.ActionConfig, len(overrides))
	for _, cfg := range overrides {
		byType[cfg.ActionType] = cfg
	}
	for i, cfg := range defaults {
		if o, ok := byType[cfg.ActionType]; ok {
			defaults[i] = o
		}
	}
	return defaults, nil
}

func parseActionConfigSeed(r io.Reader) ([]model.ActionConfig, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc actionConfigSeed
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	cfgs := make([]model.ActionConfig, 0, len(doc.ActionConfigs))
	seen := make(map[model.ActionType]bool, len(doc.ActionConfigs))
	for _, e := range doc.ActionConfigs {
		t, ok := model.ParseActionType(e.ActionType)
		if !ok {
			return nil, fmt.Errorf("unknown action type %q", e.ActionType)
		}
		if seen[t] {
			return nil, fmt.Errorf("duplicate action type %q", t)
		}
		seen[t] = true

		approverType, err := parseApproverType(e.DefaultApproverType)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t, err)
		}
		cfg := model.ActionConfig{
			ActionType:          t,
			RequiresApproval:    e.RequiresApproval,
			DefaultApproverType: approverType,
			DefaultApproverRefs: model.NormalizeMembers(e.DefaultApproverRefs),
			AllowOverride:       e.AllowOverride,
		}
		if len(e.Metadata) > 0 {
			cfg.Metadata = repository.AuditDetails(e.Metadata)
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

func parseApproverType(s string) (model.ApproverType, error) {
	switch t := model.ApproverType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return model.ApproverTypeNone, nil
	case model.ApproverTypeNone, model.ApproverTypeUser, model.ApproverTypeRole:
		return t, nil
	default:
		return "", fmt.Errorf("unknown approver type %q", s)
	}
}

// --- Implementation ---

func (s *actionConfigService) List(ctx context.Context) ([]model.ActionConfig, error) {
	cfgs, err := s.configRepo.ListAll(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to list action configs")
	}
	return cfgs, nil
}

func (s *actionConfigService) Get(ctx context.Context, actionType string) (*model.ActionConfig, error) {
	t, ok := model.ParseActionType(actionType)
	if !ok {
		return nil, apperror.Newf(apperror.CodeValidation, "unknown action type: %s", actionType)
	}
	return s.configRepo.FindByType(ctx, t)
}

func (s *actionConfigService) Update(ctx context.Context, actionType string, in UpdateActionConfigInput) (*model.ActionConfig, error) {
	t, ok := model.ParseActionType(actionType)
	if !ok {
		return nil, apperror.Newf(apperror.CodeValidation, "unknown action type: %s", actionType)
	}

	var updated *model.ActionConfig
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		cfg, err := s.configRepo.FindByType(txCtx, t)
		if err != nil {
			return err
		}

		if in.RequiresApproval != nil {
			cfg.RequiresApproval = *in.RequiresApproval
		}
		if in.AllowOverride != nil {
			cfg.AllowOverride = *in.AllowOverride
		}
		if in.DefaultApproverType != nil {
			approverType, err := parseApproverType(*in.DefaultApproverType)
			if err != nil {
				return apperror.New(apperror.CodeValidation, err.Error())
			}
			cfg.DefaultApproverType = approverType
		}
		if in.DefaultApproverRefs != nil {
			cfg.DefaultApproverRefs = model.NormalizeMembers(*in.DefaultApproverRefs)
		}
		if in.Metadata != nil {
			cfg.Metadata = in.Metadata
		}
		if cfg.DefaultApproverType == model.ApproverTypeNone {
			cfg.DefaultApproverRefs = nil
		} else if _, ok := cfg.FirstRef(); !ok {
			return apperror.Newf(apperror.CodeValidation, "approver type %s needs at least one reference", cfg.DefaultApproverType)
		}

		if err := s.configRepo.Update(txCtx, cfg); err != nil {
			return apperror.Wrap(err, apperror.CodeInternal, "failed to update action config")
		}

		audit := &model.AuditLog{
			UserID:     in.Actor.ID,
			UserName:   in.Actor.Name,
			Action:     model.ActionUpdateConfig,
			EntityID:   string(cfg.ActionType),
			EntityName: string(cfg.ActionType),
			Details:    repository.AuditDetails(cfg),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return apperror.Wrap(err, apperror.CodeInternal, "failed to write audit log")
		}
		updated = cfg
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("action_type", string(t)).Str("actor", in.Actor.ID).Msg("action config updated")
	return updated, nil
}

func (s *actionConfigService) SeedDefaults(ctx context.Context, cfgs []model.ActionConfig) error {
	if err := s.configRepo.SeedMissing(ctx, cfgs); err != nil {
		return fmt.Errorf("seed action configs: %w", err)
	}
	s.log.Debug().Int("count", len(cfgs)).Msg("action configs seeded")
	return nil
}
