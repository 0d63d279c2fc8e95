package service

import (
	"context"
	"strings"

	"github.com/dootask/asset-hub-sub002/internal/model"
	"github.com/dootask/asset-hub-sub002/internal/repository"
	"github.com/dootask/asset-hub-sub002/pkg/apperror"
	"github.com/dootask/asset-hub-sub002/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DTOs
type CreateConsumableRequest struct {
	Name        string          `json:"name" binding:"required"`
	CategoryID  string          `json:"category_id"`
	Unit        string          `json:"unit"`
	Quantity    int64           `json:"quantity" binding:"min=0"`
	SafetyStock int64           `json:"safety_stock" binding:"min=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" swaggertype:"string"`
}

type ConsumableResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CategoryID  string `json:"category_id"`
	Unit        string `json:"unit"`
	Quantity    int64  `json:"quantity"`
	Reserved    int64  `json:"reserved"`
	Available   int64  `json:"available"`
	SafetyStock int64  `json:"safety_stock"`
	Status      string `json:"status"`
	UnitPrice   string `json:"unit_price"`
	StockValue  string `json:"stock_value"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type ConsumableService interface {
	ListConsumables(ctx context.Context, status, search string, page, limit int) ([]ConsumableResponse, int64, error)
	GetConsumable(ctx context.Context, id uuid.UUID) (ConsumableResponse, error)
	CreateConsumable(ctx context.Context, actor Actor, req CreateConsumableRequest) (ConsumableResponse, error)
}

type consumableService struct {
	consumableRepo repository.ConsumableRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
}

func NewConsumableService(consumableRepo repository.ConsumableRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) ConsumableService {
	return &consumableService{
		consumableRepo: consumableRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
	}
}

func (s *consumableService) ListConsumables(ctx context.Context, status, search string, page, limit int) ([]ConsumableResponse, int64, error) {
	p := pagination.New(page, limit)
	items, total, err := s.consumableRepo.List(ctx, strings.TrimSpace(status), strings.TrimSpace(search), p.Offset, p.PageSize)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodeInternal, "failed to list consumables")
	}

	res := make([]ConsumableResponse, 0, len(items))
	for _, c := range items {
		res = append(res, toConsumableResponse(c))
	}
	return res, total, nil
}

func (s *consumableService) GetConsumable(ctx context.Context, id uuid.UUID) (ConsumableResponse, error) {
	c, err := s.consumableRepo.FindByID(ctx, id)
	if err != nil {
		return ConsumableResponse{}, err
	}
	return toConsumableResponse(*c), nil
}

// CreateConsumable registers a stock item; later stock changes go through consumable operations
func (s *consumableService) CreateConsumable(ctx context.Context, actor Actor, req CreateConsumableRequest) (ConsumableResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return ConsumableResponse{}, apperror.New(apperror.CodeValidation, "name is required")
	}
	if req.Quantity < 0 || req.SafetyStock < 0 {
		return ConsumableResponse{}, apperror.New(apperror.CodeValidation, "quantity and safety_stock must not be negative")
	}
	if req.UnitPrice.IsNegative() {
		return ConsumableResponse{}, apperror.New(apperror.CodeValidation, "unit_price must not be negative")
	}

	c := model.Consumable{
		Name:        name,
		CategoryID:  strings.TrimSpace(req.CategoryID),
		Unit:        strings.TrimSpace(req.Unit),
		Quantity:    req.Quantity,
		SafetyStock: req.SafetyStock,
		Status:      model.DeriveConsumableStatus(req.Quantity, 0, req.SafetyStock),
		UnitPrice:   req.UnitPrice,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.consumableRepo.Create(txCtx, &c); err != nil {
			return apperror.Wrap(err, apperror.CodeInternal, "failed to create consumable")
		}
		audit := &model.AuditLog{
			UserID:     actor.ID,
			UserName:   actor.Name,
			Action:     model.ActionCreateConsumable,
			EntityID:   c.ID.String(),
			EntityName: c.Name,
			Details:    repository.AuditDetails(req),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return apperror.Wrap(err, apperror.CodeInternal, "failed to write audit log")
		}
		return nil
	})
	if err != nil {
		return ConsumableResponse{}, err
	}

	return toConsumableResponse(c), nil
}

func toConsumableResponse(c model.Consumable) ConsumableResponse {
	return ConsumableResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		CategoryID:  c.CategoryID,
		Unit:        c.Unit,
		Quantity:    c.Quantity,
		Reserved:    c.Reserved,
		Available:   c.Quantity - c.Reserved,
		SafetyStock: c.SafetyStock,
		Status:      c.Status,
		UnitPrice:   c.UnitPrice.StringFixed(2),
		StockValue:  c.UnitPrice.Mul(decimal.NewFromInt(c.Quantity)).StringFixed(2),
		CreatedAt:   c.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:   c.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
