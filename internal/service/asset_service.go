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
type CreateAssetRequest struct {
	Name          string          `json:"name" binding:"required"`
	CategoryID    string          `json:"category_id"`
	OwnerID       string          `json:"owner_id"`
	Location      string          `json:"location"`
	PurchasePrice decimal.Decimal `json:"purchase_price" swaggertype:"string"`
}

type AssetResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CategoryID    string `json:"category_id"`
	Status        string `json:"status"`
	OwnerID       string `json:"owner_id"`
	Location      string `json:"location"`
	PurchasePrice string `json:"purchase_price"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type AssetService interface {
	ListAssets(ctx context.Context, status, search string, page, limit int) ([]AssetResponse, int64, error)
	GetAsset(ctx context.Context, id uuid.UUID) (AssetResponse, error)
	CreateAsset(ctx context.Context, actor Actor, req CreateAssetRequest) (AssetResponse, error)
}

type assetService struct {
	assetRepo repository.AssetRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewAssetService(assetRepo repository.AssetRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) AssetService {
	return &assetService{
		assetRepo: assetRepo,
		auditRepo: auditRepo,
		txManager: txManager,
	}
}

func (s *assetService) ListAssets(ctx context.Context, status, search string, page, limit int) ([]AssetResponse, int64, error) {
	p := pagination.New(page, limit)
	assets, total, err := s.assetRepo.List(ctx, strings.TrimSpace(status), strings.TrimSpace(search), p.Offset, p.PageSize)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodeInternal, "failed to list assets")
	}

	res := make([]AssetResponse, 0, len(assets))
	for _, a := range assets {
		res = append(res, toAssetResponse(a))
	}
	return res, total, nil
}

func (s *assetService) GetAsset(ctx context.Context, id uuid.UUID) (AssetResponse, error) {
	asset, err := s.assetRepo.FindByID(ctx, id)
	if err != nil {
		return AssetResponse{}, err
	}
	return toAssetResponse(*asset), nil
}

func (s *assetService) CreateAsset(ctx context.Context, actor Actor, req CreateAssetRequest) (AssetResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return AssetResponse{}, apperror.New(apperror.CodeValidation, "name is required")
	}
	if req.PurchasePrice.IsNegative() {
		return AssetResponse{}, apperror.New(apperror.CodeValidation, "purchase_price must not be negative")
	}

	asset := model.Asset{
		Name:          name,
		CategoryID:    strings.TrimSpace(req.CategoryID),
		Status:        model.AssetStatusIdle,
		OwnerID:       strings.TrimSpace(req.OwnerID),
		Location:      strings.TrimSpace(req.Location),
		PurchasePrice: req.PurchasePrice,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.assetRepo.Create(txCtx, &asset); err != nil {
			return apperror.Wrap(err, apperror.CodeInternal, "failed to create asset")
		}
		audit := &model.AuditLog{
			UserID:     actor.ID,
			UserName:   actor.Name,
			Action:     model.ActionCreateAsset,
			EntityID:   asset.ID.String(),
			EntityName: asset.Name,
			Details:    repository.AuditDetails(req),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return apperror.Wrap(err, apperror.CodeInternal, "failed to write audit log")
		}
		return nil
	})
	if err != nil {
		return AssetResponse{}, err
	}

	return toAssetResponse(asset), nil
}

func toAssetResponse(a model.Asset) AssetResponse {
	return AssetResponse{
		ID:            a.ID.String(),
		Name:          a.Name,
		CategoryID:    a.CategoryID,
		Status:        a.Status,
		OwnerID:       a.OwnerID,
		Location:      a.Location,
		PurchasePrice: a.PurchasePrice.StringFixed(2),
		CreatedAt:     a.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:     a.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
