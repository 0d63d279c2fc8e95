package handler

import (
	"net/http"

	"github.com/dootask/asset-hub-sub002/internal/middleware"
	"github.com/dootask/asset-hub-sub002/internal/service"
	"github.com/dootask/asset-hub-sub002/pkg/pagination"
	"github.com/dootask/asset-hub-sub002/pkg/response"

	"github.com/gin-gonic/gin"
)

type AssetHandler struct {
	assetService     service.AssetService
	operationService service.OperationService
}

func NewAssetHandler(assetService service.AssetService, operationService service.OperationService) *AssetHandler {
	return &AssetHandler{assetService: assetService, operationService: operationService}
}

func (h *AssetHandler) RegisterRoutes(router *gin.RouterGroup) {
	assets := router.Group("/assets")
	{
		assets.GET("", middleware.RequirePermission(middleware.PermAssetsRead), h.GetAssets)
		assets.GET("/:id", middleware.RequirePermission(middleware.PermAssetsRead), h.GetAsset)
		assets.POST("", middleware.RequirePermission(middleware.PermAssetsWrite), h.CreateAsset)
		assets.GET("/:id/operations", middleware.RequirePermission(middleware.PermAssetsRead), h.GetOperations)
		assets.POST("/:id/operations", middleware.RequirePermission(middleware.PermApprovalsWrite), h.RequestOperation)
	}
}

// GetAssets handles retrieving paginated assets
// @Summary      Get assets
// @Tags         assets
// @Security     BearerAuth
// @Produce      json
// @Param        status    query     string  false  "idle, in-use, maintenance or retired"
// @Param        search    query     string  false  "Search by asset name"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        pageSize  query     int     false  "Items per page (default 20)"
// @Success      200       {object}  response.Response{data=response.Page}
// @Failure      500       {object}  response.Response
// @Router       /api/assets [get]
func (h *AssetHandler) GetAssets(c *gin.Context) {
	page := pagination.Parse(c)
	assets, total, err := h.assetService.ListAssets(c.Request.Context(), c.Query("status"), c.Query("search"), page.Page, page.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, response.Page{
		Items:    assets,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}))
}

// GetAsset
// @Summary      Get asset
// @Tags         assets
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Asset id"
// @Success      200  {object}  response.Response{data=service.AssetResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/assets/{id} [get]
func (h *AssetHandler) GetAsset(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	asset, err := h.assetService.GetAsset(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, asset))
}

// CreateAsset registers a new idle asset
// @Summary      Create asset
// @Tags         assets
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateAssetRequest  true  "Create Asset Payload"
// @Success      201      {object}  response.Response{data=service.AssetResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/assets [post]
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	var req service.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	asset, err := h.assetService.CreateAsset(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, asset))
}

// GetOperations lists the asset's operations, newest first
// @Summary      List asset operations
// @Tags         assets
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Asset id"
// @Success      200  {object}  response.Response{data=[]model.Operation}
// @Failure      404  {object}  response.Response
// @Router       /api/assets/{id}/operations [get]
func (h *AssetHandler) GetOperations(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	ops, err := h.operationService.ListAssetOperations(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, ops))
}

// RequestOperation starts a lifecycle action on the asset. Actions that need approval
// return the pending request; the others are applied right away.
// @Summary      Request asset operation
// @Tags         assets
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Asset id"
// @Param        payload  body      service.AssetOperationInput  true  "Operation"
// @Success      201      {object}  response.Response{data=service.OperationResult}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/assets/{id}/operations [post]
func (h *AssetHandler) RequestOperation(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.AssetOperationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	req.Actor = actorFrom(c)

	result, err := h.operationService.RequestAssetOperation(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}
