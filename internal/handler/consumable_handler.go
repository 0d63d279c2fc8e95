package handler

import (
	"net/http"

	"github.com/dootask/asset-hub-sub002/internal/middleware"
	"github.com/dootask/asset-hub-sub002/internal/service"
	"github.com/dootask/asset-hub-sub002/pkg/pagination"
	"github.com/dootask/asset-hub-sub002/pkg/response"

	"github.com/gin-gonic/gin"
)

type ConsumableHandler struct {
	consumableService service.ConsumableService
	operationService  service.OperationService
}

func NewConsumableHandler(consumableService service.ConsumableService, operationService service.OperationService) *ConsumableHandler {
	return &ConsumableHandler{consumableService: consumableService, operationService: operationService}
}

func (h *ConsumableHandler) RegisterRoutes(router *gin.RouterGroup) {
	consumables := router.Group("/consumables")
	{
		consumables.GET("", middleware.RequirePermission(middleware.PermAssetsRead), h.GetConsumables)
		consumables.GET("/:id", middleware.RequirePermission(middleware.PermAssetsRead), h.GetConsumable)
		consumables.POST("", middleware.RequirePermission(middleware.PermAssetsWrite), h.CreateConsumable)
		consumables.GET("/:id/operations", middleware.RequirePermission(middleware.PermAssetsRead), h.GetOperations)
		consumables.POST("/:id/operations", middleware.RequirePermission(middleware.PermApprovalsWrite), h.RequestOperation)
	}
}

// GetConsumables handles retrieving paginated stock levels
// @Summary      Get consumables
// @Tags         consumables
// @Security     BearerAuth
// @Produce      json
// @Param        status    query     string  false  "in-stock, low-stock, out-of-stock or reserved"
// @Param        search    query     string  false  "Search by name"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        pageSize  query     int     false  "Items per page (default 20)"
// @Success      200       {object}  response.Response{data=response.Page}
// @Router       /api/consumables [get]
func (h *ConsumableHandler) GetConsumables(c *gin.Context) {
	page := pagination.Parse(c)
	items, total, err := h.consumableService.ListConsumables(c.Request.Context(), c.Query("status"), c.Query("search"), page.Page, page.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, response.Page{
		Items:    items,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}))
}

// GetConsumable
// @Summary      Get consumable
// @Tags         consumables
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Consumable id"
// @Success      200  {object}  response.Response{data=service.ConsumableResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/consumables/{id} [get]
func (h *ConsumableHandler) GetConsumable(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	item, err := h.consumableService.GetConsumable(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// CreateConsumable
// @Summary      Create consumable
// @Tags         consumables
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateConsumableRequest  true  "Create Consumable Payload"
// @Success      201      {object}  response.Response{data=service.ConsumableResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/consumables [post]
func (h *ConsumableHandler) CreateConsumable(c *gin.Context) {
	var req service.CreateConsumableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	item, err := h.consumableService.CreateConsumable(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// GetOperations returns the stock card of the consumable
// @Summary      List consumable operations
// @Tags         consumables
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Consumable id"
// @Success      200  {object}  response.Response{data=[]model.ConsumableOperation}
// @Failure      404  {object}  response.Response
// @Router       /api/consumables/{id}/operations [get]
func (h *ConsumableHandler) GetOperations(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	ops, err := h.operationService.ListConsumableOperations(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, ops))
}

// RequestOperation requests a stock movement
// @Summary      Request consumable operation
// @Tags         consumables
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                            true  "Consumable id"
// @Param        payload  body      service.ConsumableOperationInput  true  "Signed quantity and reservation changes"
// @Success      201      {object}  response.Response{data=service.OperationResult}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/consumables/{id}/operations [post]
func (h *ConsumableHandler) RequestOperation(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.ConsumableOperationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	req.Actor = actorFrom(c)

	result, err := h.operationService.RequestConsumableOperation(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}
