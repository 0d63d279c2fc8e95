package handler

import (
	"net/http"

	"github.com/dootask/asset-hub-sub002/internal/middleware"
	"github.com/dootask/asset-hub-sub002/internal/service"
	"github.com/dootask/asset-hub-sub002/pkg/response"

	"github.com/gin-gonic/gin"
)

type ActionConfigHandler struct {
	configService service.ActionConfigService
}

func NewActionConfigHandler(configService service.ActionConfigService) *ActionConfigHandler {
	return &ActionConfigHandler{configService: configService}
}

func (h *ActionConfigHandler) RegisterRoutes(router *gin.RouterGroup) {
	configs := router.Group("/action-configs")
	{
		configs.GET("", middleware.RequirePermission(middleware.PermApprovalsRead), h.ListActionConfigs)
		configs.GET("/:type", middleware.RequirePermission(middleware.PermApprovalsRead), h.GetActionConfig)
		configs.PUT("/:type", middleware.RequirePermission(middleware.PermConfigManage), h.UpdateActionConfig)
	}
}

// ListActionConfigs returns the approval policy of every action type
// @Summary      List action configs
// @Tags         action-configs
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.ActionConfig}
// @Router       /api/action-configs [get]
func (h *ActionConfigHandler) ListActionConfigs(c *gin.Context) {
	cfgs, err := h.configService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cfgs))
}

// GetActionConfig
// @Summary      Get action config
// @Tags         action-configs
// @Security     BearerAuth
// @Produce      json
// @Param        type  path      string  true  "Action type"
// @Success      200   {object}  response.Response{data=model.ActionConfig}
// @Failure      404   {object}  response.Response
// @Router       /api/action-configs/{type} [get]
func (h *ActionConfigHandler) GetActionConfig(c *gin.Context) {
	cfg, err := h.configService.Get(c.Request.Context(), c.Param("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cfg))
}

// UpdateActionConfig applies a partial update to one action type's policy
// @Summary      Update action config
// @Tags         action-configs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        type     path      string                           true  "Action type"
// @Param        payload  body      service.UpdateActionConfigInput  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.ActionConfig}
// @Failure      400      {object}  response.Response
// @Router       /api/action-configs/{type} [put]
func (h *ActionConfigHandler) UpdateActionConfig(c *gin.Context) {
	var req service.UpdateActionConfigInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	req.Actor = actorFrom(c)

	cfg, err := h.configService.Update(c.Request.Context(), c.Param("type"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cfg))
}
