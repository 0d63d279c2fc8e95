package handler

import (
	"net/http"

	"github.com/dootask/asset-hub-sub002/internal/middleware"
	"github.com/dootask/asset-hub-sub002/internal/service"
	"github.com/dootask/asset-hub-sub002/pkg/pagination"
	"github.com/dootask/asset-hub-sub002/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CreateApprovalRequest struct {
	Type                  string                     `json:"type"`
	Title                 string                     `json:"title" binding:"required"`
	Reason                string                     `json:"reason"`
	AssetID               *uuid.UUID                 `json:"asset_id" swaggertype:"string"`
	ConsumableID          *uuid.UUID                 `json:"consumable_id" swaggertype:"string"`
	OperationID           *uuid.UUID                 `json:"operation_id" swaggertype:"string"`
	ConsumableOperationID *uuid.UUID                 `json:"consumable_operation_id" swaggertype:"string"`
	Approver              *service.ApproverCandidate `json:"approver"`
	Metadata              datatypes.JSON             `json:"metadata" swaggertype:"object"`
}

type TransitionRequest struct {
	Comment string `json:"comment"`
}

type ResolveApproverRequest struct {
	Type     string                     `json:"type" binding:"required"`
	Approver *service.ApproverCandidate `json:"approver"`
}

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	approvals := router.Group("/approvals")
	{
		approvals.GET("", middleware.RequirePermission(middleware.PermApprovalsRead), h.ListApprovalRequests)
		approvals.GET("/:id", middleware.RequirePermission(middleware.PermApprovalsRead), h.GetApprovalRequest)
		approvals.POST("", middleware.RequirePermission(middleware.PermApprovalsWrite), h.CreateApprovalRequest)
		approvals.POST("/resolve-approver", middleware.RequirePermission(middleware.PermApprovalsWrite), h.ResolveApprover)
		approvals.POST("/:id/approve", middleware.RequirePermission(middleware.PermApprovalsApprove), h.transition(service.TransitionApprove))
		approvals.POST("/:id/reject", middleware.RequirePermission(middleware.PermApprovalsApprove), h.transition(service.TransitionReject))
		approvals.POST("/:id/cancel", middleware.RequirePermission(middleware.PermApprovalsWrite), h.transition(service.TransitionCancel))
	}
}

// ListApprovalRequests returns approval requests matching the query filters
// @Summary      List approval requests
// @Tags         approvals
// @Security     BearerAuth
// @Produce      json
// @Param        status         query     string  false  "pending, approved, rejected or cancelled"
// @Param        type           query     string  false  "Action type"
// @Param        applicant      query     string  false  "Applicant user id"
// @Param        approver       query     string  false  "Approver user id"
// @Param        role           query     string  false  "Only requests whose approver is a member of this role"
// @Param        asset_id       query     string  false  "Asset id"
// @Param        consumable_id  query     string  false  "Consumable id"
// @Param        page           query     int     false  "Page number (default 1)"
// @Param        pageSize       query     int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=response.Page}
// @Failure      400  {object}  response.Response
// @Router       /api/approvals [get]
func (h *ApprovalHandler) ListApprovalRequests(c *gin.Context) {
	assetID, ok := optionalUUIDQuery(c, "asset_id")
	if !ok {
		return
	}
	consumableID, ok := optionalUUIDQuery(c, "consumable_id")
	if !ok {
		return
	}
	page := pagination.Parse(c)

	items, total, err := h.approvalService.List(c.Request.Context(), service.ApprovalListFilter{
		Status:       c.Query("status"),
		Type:         c.Query("type"),
		ApplicantID:  c.Query("applicant"),
		ApproverID:   c.Query("approver"),
		RoleID:       c.Query("role"),
		AssetID:      assetID,
		ConsumableID: consumableID,
		Page:         page.Page,
		PageSize:     page.PageSize,
	})
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

// GetApprovalRequest returns a single approval request
// @Summary      Get approval request
// @Tags         approvals
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Approval request id"
// @Success      200  {object}  response.Response{data=model.ApprovalRequest}
// @Failure      404  {object}  response.Response
// @Router       /api/approvals/{id} [get]
func (h *ApprovalHandler) GetApprovalRequest(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	req, err := h.approvalService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// CreateApprovalRequest opens a pending approval request for the current user
// @Summary      Create approval request
// @Tags         approvals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      CreateApprovalRequest  true  "Approval request"
// @Success      201      {object}  response.Response{data=model.ApprovalRequest}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/approvals [post]
func (h *ApprovalHandler) CreateApprovalRequest(c *gin.Context) {
	var req CreateApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	created, err := h.approvalService.Create(c.Request.Context(), service.CreateApprovalInput{
		Type:                  req.Type,
		Title:                 req.Title,
		Reason:                req.Reason,
		AssetID:               req.AssetID,
		ConsumableID:          req.ConsumableID,
		OperationID:           req.OperationID,
		ConsumableOperationID: req.ConsumableOperationID,
		Approver:              req.Approver,
		Metadata:              req.Metadata,
		Applicant:             actorFrom(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, created))
}

// ResolveApprover previews who would approve a request of the given type
// @Summary      Preview approver resolution
// @Description  Returns the resolved approver, or null plus the role members to choose from
// @Tags         approvals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      ResolveApproverRequest  true  "Action type and optional approver"
// @Success      200      {object}  response.Response{data=service.ApproverPreview}
// @Failure      422      {object}  response.Response
// @Router       /api/approvals/resolve-approver [post]
func (h *ApprovalHandler) ResolveApprover(c *gin.Context) {
	var req ResolveApproverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	preview, err := h.approvalService.PreviewApprover(c.Request.Context(), req.Type, req.Approver)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, preview))
}

// transition handles approve, reject and cancel
// @Summary      Approve, reject or cancel an approval request
// @Tags         approvals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string             true   "Approval request id"
// @Param        action   path      string             true   "approve, reject or cancel"
// @Param        payload  body      TransitionRequest  false  "Optional comment"
// @Success      200      {object}  response.Response{data=model.ApprovalRequest}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/approvals/{id}/{action} [post]
func (h *ApprovalHandler) transition(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		var req TransitionRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, "Invalid request payload: "+err.Error())
				return
			}
		}

		result, err := h.approvalService.Apply(c.Request.Context(), id, service.ApplyInput{
			Action:  action,
			Actor:   actorFrom(c),
			Comment: req.Comment,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
	}
}
