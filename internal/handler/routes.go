package handler

import "github.com/gin-gonic/gin"

// Handlers groups every handler served under /api
type Handlers struct {
	Approvals     *ApprovalHandler
	ActionConfigs *ActionConfigHandler
	Roles         *RoleHandler
	Assets        *AssetHandler
	Consumables   *ConsumableHandler
	Borrows       *BorrowHandler
	Audit         *AuditHandler
}

// Mount registers all routes on api, which must already authenticate requests
func (h Handlers) Mount(api *gin.RouterGroup) {
	h.Approvals.RegisterRoutes(api)
	h.ActionConfigs.RegisterRoutes(api)
	h.Roles.RegisterRoutes(api)
	h.Assets.RegisterRoutes(api)
	h.Consumables.RegisterRoutes(api)
	h.Borrows.RegisterRoutes(api)
	h.Audit.RegisterRoutes(api)
}
