package handler

import (
	"net/http"

	"github.com/dootask/asset-hub-sub002/internal/middleware"
	"github.com/dootask/asset-hub-sub002/internal/service"
	"github.com/dootask/asset-hub-sub002/pkg/pagination"
	"github.com/dootask/asset-hub-sub002/pkg/response"

	"github.com/gin-gonic/gin"
)

type BorrowHandler struct {
	borrowService service.BorrowService
}

func NewBorrowHandler(borrowService service.BorrowService) *BorrowHandler {
	return &BorrowHandler{borrowService: borrowService}
}

func (h *BorrowHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/borrow-records", middleware.RequirePermission(middleware.PermAssetsRead), h.ListBorrowRecords)
}

// ListBorrowRecords
// @Summary      List borrow records
// @Tags         assets
// @Security     BearerAuth
// @Produce      json
// @Param        asset_id  query     string  false  "Asset id"
// @Param        status    query     string  false  "active or returned"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        pageSize  query     int     false  "Items per page (default 20)"
// @Success      200       {object}  response.Response{data=response.Page}
// @Failure      400       {object}  response.Response
// @Router       /api/borrow-records [get]
func (h *BorrowHandler) ListBorrowRecords(c *gin.Context) {
	assetID, ok := optionalUUIDQuery(c, "asset_id")
	if !ok {
		return
	}
	page := pagination.Parse(c)

	recs, total, err := h.borrowService.List(c.Request.Context(), service.BorrowListFilter{
		AssetID:  assetID,
		Status:   c.Query("status"),
		Page:     page.Page,
		PageSize: page.PageSize,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, response.Page{
		Items:    recs,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}))
}
