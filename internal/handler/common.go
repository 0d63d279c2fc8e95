package handler

import (
	"net/http"

	"github.com/dootask/asset-hub-sub002/internal/middleware"
	"github.com/dootask/asset-hub-sub002/internal/service"
	"github.com/dootask/asset-hub-sub002/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// actorFrom maps the authenticated identity onto the service-level actor
func actorFrom(c *gin.Context) service.Actor {
	identity, _ := middleware.CurrentIdentity(c)
	return service.Actor{
		ID:      identity.ID,
		Name:    identity.Name,
		Manager: identity.HasPermission(middleware.PermApprovalsManage),
	}
}

func respondError(c *gin.Context, err error) {
	resp := response.FromError(err)
	c.JSON(resp.StatusCode, resp)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, msg))
}

// uuidParam parses the named path parameter, answering 400 when it is not a uuid
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name+": "+c.Param(name))
		return uuid.Nil, false
	}
	return id, true
}

// optionalUUIDQuery parses an optional query parameter; ok is false after a 400 was written
func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, "invalid "+name+": "+raw)
		return nil, false
	}
	return &id, true
}
