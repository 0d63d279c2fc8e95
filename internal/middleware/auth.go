package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dootask/asset-hub-sub002/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Permission codes checked by route middleware
const (
	PermApprovalsRead    = "approvals.read"
	PermApprovalsWrite   = "approvals.write"
	PermApprovalsApprove = "approvals.approve"
	PermApprovalsManage  = "approvals.manage" // act on requests assigned to someone else
	PermAssetsRead       = "assets.read"
	PermAssetsWrite      = "assets.write"
	PermConfigManage     = "config.manage"
	PermRolesManage      = "roles.manage"
	PermAuditRead        = "audit.read"
)

// RoleAdmin passes every permission check
const RoleAdmin = "admin"

const identityKey = "identity"

// Identity is the acting user as asserted by the host platform's token
type Identity struct {
	ID          string
	Name        string
	Role        string
	Permissions []string
}

// HasPermission reports whether the identity carries perm; admin has all permissions
func (i Identity) HasPermission(perm string) bool {
	if i.Role == RoleAdmin {
		return true
	}
	for _, p := range i.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the identity is a platform administrator
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// ParseToken verifies an HMAC-signed token and extracts the identity claims
func ParseToken(tokenString string, secret []byte) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return Identity{}, err
	}
	if !token.Valid {
		return Identity{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, errors.New("token subject is missing")
	}
	identity := Identity{ID: sub}
	identity.Name, _ = claims["name"].(string)
	identity.Role, _ = claims["role"].(string)
	if perms, ok := claims["perms"].([]interface{}); ok {
		for _, p := range perms {
			if s, ok := p.(string); ok {
				identity.Permissions = append(identity.Permissions, s)
			}
		}
	}
	return identity, nil
}

// Authenticate validates the token from the access_token cookie or the Authorization header
func Authenticate(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Try cookie first, fallback to Authorization header
		tokenString, cookieErr := c.Cookie("access_token")
		if cookieErr != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
				return
			}
			tokenString = parts[1]
		}

		identity, err := ParseToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token: "+err.Error()))
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequirePermission aborts with 403 unless the authenticated identity has every listed permission.
// It must run after Authenticate.
func RequirePermission(requiredPerms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		for _, required := range requiredPerms {
			if !identity.HasPermission(required) {
				c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: missing permission '"+required+"'"))
				return
			}
		}

		c.Next()
	}
}

// CurrentIdentity returns the identity stored by Authenticate
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	identity, ok := v.(Identity)
	return identity, ok
}
