package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/praxislegal/praxis/internal/account/domain"
	tenantdomain "github.com/praxislegal/praxis/internal/tenant/domain"
	"github.com/praxislegal/praxis/internal/tenantctx"
)

// ActorContext resolves the calling actor from the gateway-injected
// headers and stores it on the request context. Requests with no actor
// headers pass through anonymously; route guards decide what they may do.
func (s *Server) ActorContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := tenantctx.ParseID(c.GetHeader("X-Account-Id"))
		if !ok {
			c.Next()
			return
		}

		actor := tenantctx.Actor{
			AccountID: accountID,
			Role:      strings.ToUpper(strings.TrimSpace(c.GetHeader("X-Actor-Role"))),
		}
		if tenantID, ok := tenantctx.ParseID(c.GetHeader("X-Tenant-Id")); ok {
			actor.TenantID = tenantID
		}

		c.Request = c.Request.WithContext(tenantctx.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// RequireOperator guards the ops surface.
func (s *Server) RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := tenantctx.ActorFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if actor.Role != accountdomain.RoleOperator {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

// BootstrapGate rejects tenant-scoped requests until the actor's tenant
// finished bootstrapping. Operators and actors without a tenant bypass the
// gate; they have no hierarchy to be incomplete.
func (s *Server) BootstrapGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := tenantctx.ActorFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if actor.Role == accountdomain.RoleOperator || actor.TenantID == 0 {
			c.Next()
			return
		}

		tenant, err := s.tenantsvc.GetByID(c.Request.Context(), actor.TenantID.String())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if tenant.BootstrapStatus != tenantdomain.BootstrapCompleted {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"type":             "setup_incomplete",
					"message":          "tenant setup is not complete",
					"bootstrap_status": tenant.BootstrapStatus,
				},
			})
			return
		}

		c.Next()
	}
}
