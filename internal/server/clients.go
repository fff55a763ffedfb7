package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/praxislegal/praxis/internal/tenantctx"
)

func (s *Server) ListClients(c *gin.Context) {
	tenantID, ok := tenantctx.TenantIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	clients, err := s.clients.ListByTenant(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

func (s *Server) GetClient(c *gin.Context) {
	tenantID, ok := tenantctx.TenantIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	clientID, ok := tenantctx.ParseID(c.Param("id"))
	if !ok {
		AbortWithError(c, invalidRequestError())
		return
	}

	found, err := s.clients.GetByID(c.Request.Context(), clientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if found.TenantID != tenantID {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, found)
}
