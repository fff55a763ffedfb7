package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/praxislegal/praxis/internal/tenantctx"
)

// IntegrityReport returns the most recent scan without rescanning.
func (s *Server) IntegrityReport(c *gin.Context) {
	report := s.auditor.LastReport()
	if report == nil {
		c.JSON(http.StatusOK, gin.H{"report": nil, "message": "no scan has completed yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// RunIntegrityScan performs a fresh scan and returns its findings.
func (s *Server) RunIntegrityScan(c *gin.Context) {
	report, err := s.auditor.Scan(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func (s *Server) RecoverTenant(c *gin.Context) {
	tenantID, ok := tenantctx.ParseID(c.Param("id"))
	if !ok {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.recoverysvc.Recover(c.Request.Context(), tenantID); err != nil {
		AbortWithError(c, err)
		return
	}

	tenant, err := s.tenantsvc.GetByID(c.Request.Context(), tenantID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenant": tenant})
}

func (s *Server) BackfillDefaultClients(c *gin.Context) {
	updated, err := s.recoverysvc.BackfillDefaultClients(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts_updated": updated})
}
