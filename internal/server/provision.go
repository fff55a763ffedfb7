package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	bootstrapdomain "github.com/praxislegal/praxis/internal/bootstrap/domain"
)

type ProvisionRequest struct {
	TenantName string `json:"tenant_name"`
	AdminName  string `json:"admin_name"`
	AdminEmail string `json:"admin_email"`
}

func (s *Server) Provision(c *gin.Context) {
	var req ProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.bootstrapsvc.Provision(c.Request.Context(), bootstrapdomain.Request{
		TenantName: req.TenantName,
		AdminName:  req.AdminName,
		AdminEmail: req.AdminEmail,
	})
	if err != nil {
		s.metrics.RecordProvision("error")
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordProvision("ok")
	c.JSON(http.StatusCreated, result)
}
