package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	tenantdomain "github.com/praxislegal/praxis/internal/tenant/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTenantService struct {
	status string
	err    error
}

func (f *fakeTenantService) GetByID(ctx context.Context, id string) (*tenantdomain.TenantResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &tenantdomain.TenantResponse{
		ID:              id,
		BootstrapStatus: f.status,
	}, nil
}

func newGateTestRouter(tenantsvc tenantdomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := &Server{tenantsvc: tenantsvc}

	r := gin.New()
	r.Use(ErrorHandlingMiddleware())
	r.Use(s.ActorContext())

	gated := r.Group("/gated")
	gated.Use(s.BootstrapGate())
	gated.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	ops := r.Group("/ops")
	ops.Use(s.RequireOperator())
	ops.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return r
}

func doRequest(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/gated/ping", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBootstrapGateRejectsAnonymous(t *testing.T) {
	r := newGateTestRouter(&fakeTenantService{status: tenantdomain.BootstrapCompleted})

	w := doRequest(r, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBootstrapGateBlocksIncompleteTenant(t *testing.T) {
	r := newGateTestRouter(&fakeTenantService{status: tenantdomain.BootstrapPending})

	w := doRequest(r, map[string]string{
		"X-Account-Id": "200",
		"X-Tenant-Id":  "100",
		"X-Actor-Role": "ADMIN",
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	var body struct {
		Error struct {
			Type            string `json:"type"`
			BootstrapStatus string `json:"bootstrap_status"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "setup_incomplete", body.Error.Type)
	assert.Equal(t, tenantdomain.BootstrapPending, body.Error.BootstrapStatus)
}

func TestBootstrapGateAllowsCompletedTenant(t *testing.T) {
	r := newGateTestRouter(&fakeTenantService{status: tenantdomain.BootstrapCompleted})

	w := doRequest(r, map[string]string{
		"X-Account-Id": "200",
		"X-Tenant-Id":  "100",
		"X-Actor-Role": "ADMIN",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBootstrapGateBypassesOperators(t *testing.T) {
	// Operator requests never consult tenant state at all.
	r := newGateTestRouter(&fakeTenantService{err: tenantdomain.ErrNotFound})

	w := doRequest(r, map[string]string{
		"X-Account-Id": "200",
		"X-Actor-Role": "OPERATOR",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBootstrapGateBypassesActorsWithoutTenant(t *testing.T) {
	r := newGateTestRouter(&fakeTenantService{err: tenantdomain.ErrNotFound})

	w := doRequest(r, map[string]string{
		"X-Account-Id": "200",
		"X-Actor-Role": "ADMIN",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireOperator(t *testing.T) {
	r := newGateTestRouter(&fakeTenantService{status: tenantdomain.BootstrapCompleted})

	req := httptest.NewRequest(http.MethodGet, "/ops/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/ops/ping", nil)
	req.Header.Set("X-Account-Id", "200")
	req.Header.Set("X-Actor-Role", "ADMIN")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/ops/ping", nil)
	req.Header.Set("X-Account-Id", "200")
	req.Header.Set("X-Actor-Role", "operator")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
