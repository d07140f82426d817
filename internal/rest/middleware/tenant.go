package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ierr "github.com/zeroechelon/outpost/internal/errors"
	"github.com/zeroechelon/outpost/internal/types"
)

// TenantMiddleware resolves the caller's tenant identity and rejects
// requests that carry none. Identity comes from the gateway authorizer
// when running behind one, otherwise from the X-Tenant-ID header set by
// the edge proxy. Requests never name tenants in the path or body.
func TenantMiddleware(c *gin.Context) {
	tenantID := c.GetHeader(HeaderTenantID)
	if tenantID == "" {
		err := ierr.NewError("missing tenant identity").
			WithHint("Authentication required").
			Mark(ierr.ErrValidation)
		c.AbortWithStatusJSON(http.StatusUnauthorized, ierr.NewErrorResponse(err))
		return
	}

	ctx := types.SetTenantID(c.Request.Context(), tenantID)
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}
