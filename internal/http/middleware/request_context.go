package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/vorhaben-backend/internal/platform/ctxutil"
)

// HeaderUserEmail carries the caller identity set by the upstream auth proxy.
const HeaderUserEmail = "X-User-Email"

// AttachRequestContext stores the caller identity on the request context. Requests without
// the header continue anonymously; owner-scoped routes use RequireOwner.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderUserEmail)))
		if email != "" {
			ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{OwnerEmail: email})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ctxutil.OwnerEmail(c.Request.Context()) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing " + HeaderUserEmail + " header", "code": "unauthorized"},
			})
			return
		}
		c.Next()
	}
}
