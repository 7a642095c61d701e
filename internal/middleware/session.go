package middleware

import (
	"net/http"

	"github.com/admitra/admitra-backend/internal/model"
	"github.com/admitra/admitra-backend/internal/response"
	"github.com/admitra/admitra-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// CheckSingleDeviceSession validates the JWT's JTI against the active session
// in Redis. If the JTI doesn't match, the request is rejected (the session
// was reset by an admin, or another scan device logged in).
func CheckSingleDeviceSession(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		// Only enforce for proctor tokens.
		if claims.Role != model.StaffRoleProctor {
			c.Next()
			return
		}

		if err := authService.ValidateStaffSession(c.Request.Context(), claims.UserID, claims.ID); err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}

		c.Next()
	}
}
