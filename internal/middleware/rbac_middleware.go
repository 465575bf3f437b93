package middleware

import (
	"net/http"

	"go-eduhr/internal/domain"
	"go-eduhr/internal/shared/apperror"
	"go-eduhr/internal/shared/contextutil"
	"go-eduhr/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RBACService is satisfied by rbac.Service.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

// Authorize is the single route guard: the session role must hold
// resource:action in the policy table.
func Authorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.AbortError(c, http.StatusUnauthorized, apperror.CodeUnauthorized, apperror.ErrUnauthorized.Message)
			return
		}

		allowed, err := service.Enforce(domain.EnforceRequest{
			Role:     role,
			Resource: resource,
			Action:   action,
		})
		if err != nil {
			contextutil.GetLogger(c.Request.Context(), zap.L()).Error("rbac enforce failed",
				zap.String("resource", resource),
				zap.String("action", action),
				zap.Error(err),
			)
			response.AbortError(c, http.StatusInternalServerError, apperror.CodeInternalError, "Internal server error")
			return
		}

		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ApiEnvelope{
				Ok: false,
				Error: response.ErrorBody{
					Code:    apperror.CodeForbidden,
					Message: apperror.ErrForbidden.Message,
					Details: gin.H{"required": resource + ":" + action},
				},
			})
			return
		}

		c.Next()
	}
}
