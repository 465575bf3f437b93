package rbac

import (
	"go-eduhr/internal/domain"
	"go-eduhr/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, service Service, auth gin.HandlerFunc) {
	group := r.Group("/rbac")
	group.Use(auth)
	{
		group.GET("/policies", middleware.Authorize(service, domain.ResourceRBAC, domain.ActionRead), handler.ListPolicies)
		group.POST("/enforce", middleware.Authorize(service, domain.ResourceRBAC, domain.ActionRead), handler.Enforce)
	}
}
