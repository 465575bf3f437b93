package leavetype

import (
	"go-eduhr/internal/domain"
	"go-eduhr/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	auth gin.HandlerFunc,
) {
	types := r.Group("/leave-types")
	types.Use(auth)
	{
		types.GET("",
			middleware.Authorize(rbacService, domain.ResourceLeaveType, domain.ActionRead),
			handler.GetAll,
		)
		types.GET("/:id",
			middleware.Authorize(rbacService, domain.ResourceLeaveType, domain.ActionRead),
			handler.GetById,
		)
		types.POST("",
			middleware.RateLimitByUser(1, 5),
			middleware.Authorize(rbacService, domain.ResourceLeaveType, domain.ActionCreate),
			handler.Create,
		)
		types.PUT("/:id",
			middleware.RateLimitByUser(1, 5),
			middleware.Authorize(rbacService, domain.ResourceLeaveType, domain.ActionUpdate),
			handler.Update,
		)
		types.DELETE("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.Authorize(rbacService, domain.ResourceLeaveType, domain.ActionDelete),
			handler.Delete,
		)
	}
}
