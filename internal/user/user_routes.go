package user

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
	users := r.Group("/users")
	users.Use(auth)
	{
		users.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.Authorize(rbacService, domain.ResourceUser, domain.ActionRead),
			handler.GetAll,
		)

		users.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.Authorize(rbacService, domain.ResourceUser, domain.ActionRead),
			handler.GetById,
		)

		users.POST("",
			middleware.RateLimitByUser(1, 5),
			middleware.Authorize(rbacService, domain.ResourceUser, domain.ActionCreate),
			handler.Create,
		)

		users.PATCH("/:id/status",
			middleware.RateLimitByUser(0.5, 2),
			middleware.Authorize(rbacService, domain.ResourceUser, domain.ActionUpdate),
			handler.ToggleStatus,
		)

		users.POST("/me/password",
			middleware.RateLimitByUser(0.2, 2),
			handler.ChangePassword,
		)
	}
}
