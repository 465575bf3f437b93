package holiday

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
	holidays := r.Group("/holidays")
	holidays.Use(auth)
	{
		holidays.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.Authorize(rbacService, domain.ResourceHoliday, domain.ActionRead),
			handler.GetAll,
		)

		holidays.POST("",
			middleware.RateLimitByUser(1, 5),
			middleware.Authorize(rbacService, domain.ResourceHoliday, domain.ActionCreate),
			handler.Create,
		)

		holidays.DELETE("/:id",
			middleware.RateLimitByUser(1, 5),
			middleware.Authorize(rbacService, domain.ResourceHoliday, domain.ActionDelete),
			handler.Delete,
		)
	}
}
