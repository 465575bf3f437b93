package attendance

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
	teachers := r.Group("/attendance/teachers")
	teachers.Use(auth)
	{
		teachers.POST("/bulk",
			middleware.RateLimitByUser(1, 5),
			middleware.Authorize(rbacService, domain.ResourceAttendance, domain.ActionCreate),
			handler.BulkUpsert,
		)
		teachers.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.Authorize(rbacService, domain.ResourceAttendance, domain.ActionRead),
			handler.ListByDate,
		)
	}
}
