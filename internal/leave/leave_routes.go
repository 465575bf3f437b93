package leave

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
	idempotency gin.HandlerFunc,
) {
	leaves := r.Group("/leaves")
	leaves.Use(auth)
	{
		apply := []gin.HandlerFunc{
			middleware.RateLimitByUser(1, 5),
			middleware.Authorize(rbacService, domain.ResourceLeave, domain.ActionCreate),
		}
		if idempotency != nil {
			apply = append(apply, idempotency)
		}
		leaves.POST("/apply", append(apply, handler.Apply)...)

		leaves.PATCH("/action",
			middleware.RateLimitByUser(2, 10),
			middleware.Authorize(rbacService, domain.ResourceLeave, domain.ActionDecide),
			handler.Action,
		)

		leaves.PATCH("/edit",
			middleware.RateLimitByUser(1, 5),
			middleware.Authorize(rbacService, domain.ResourceLeave, domain.ActionUpdate),
			handler.Edit,
		)

		leaves.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.Authorize(rbacService, domain.ResourceLeave, domain.ActionRead),
			handler.GetAll,
		)

		leaves.GET("/balances",
			middleware.Authorize(rbacService, domain.ResourceLeaveBalance, domain.ActionRead),
			handler.MyBalances,
		)

		leaves.GET("/balances/:user_id",
			middleware.Authorize(rbacService, domain.ResourceLeaveBalance, domain.ActionReadAll),
			handler.UserBalances,
		)

		leaves.GET("/:id",
			middleware.Authorize(rbacService, domain.ResourceLeave, domain.ActionRead),
			handler.GetById,
		)
	}
}
