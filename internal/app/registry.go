package app

import (
	"context"

	"go-eduhr/internal/attendance"
	"go-eduhr/internal/auth"
	"go-eduhr/internal/config"
	"go-eduhr/internal/holiday"
	"go-eduhr/internal/leave"
	"go-eduhr/internal/leavetype"
	"go-eduhr/internal/messaging/kafka"
	"go-eduhr/internal/middleware"
	"go-eduhr/internal/rbac"
	"go-eduhr/internal/rbac/infra"
	"go-eduhr/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	attendanceRepo := attendance.NewRepository(gormDB)
	holidayRepo := holiday.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	leaveTypeRepo := leavetype.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)
	userRepo := user.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService, err := rbac.NewService(enforcer)
	if err != nil {
		return err
	}

	// --- Services ---
	holidayCalendar := holiday.NewCalendar(holidayRepo, rdb, cfg.HolidayCacheTTL)

	attendanceService := attendance.NewService(gormDB, attendanceRepo, attendance.RetryConfig{
		MaxAttempts: cfg.Attendance.MaxAttempts,
		BaseBackoff: cfg.Attendance.BaseBackoff,
	})
	authService := auth.NewService(userRepo, auth.TokenConfig{
		Secret:     cfg.Auth.JWTSecret,
		AccessTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTTL: cfg.Auth.RefreshTokenTTL,
	})
	holidayService := holiday.NewService(holidayRepo, holidayCalendar)
	leaveService := leave.NewService(gormDB, leaveRepo, holidayCalendar, outboxRepo)
	leaveTypeService := leavetype.NewService(gormDB, leaveTypeRepo)
	userService := user.NewService(gormDB, userRepo, outboxRepo)

	if err := userService.EnsureAdmin(context.Background(), cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return err
	}

	// --- Handlers ---
	attendanceHandler := attendance.NewHandler(attendanceService)
	authHandler := auth.NewHandler(authService, cfg.IsProduction())
	holidayHandler := holiday.NewHandler(holidayService)
	leaveHandler := leave.NewHandler(leaveService)
	leaveTypeHandler := leavetype.NewHandler(leaveTypeService)
	rbacHandler := rbac.NewHandler(rbacService)
	userHandler := user.NewHandler(userService)

	// --- Routes Registration ---
	authMiddleware := middleware.AuthMiddleware(cfg.Auth.JWTSecret)
	idempotency := middleware.Idempotency(rdb)

	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, authMiddleware)
		attendance.RegisterRoutes(api, attendanceHandler, rbacService, authMiddleware)
		holiday.RegisterRoutes(api, holidayHandler, rbacService, authMiddleware)
		leave.RegisterRoutes(api, leaveHandler, rbacService, authMiddleware, idempotency)
		leavetype.RegisterRoutes(api, leaveTypeHandler, rbacService, authMiddleware)
		rbac.RegisterRoutes(api, rbacHandler, rbacService, authMiddleware)
		user.RegisterRoutes(api, userHandler, rbacService, authMiddleware)
	}

	return nil
}
