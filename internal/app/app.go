package app

import (
	"go-eduhr/internal/attendance"
	"go-eduhr/internal/config"
	"go-eduhr/internal/holiday"
	"go-eduhr/internal/leave"
	"go-eduhr/internal/leavetype"
	"go-eduhr/internal/messaging/kafka"
	"go-eduhr/internal/middleware"
	"go-eduhr/internal/shared/connection"
	"go-eduhr/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BuildApp connects the infrastructure, migrates the schema and mounts every
// module on router. The returned cleanup closes the connections.
func BuildApp(router *gin.Engine, cfg *config.Config) (func(), error) {
	logger := zap.L().Named("app")

	gormDB, err := connectPostgres(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	if err := migrate(gormDB); err != nil {
		return nil, err
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.Database.MaxRetries)
	if err != nil {
		return nil, err
	}
	logger.Info("redis connection established")

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AddAllowHeaders("Authorization", middleware.HeaderRequestID, middleware.HeaderIdempotencyKey, "X-Client-Type")
	corsConfig.AddExposeHeaders(middleware.HeaderRequestID)

	router.Use(
		cors.New(corsConfig),
		middleware.RequestID(),
		middleware.ContextLogger(zap.L().Named("http")),
	)

	if err := registerModules(router, cfg, gormDB, redisClient); err != nil {
		return nil, err
	}

	cleanup := func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("close redis failed", zap.Error(err))
		}
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return cleanup, nil
}

func connectPostgres(cfg *config.Config) (*gorm.DB, error) {
	return connection.ConnectGORMWithRetry(connection.PostgresConfig{
		Host:       cfg.Database.Host,
		User:       cfg.Database.User,
		Password:   cfg.Database.Password,
		DBName:     cfg.Database.Name,
		Port:       cfg.Database.Port,
		SSLMode:    cfg.Database.SSLMode,
		MaxRetries: cfg.Database.MaxRetries,
	})
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&leavetype.LeaveType{},
		&leave.LeaveBalance{},
		&leave.LeaveRequest{},
		&holiday.Holiday{},
		&attendance.TeacherAttendance{},
		&kafka.OutboxEvent{},
	)
}
