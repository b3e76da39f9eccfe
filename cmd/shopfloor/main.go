package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/theDevJade/Robodores-Shop-Website/internal/config"
	"github.com/theDevJade/Robodores-Shop-Website/internal/middleware"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/handler"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/repository"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting shopfloor service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := migrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, cfg, zapLogger)
	handlers := handler.NewHandlers(services)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.PendingUser{},
		&entity.ManufacturingPart{},
		&entity.AttendanceEntry{},
		&entity.ShopJob{},
		&entity.InventoryItem{},
		&entity.InventoryTransaction{},
		&entity.OrderRequest{},
		&entity.Ticket{},
		&entity.ScheduleBlock{},
		&entity.AppConfig{},
		&entity.SheetLink{},
	)
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	api := r.Group("/api")
	{
		// No login required. Register stays open for first-run bootstrap;
		// the service itself demands an admin once any account exists.
		auth := api.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/register", h.Auth.Register)
			auth.POST("/request", h.Auth.RequestAccount)
		}

		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PATCH("/auth/me", h.Auth.UpdateMe)

			leads := authorized.Group("")
			leads.Use(middleware.RequireRoles(entity.RoleLead, entity.RoleAdmin))

			admins := authorized.Group("")
			admins.Use(middleware.RequireRoles(entity.RoleAdmin))

			// Accounts
			leads.GET("/users", h.Auth.ListUsers)
			admins.PATCH("/users/:id", h.Auth.UpdateUser)
			admins.DELETE("/users/:id", h.Auth.DeleteUser)
			admins.GET("/auth/requests", h.Auth.ListRequests)
			admins.POST("/auth/requests/:id/approve", h.Auth.ApproveRequest)
			admins.POST("/auth/requests/:id/reject", h.Auth.RejectRequest)

			// Manufacturing board
			parts := authorized.Group("/manufacturing")
			{
				parts.GET("/parts", h.Manufacturing.List)
				parts.POST("/parts", h.Manufacturing.Create)
				parts.GET("/summary", h.Manufacturing.Summary)
				parts.PATCH("/parts/:id", h.Manufacturing.Update)
				parts.POST("/parts/:id/status", h.Manufacturing.ChangeStatus)
				parts.POST("/parts/:id/claim", h.Manufacturing.Claim)
				parts.POST("/parts/:id/unclaim", h.Manufacturing.Unclaim)
				parts.POST("/parts/:id/eta", h.Manufacturing.UpdateETA)
				parts.POST("/parts/:id/files", h.Manufacturing.AttachFiles)
				parts.GET("/parts/:id/files/:kind", h.Manufacturing.OpenFile)
				parts.DELETE("/parts/:id", h.Manufacturing.Delete)
			}
			leads.GET("/manufacturing/lookups/users", h.Manufacturing.Lookups)

			// Attendance. The kiosk logs in with its own account; scans
			// still carry the scanned member's identifier.
			authorized.POST("/attendance/scan", h.Attendance.Scan)
			authorized.GET("/attendance/today", h.Attendance.Today)
			authorized.GET("/attendance/logs", h.Attendance.TodayLogs)
			leads.GET("/attendance/history", h.Attendance.History)
			leads.PATCH("/attendance/entries/:id", h.Attendance.UpdateEntryStatus)
			admins.DELETE("/attendance/entries/:id", h.Attendance.DeleteEntry)

			// Shop queues
			jobs := authorized.Group("/jobs")
			{
				jobs.GET("", h.Job.List)
				jobs.POST("", h.Job.Submit)
				jobs.GET("/:id/file", h.Job.OpenFile)
				jobs.POST("/:id/claim", h.Job.Claim)
				jobs.POST("/:id/unclaim", h.Job.Unclaim)
				jobs.DELETE("/:id", h.Job.Delete)
			}
			leads.PATCH("/jobs/:id/status", h.Job.UpdateStatus)
			leads.POST("/jobs/reorder", h.Job.Reorder)

			// Inventory
			authorized.GET("/inventory", h.Inventory.List)
			authorized.GET("/inventory/:id/transactions", h.Inventory.Transactions)
			authorized.POST("/inventory/:id/adjust", h.Inventory.Adjust)
			leads.POST("/inventory", h.Inventory.Create)
			leads.PATCH("/inventory/:id", h.Inventory.Update)
			leads.DELETE("/inventory/:id", h.Inventory.Delete)

			// Purchase requests
			authorized.GET("/orders", h.Order.List)
			authorized.POST("/orders", h.Order.Create)
			authorized.DELETE("/orders/:id", h.Order.Delete)
			leads.PATCH("/orders/:id/status", h.Order.UpdateStatus)

			// Tickets
			authorized.GET("/tickets", h.Ticket.List)
			authorized.POST("/tickets", h.Ticket.Create)
			leads.PATCH("/tickets/:id/status", h.Ticket.UpdateStatus)
			admins.DELETE("/tickets/:id", h.Ticket.Delete)

			// Attendance schedule
			authorized.GET("/schedules", h.Schedule.List)
			admins.POST("/schedules", h.Schedule.Create)
			admins.DELETE("/schedules/:id", h.Schedule.Delete)

			// Settings and sheet links
			leads.GET("/settings/config", h.Settings.GetConfig)
			admins.PATCH("/settings/config", h.Settings.UpdateConfig)
			leads.GET("/settings/sheets", h.Settings.ListSheetLinks)
			leads.PUT("/settings/sheets/:section", h.Settings.PutSheetLink)
			leads.DELETE("/settings/sheets/:section", h.Settings.DeleteSheetLink)
			leads.POST("/settings/sheets/:section/sync", h.Settings.SyncSection)

			// Exports
			leads.GET("/exports/:section/csv", h.Export.CSV)
			leads.GET("/exports/:section/xlsx", h.Export.XLSX)
		}
	}
}
