package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/BheemChand1/attendance-backend/internal/attendance"
	"github.com/BheemChand1/attendance-backend/internal/entitlement"
	"github.com/BheemChand1/attendance-backend/internal/handler"
	"github.com/BheemChand1/attendance-backend/internal/middleware"
	"github.com/BheemChand1/attendance-backend/internal/seed"
	"github.com/BheemChand1/attendance-backend/pkg/config"
	"github.com/BheemChand1/attendance-backend/pkg/database"
	"github.com/BheemChand1/attendance-backend/pkg/jwtutil"
	"github.com/BheemChand1/attendance-backend/pkg/logger"
	"github.com/BheemChand1/attendance-backend/pkg/mailer"
	"github.com/BheemChand1/attendance-backend/pkg/storage"
	"github.com/BheemChand1/attendance-backend/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting attendance backend...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if cfg.SeedData {
		if err := seed.Run(database.GetDB(), log); err != nil {
			log.Fatal("Failed to seed catalog data", zap.Error(err))
		}
	}

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Blob storage for attendance photos and employee documents
	store, err := storage.NewLocalStore(cfg.Storage.BaseDir)
	if err != nil {
		log.Fatal("Failed to initialize storage", zap.Error(err))
	}

	// Core services
	engine := entitlement.NewEngine(entitlement.NewGormRepository(database.GetDB()), log)
	attacher := attendance.NewAttacher(store, log)
	ledger := attendance.NewLedger(attendance.NewGormRepository(database.GetDB()), attacher, log)

	attendanceHandler := handler.NewAttendanceHandler(ledger)
	employeeHandler := handler.NewEmployeeHandler(engine, store)
	subscriptionHandler := handler.NewSubscriptionHandler(engine)
	registrationHandler := handler.NewRegistrationHandler(mailer.NewLogMailer(log))

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.Metrics)

	e.POST("/register-company", registrationHandler.RegisterCompany)
	e.GET("/verify-email", registrationHandler.VerifyEmail)
	e.POST("/resend-verification-email", registrationHandler.ResendVerificationEmail)
	e.GET("/subscription-plans", registrationHandler.GetSubscriptionPlans)
	e.POST("/login", handler.Login)
	e.GET("/roles", handler.GetRoles)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	api.POST("/logout", handler.Logout)
	api.GET("/user", handler.GetUser)

	// Attendance requires the plan to include the attendance feature
	att := api.Group("/attendance")
	att.Use(middleware.RequireFeature(engine, "attendance"))
	att.POST("/check-in", attendanceHandler.CheckIn)
	att.POST("/check-out", attendanceHandler.CheckOut)
	att.GET("/today", attendanceHandler.Today)
	att.GET("/history", attendanceHandler.History)
	att.GET("/company", attendanceHandler.CompanyReport)

	// Employee management
	employees := api.Group("/employees")
	employees.GET("", employeeHandler.Index)
	employees.POST("/onboard", employeeHandler.Onboard)
	employees.GET("/:id", employeeHandler.Show)
	employees.PUT("/:id", employeeHandler.Update)
	employees.DELETE("/:id", employeeHandler.Delete)
	employees.POST("/:id/documents", employeeHandler.UploadDocument)

	// Subscription management
	subscription := api.Group("/subscription")
	subscription.GET("/current", subscriptionHandler.Current)
	subscription.POST("/renew", subscriptionHandler.Renew)
	subscription.POST("/cancel", subscriptionHandler.Cancel)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
