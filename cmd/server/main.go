package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YuriiKoshliak/contacts-api/internal/auth"
	"github.com/YuriiKoshliak/contacts-api/internal/cache"
	"github.com/YuriiKoshliak/contacts-api/internal/config"
	"github.com/YuriiKoshliak/contacts-api/internal/database"
	"github.com/YuriiKoshliak/contacts-api/internal/email"
	"github.com/YuriiKoshliak/contacts-api/internal/handlers"
	"github.com/YuriiKoshliak/contacts-api/internal/logger"
	"github.com/YuriiKoshliak/contacts-api/internal/metrics"
	"github.com/YuriiKoshliak/contacts-api/internal/middleware"
	"github.com/YuriiKoshliak/contacts-api/internal/repository"
	"github.com/YuriiKoshliak/contacts-api/internal/storage"
	"github.com/YuriiKoshliak/contacts-api/internal/telemetry"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	// Tracing is opt-in; tp is nil when disabled
	tp, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  "contacts-api",
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Enabled:      cfg.TracingEnabled,
		SamplingRate: cfg.SamplingRate,
	})
	if err != nil {
		logger.Log.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	if tp != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(ctx)
		}()
	}

	metrics.Initialize()

	if err := database.Initialize(); err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if err != nil {
		logger.Log.Warn("Redis unavailable, rate limiting disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
	}

	emailService, err := email.NewService(cfg.AWSRegion, cfg.EmailFrom, cfg.EmailFromName, cfg.BaseURL)
	if err != nil {
		logger.Log.Fatal("Failed to initialize email service", zap.Error(err))
	}

	// Avatar uploads degrade gracefully when S3 is not configured
	var avatarUploader storage.AvatarUploader
	if cfg.S3Bucket != "" {
		s3Uploader, err := storage.NewS3Uploader(cfg.AWSRegion, cfg.S3Bucket, cfg.CDNBaseURL)
		if err != nil {
			logger.Log.Fatal("Failed to initialize S3 uploader", zap.Error(err))
		}
		if err := s3Uploader.CheckBucketAccess(context.Background()); err != nil {
			logger.Log.Warn("S3 bucket access failed, avatar uploads will fail", zap.Error(err))
		}
		avatarUploader = s3Uploader
	} else {
		logger.Log.Warn("S3_BUCKET not set, avatar uploads disabled")
	}

	userRepo := repository.NewUserRepository(database.DB)
	contactRepo := repository.NewContactRepository(database.DB)
	resetRepo := repository.NewPasswordResetRepository(database.DB)

	authService := auth.NewService(auth.Config{
		JWTSecret:       []byte(cfg.JWTSecret),
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
		EmailTokenTTL:   cfg.EmailTokenTTL,
		ResetTokenTTL:   cfg.ResetTokenTTL,
	}, userRepo, resetRepo)

	cleanup := auth.NewCleanupService(userRepo, resetRepo, time.Hour)
	cleanup.Start()
	defer cleanup.Stop()

	authHandlers := handlers.NewAuthHandlers(authService, emailService)
	contactHandlers := handlers.NewContactHandlers(contactRepo)
	userHandlers := handlers.NewUserHandlers(userRepo, avatarUploader)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware("contacts-api"))
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // Configure properly for production
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		checks := gin.H{}

		if err := database.Health(); err != nil {
			status = "degraded"
			checks["database"] = err.Error()
		} else {
			checks["database"] = "ok"
		}

		if rc := cache.GetRedisClient(); rc != nil {
			if err := rc.Health(c.Request.Context()); err != nil {
				status = "degraded"
				checks["redis"] = err.Error()
			} else {
				checks["redis"] = "ok"
			}
		} else {
			checks["redis"] = "not configured"
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    status,
			"checks":    checks,
			"timestamp": time.Now().UTC(),
			"service":   "contacts-api",
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.RedisRateLimitMiddleware("global", 120, time.Minute))
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", middleware.RedisRateLimitMiddleware("auth", 10, time.Minute), authHandlers.Register)
			authGroup.POST("/login", middleware.RedisRateLimitMiddleware("auth", 10, time.Minute), authHandlers.Login)
			authGroup.GET("/refresh", authHandlers.Refresh)
			authGroup.GET("/verify/:token", authHandlers.VerifyEmail)
			authGroup.POST("/resend-verification", authHandlers.ResendVerification)
			authGroup.POST("/password-reset", middleware.RedisRateLimitMiddleware("auth", 10, time.Minute), authHandlers.RequestPasswordReset)
			authGroup.POST("/password-reset/confirm", authHandlers.ConfirmPasswordReset)
		}

		users := api.Group("/users")
		users.Use(authHandlers.Middleware())
		{
			users.GET("/me", userHandlers.Me)
			users.PATCH("/me/avatar", userHandlers.UpdateAvatar)
		}

		contacts := api.Group("/contacts")
		contacts.Use(authHandlers.Middleware())
		{
			contacts.POST("", middleware.RedisRateLimitMiddleware("contacts_create", 5, time.Minute), contactHandlers.CreateContact)
			contacts.GET("", middleware.RedisRateLimitMiddleware("contacts_list", 10, time.Minute), contactHandlers.ListContacts)
			contacts.GET("/search", contactHandlers.SearchContacts)
			contacts.GET("/birthdays", contactHandlers.UpcomingBirthdays)
			contacts.GET("/:id", contactHandlers.GetContact)
			contacts.PUT("/:id", contactHandlers.UpdateContact)
			contacts.DELETE("/:id", contactHandlers.DeleteContact)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("Server listening",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Forced shutdown", zap.Error(err))
	}

	logger.Log.Info("Server stopped")
}
