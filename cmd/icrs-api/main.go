package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/college-icrs/icrs-api/api/swagger"
	"github.com/college-icrs/icrs-api/internal/handler"
	"github.com/college-icrs/icrs-api/internal/middleware"
	"github.com/college-icrs/icrs-api/internal/models"
	"github.com/college-icrs/icrs-api/internal/repository"
	"github.com/college-icrs/icrs-api/internal/service"
	"github.com/college-icrs/icrs-api/pkg/config"
	"github.com/college-icrs/icrs-api/pkg/database"
	"github.com/college-icrs/icrs-api/pkg/jobs"
	"github.com/college-icrs/icrs-api/pkg/logger"
	"github.com/college-icrs/icrs-api/pkg/mailer"
	corsmiddleware "github.com/college-icrs/icrs-api/pkg/middleware/cors"
	reqidmiddleware "github.com/college-icrs/icrs-api/pkg/middleware/requestid"
)

// @title ICRS API
// @version 1.0.0
// @description College grievance intake, routing and resolution tracking
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	grievanceRepo := repository.NewGrievanceRepository(db)
	historyRepo := repository.NewStatusHistoryRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	worker := service.NewNotificationWorker(mailer.New(cfg.SMTP, logr), metrics, logr)
	queue := jobs.NewQueue("notifications", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
		OnDrop:     worker.Dropped,
	})
	queue.Start(ctx)
	defer queue.Stop()

	dispatcher, depth, err := notificationDispatcher(ctx, cfg, queue, logr)
	if err != nil {
		logr.Sugar().Fatalw("notification backend failed", "error", err)
	}
	if err := metrics.RegisterQueueDepth(depth); err != nil {
		logr.Warn("queue depth gauge not registered", zap.Error(err))
	}
	notifier := service.NewNotificationService(dispatcher, metrics, logr, cfg.Notifications.Enabled)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	grievanceService := service.NewGrievanceService(grievanceRepo, historyRepo, userRepo, categoryRepo, notifier, metrics, validate, logr)
	commentService := service.NewCommentService(commentRepo, grievanceRepo, userRepo, notifier, validate, logr)
	categoryService := service.NewCategoryService(categoryRepo, userRepo, validate, logr)
	userService := service.NewUserService(userRepo, logr)
	exportService := service.NewExportService(grievanceRepo, logr)

	if cfg.Seed.Enabled {
		if err := categoryService.SeedDefaults(ctx, cfg.Seed.FacultyPassword); err != nil {
			logr.Sugar().Fatalw("reference data seeding failed", "error", err)
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics, db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		swagger.SwaggerInfo.BasePath = cfg.APIPrefix
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), authService,
		handler.NewAuthHandler(authService),
		handler.NewGrievanceHandler(grievanceService, exportService),
		handler.NewCommentHandler(commentService),
		handler.NewCategoryHandler(categoryService),
		handler.NewUserHandler(userService),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "notifications", cfg.Notifications.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func registerRoutes(api *gin.RouterGroup, auth *service.AuthService, authHandler *handler.AuthHandler, grievances *handler.GrievanceHandler, comments *handler.CommentHandler, categories *handler.CategoryHandler, users *handler.UserHandler) {
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(auth))
	secured.GET("/auth/me", authHandler.Me)

	secured.GET("/categories", categories.List)
	admin := secured.Group("/categories", middleware.RequireRoles(models.RoleAdmin))
	admin.POST("", categories.Create)
	admin.POST("/:id/subcategories", categories.CreateSubcategory)
	admin.DELETE("/:id", categories.Delete)

	secured.GET("/users", middleware.RequireRoles(models.RoleAdmin), users.List)

	g := secured.Group("/grievances")
	g.POST("", middleware.RequireRoles(models.RoleStudent), grievances.Create)

	staff := g.Group("", middleware.RequireStaff())
	staff.GET("", grievances.List)
	staff.GET("/status/:status", grievances.ListByStatus)
	staff.GET("/statistics", grievances.Statistics)
	staff.GET("/search", grievances.Search)
	staff.GET("/assigned", grievances.Assigned)
	staff.GET("/export", grievances.Export)
	staff.PATCH("/:id/assign", grievances.Assign)
	staff.PATCH("/:id/status", grievances.UpdateStatus)

	g.GET("/student/:studentId", grievances.ListByStudent)
	g.GET("/:id", grievances.Get)
	g.PUT("/:id", grievances.Update)
	g.DELETE("/:id", grievances.Delete)
	g.GET("/:id/history", grievances.History)
	g.GET("/:id/comments", comments.List)
	g.POST("/:id/comments", comments.Add)
}

// notificationDispatcher selects the queue backend. With redis, requests push to a shared list
// and this process relays the list into its worker pool. The returned depth func feeds the
// pending-notifications gauge.
func notificationDispatcher(ctx context.Context, cfg *config.Config, queue *jobs.Queue, logr *zap.Logger) (service.NotificationDispatcher, func() float64, error) {
	local := func() float64 { return float64(queue.Pending()) }
	if cfg.Notifications.Backend != config.NotificationBackendRedis {
		return service.NewQueueDispatcher(queue), local, nil
	}

	client, err := database.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	repo := repository.NewNotificationQueueRepository(client, cfg.Notifications.RedisKey)
	go func() {
		service.RelayNotifications(ctx, repo, queue, logr)
		_ = client.Close()
	}()

	depth := func() float64 {
		lenCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		shared, err := repo.Len(lenCtx)
		if err != nil {
			return local()
		}
		return float64(shared) + local()
	}
	return service.NewRedisDispatcher(repo), depth, nil
}
