package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Ahad-dev/fypify-api/internal/config"
	"github.com/Ahad-dev/fypify-api/internal/database"
	"github.com/Ahad-dev/fypify-api/internal/handler"
	"github.com/Ahad-dev/fypify-api/internal/middleware"
	"github.com/Ahad-dev/fypify-api/internal/models"
	"github.com/Ahad-dev/fypify-api/internal/repository"
	"github.com/Ahad-dev/fypify-api/internal/router"
	"github.com/Ahad-dev/fypify-api/internal/service"
	"github.com/Ahad-dev/fypify-api/pkg/filestore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.DocumentType{},
		&models.DeadlineBatch{},
		&models.ProjectDeadline{},
		&models.Project{},
		&models.ProjectMember{},
		&models.DocumentSubmission{},
		&models.SupervisorMarks{},
		&models.EvaluationMarks{},
		&models.FinalResult{},
		&models.ActivityLog{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis not configured, result cache and event stream disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSAddress != "" {
		natsConn, err = nats.Connect(cfg.NATSAddress)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	} else {
		logger.Warn().Msg("nats not configured, event fan-out disabled")
	}

	store, err := filestore.New(filestore.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create file store: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	submissionRepo := repository.NewSubmissionRepository(db)
	docTypeRepo := repository.NewDocumentTypeRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	deadlineRepo := repository.NewDeadlineRepository(db)
	marksRepo := repository.NewMarksRepository(db)
	resultRepo := repository.NewResultRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.EventChannel, natsConn, logger)
	catalogService := service.NewCatalogService(docTypeRepo, validate, activityService, logger)
	deadlineService := service.NewDeadlineService(deadlineRepo, docTypeRepo, validate, activityService, notificationService, cfg.MinDeadlineGap, cfg.DeadlineWindow, logger)
	submissionService := service.NewSubmissionService(submissionRepo, docTypeRepo, projectRepo, deadlineRepo, validate, store, activityService, notificationService, service.SubmissionConfig{SequentialGating: cfg.SequentialGating, GroupSizeMin: cfg.GroupSizeMin, GroupSizeMax: cfg.GroupSizeMax}, logger)
	markingService := service.NewMarkingService(marksRepo, submissionRepo, validate, activityService, cfg.RequiredEvaluators, logger)
	resultService := service.NewResultService(resultRepo, projectRepo, submissionRepo, deadlineRepo, docTypeRepo, markingService, activityService, notificationService, redisClient, cfg.ResultCacheTTL, logger)

	catalogHandler := handler.NewCatalogHandler(catalogService, logger)
	deadlineHandler := handler.NewDeadlineHandler(deadlineService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	markingHandler := handler.NewMarkingHandler(markingService, logger)
	resultHandler := handler.NewResultHandler(resultService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		CatalogHandler:      catalogHandler,
		DeadlineHandler:     deadlineHandler,
		SubmissionHandler:   submissionHandler,
		MarkingHandler:      markingHandler,
		ResultHandler:       resultHandler,
		NotificationHandler: notificationHandler,
		ActivityHandler:     activityHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
