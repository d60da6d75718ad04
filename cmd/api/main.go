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
	"github.com/rs/zerolog"

	"github.com/widya-labs/widya-go-api/internal/config"
	"github.com/widya-labs/widya-go-api/internal/database"
	"github.com/widya-labs/widya-go-api/internal/handler"
	"github.com/widya-labs/widya-go-api/internal/middleware"
	"github.com/widya-labs/widya-go-api/internal/models"
	"github.com/widya-labs/widya-go-api/internal/repository"
	"github.com/widya-labs/widya-go-api/internal/router"
	"github.com/widya-labs/widya-go-api/internal/service"
	cloud "github.com/widya-labs/widya-go-api/pkg/cloudinary"
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

	// Only the tables this service owns are migrated; roster, activity, and
	// engagement tables belong to their producing services.
	if err := db.AutoMigrate(&models.Assignment{}, &models.Submission{}, &models.Comment{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	activityRepo := repository.NewActivityInfoRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)

	assignmentService := service.NewAssignmentService(assignmentRepo, submissionRepo, rosterRepo, activityRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, rosterRepo, uploader, validate, logger)
	commentService := service.NewCommentService(commentRepo, submissionRepo, rosterRepo, validate, logger)
	rankingService := service.NewRankingService(assignmentRepo, submissionRepo, rosterRepo, engagementRepo, logger)
	analyticsService := service.NewAnalyticsService(assignmentRepo, submissionRepo, rosterRepo, activityRepo, engagementRepo, redisClient, cfg.AnalyticsCacheTTL, cfg.LeaderboardSize, logger)

	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	commentHandler := handler.NewCommentHandler(commentService, logger)
	rankingHandler := handler.NewRankingHandler(rankingService, cfg.DefaultWindowDays, logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, cfg.DefaultWindowDays, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AssignmentHandler: assignmentHandler,
		SubmissionHandler: submissionHandler,
		CommentHandler:    commentHandler,
		RankingHandler:    rankingHandler,
		AnalyticsHandler:  analyticsHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()
	rosterConsumer := startRosterConsumer(consumerCtx, cfg, assignmentService, logger)
	if rosterConsumer != nil {
		defer rosterConsumer.Stop()
	}

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// startRosterConsumer wires the enrollment backfill when a broker is
// configured. Deployments without NATS simply skip it.
func startRosterConsumer(ctx context.Context, cfg config.Config, assignments service.AssignmentService, logger zerolog.Logger) *service.RosterEventConsumer {
	if cfg.NATSURL == "" {
		logger.Info().Msg("nats url not configured, roster backfill disabled")
		return nil
	}

	conn, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to nats, roster backfill disabled")
		return nil
	}

	consumer, err := service.NewRosterEventConsumer(assignments, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build roster event consumer")
		conn.Close()
		return nil
	}

	if err := consumer.Start(ctx, conn); err != nil {
		logger.Error().Err(err).Msg("failed to start roster event consumer")
		conn.Close()
		return nil
	}

	return consumer
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
