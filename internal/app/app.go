package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsio "github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	emailadapter "github.com/fixedgearperm/market-bot/internal/adapter/email"
	mongoadapter "github.com/fixedgearperm/market-bot/internal/adapter/mongo"
	natsadapter "github.com/fixedgearperm/market-bot/internal/adapter/nats"
	redisadapter "github.com/fixedgearperm/market-bot/internal/adapter/redis"
	"github.com/fixedgearperm/market-bot/internal/adapter/storage/s3"
	"github.com/fixedgearperm/market-bot/internal/app/config"
	"github.com/fixedgearperm/market-bot/internal/platform/logger"
	"github.com/fixedgearperm/market-bot/internal/platform/tracer"
	"github.com/fixedgearperm/market-bot/internal/port/telegram"
	"github.com/fixedgearperm/market-bot/internal/service"
)

type App struct {
	cfg            *config.Config
	log            logger.Logger
	bot            *telegram.Bot
	mongoClient    *mongo.Client
	redisClient    *redis.Client
	natsConn       *natsio.Conn
	tracerProvider *sdktrace.TracerProvider
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	logCfg := logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	}
	appLogger, err := logger.NewZapLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Info("Logger initialized")
	appLogger.Infof("Configuration loaded: Env=%s", cfg.Env)

	var tracerProvider *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tracerProvider, err = tracer.Init(ctx, cfg.Tracing.OTLPEndpoint)
		if err != nil {
			appLogger.Errorf("Failed to initialize tracer: %v", err)
			return nil, fmt.Errorf("failed to initialize tracer: %w", err)
		}
		appLogger.Info("Tracer initialized")
	}

	appLogger.Info("Initializing MongoDB client...")
	mongoClient, err := mongoadapter.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		appLogger.Errorf("Failed to initialize MongoDB client: %v", err)
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}
	appLogger.Info("MongoDB client initialized successfully")

	appLogger.Info("Initializing Redis client...")
	redisClient, err := redisadapter.NewClient(ctx, cfg.Redis)
	if err != nil {
		appLogger.Errorf("Failed to initialize Redis client: %v", err)
		return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
	}
	appLogger.Info("Redis client initialized successfully")

	appLogger.Info("Connecting to NATS...")
	natsConn, err := natsadapter.NewConnection(cfg.NATS)
	if err != nil {
		appLogger.Errorf("Failed to connect to NATS: %v", err)
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	msgPublisher, err := natsadapter.NewNATSPublisher(natsConn)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}
	appLogger.Info("NATS publisher initialized")

	draftRepo := mongoadapter.NewDraftRepository(mongoClient, cfg.MongoDB)
	moderationRepo := mongoadapter.NewModerationRepository(mongoClient, cfg.MongoDB)
	publishedRepo, err := mongoadapter.NewPublishedRepository(ctx, mongoClient, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize published listing repository: %w", err)
	}
	listingCache := redisadapter.NewListingCache(redisClient)
	appLogger.Info("Repositories initialized")

	var notifier service.SubmissionNotifier
	if cfg.SMTP.Host != "" && len(cfg.SMTP.ModeratorEmails) > 0 {
		sender, err := emailadapter.NewSMTPSender(cfg.SMTP, appLogger)
		if err != nil {
			appLogger.Errorf("Failed to initialize SMTP sender: %v", err)
			return nil, fmt.Errorf("failed to initialize SMTP sender: %w", err)
		}
		notifier = emailadapter.NewModerationNotifier(sender, cfg.SMTP)
		appLogger.Info("Moderator email notifier initialized")
	} else {
		appLogger.Info("SMTP not configured, moderator email notifications disabled")
	}

	var archive telegram.PhotoArchiver
	if cfg.MinIO.Endpoint != "" {
		photoArchive, err := s3.NewPhotoArchive(cfg.MinIO, appLogger)
		if err != nil {
			appLogger.Warnf("Photo archive unavailable, continuing without it: %v", err)
		} else {
			archive = photoArchive
			appLogger.Info("Photo archive initialized")
		}
	}

	lifecycle := service.NewLifecycleService(
		draftRepo,
		moderationRepo,
		publishedRepo,
		listingCache,
		cfg.ListingCache.TTL,
		msgPublisher,
		notifier,
		appLogger,
	)
	appLogger.Info("LifecycleService initialized")

	bot, err := telegram.NewBot(cfg.Telegram, lifecycle, archive, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
	}
	appLogger.Info("Telegram bot instance created")

	return &App{
		cfg:            cfg,
		log:            appLogger,
		bot:            bot,
		mongoClient:    mongoClient,
		redisClient:    redisClient,
		natsConn:       natsConn,
		tracerProvider: tracerProvider,
	}, nil
}

func (a *App) Run() {
	a.log.Info("Starting application components...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	botDone := make(chan error, 1)
	go func() {
		botDone <- a.bot.Run(ctx)
	}()
	a.log.Info("Telegram bot started in a goroutine")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case receivedSignal := <-quit:
		a.log.Infof("Received shutdown signal: %v. Shutting down application...", receivedSignal)
		cancel()
		if err := <-botDone; err != nil {
			a.log.Errorf("Telegram bot stopped with error: %v", err)
		}
	case err := <-botDone:
		if err != nil {
			a.log.Errorf("Telegram bot stopped unexpectedly: %v", err)
		} else {
			a.log.Info("Telegram bot stopped")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	a.log.Info("Closing connections...")

	if a.natsConn != nil {
		a.natsConn.Close()
		a.log.Info("NATS connection closed")
	}

	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(shutdownCtx); err != nil {
			a.log.Errorf("Error disconnecting from MongoDB: %v", err)
		} else {
			a.log.Info("MongoDB connection closed successfully")
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Errorf("Error closing Redis client: %v", err)
		} else {
			a.log.Info("Redis client closed successfully")
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(shutdownCtx); err != nil {
			a.log.Errorf("Error shutting down tracer provider: %v", err)
		}
	}

	a.log.Info("Application shut down successfully")
}
