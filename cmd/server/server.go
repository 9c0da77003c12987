package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"crewlink-server/services/messaging-api/internal/config"
	"crewlink-server/services/messaging-api/internal/domain/chat"
	"crewlink-server/services/messaging-api/internal/infrastructure/auth"
	"crewlink-server/services/messaging-api/internal/infrastructure/database"
	"crewlink-server/services/messaging-api/internal/infrastructure/logger"
	"crewlink-server/services/messaging-api/internal/infrastructure/mediaresolver"
	"crewlink-server/services/messaging-api/internal/infrastructure/observability"
	chatrepo "crewlink-server/services/messaging-api/internal/infrastructure/repository/chat"
	userrepo "crewlink-server/services/messaging-api/internal/infrastructure/repository/user"
	"crewlink-server/services/messaging-api/internal/interfaces/httpserver"
	"crewlink-server/services/messaging-api/internal/realtime"
)

// Application bundles the long-running pieces of the messaging service.
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	verifier := auth.NewVerifier(cfg)
	userRepository := userrepo.NewRepository(db)
	conversationRepository := chatrepo.NewConversationRepository(db)
	messageRepository := chatrepo.NewMessageRepository(db)

	hub := realtime.NewHub(log)
	media := mediaresolver.New(cfg)

	directory := chat.NewDirectory(conversationRepository, userRepository)
	ledger := chat.NewLedger(messageRepository, conversationRepository)
	chatService := chat.NewService(directory, ledger, conversationRepository, userRepository, hub, media)

	httpServer := httpserver.New(cfg, log, db, chatService, userRepository, verifier, hub)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
