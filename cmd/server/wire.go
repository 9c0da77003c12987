//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"crewlink-server/services/messaging-api/internal/config"
	"crewlink-server/services/messaging-api/internal/domain/chat"
	userDomain "crewlink-server/services/messaging-api/internal/domain/user"
	"crewlink-server/services/messaging-api/internal/infrastructure/auth"
	"crewlink-server/services/messaging-api/internal/infrastructure/database"
	"crewlink-server/services/messaging-api/internal/infrastructure/logger"
	"crewlink-server/services/messaging-api/internal/infrastructure/mediaresolver"
	chatrepo "crewlink-server/services/messaging-api/internal/infrastructure/repository/chat"
	userrepo "crewlink-server/services/messaging-api/internal/infrastructure/repository/user"
	"crewlink-server/services/messaging-api/internal/interfaces/httpserver"
	"crewlink-server/services/messaging-api/internal/realtime"
)

var messagingSet = wire.NewSet(
	userrepo.NewRepository,
	wire.Bind(new(userDomain.Repository), new(*userrepo.Repository)),
	chatrepo.NewConversationRepository,
	wire.Bind(new(chat.ConversationRepository), new(*chatrepo.ConversationRepository)),
	chatrepo.NewMessageRepository,
	wire.Bind(new(chat.MessageRepository), new(*chatrepo.MessageRepository)),
	mediaresolver.New,
	wire.Bind(new(chat.MediaResolver), new(*mediaresolver.Resolver)),
	realtime.NewHub,
	wire.Bind(new(chat.Publisher), new(*realtime.Hub)),
	chat.NewDirectory,
	chat.NewLedger,
	chat.NewService,
)

// BuildApplication demonstrates how to assemble the messaging service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		auth.NewVerifier,
		messagingSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}
