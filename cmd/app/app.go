package app

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eventgate/backend/internal/api"
	"github.com/eventgate/backend/internal/config"
	"github.com/eventgate/backend/internal/db"
	"github.com/eventgate/backend/internal/logger"
	"github.com/eventgate/backend/internal/queue"
)

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	redisClient := db.OpenRedis(conf.Redis)
	if redisClient == nil {
		zap.L().Warn("redis unavailable, login rate limiting and password reset are disabled")
	}

	var publisher *queue.Publisher
	if conf.AMQP.URL != "" {
		publisher, err = queue.NewPublisher(conf.AMQP.URL, conf.AMQP.Exchange)
		if err != nil {
			// Check-in events are best effort, the API works without a broker.
			zap.L().Warn("amqp unavailable, check-in events will not be published", zap.Error(err))
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	s := api.NewServer(conf, postgresDB, redisClient, publisher)

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}
