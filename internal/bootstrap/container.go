package bootstrap

import (
	"context"
	"time"

	"ai-knowledge-router-be/internal/config"
	"ai-knowledge-router-be/internal/controller"
	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/internal/repository/unitofwork"
	"ai-knowledge-router-be/internal/service"
	"ai-knowledge-router-be/pkg/rag/history"
	pktNats "ai-knowledge-router-be/pkg/nats"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AskController controller.IAskController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	routingLogger := logger.NewIsolatedLogger(cfg.App.RoutingLogFilePath)
	c := &Container{Logger: sysLogger}

	// 2. Infrastructure
	rdb := connectRedis(cfg.App.RedisURL, sysLogger)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	var publisher service.EventPublisher = pktNats.NopPublisher{}
	var subscriber service.Subscriber
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "NATS publisher unavailable, turn events disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			publisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}

		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "NATS subscriber unavailable, routing audit disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			subscriber = natsSub
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	// 3. Pipeline
	pipeline, err := BuildPipeline(cfg, PipelineDeps{
		UowFactory: uowFactory,
		Redis:      rdb,
		Logger:     sysLogger,
	})
	if err != nil {
		return nil, err
	}

	// 4. Services
	askService := service.NewAskService(
		uowFactory,
		pipeline,
		history.NewLoader(uowFactory, cfg.Routing.HistoryWindow),
		publisher,
		cfg.Routing.CuratedModeDefault,
		sysLogger,
	)
	c.ConsumerService = service.NewConsumerService(subscriber, routingLogger)

	// 5. Controllers
	c.AskController = controller.NewAskController(askService)

	return c, nil
}

// Close releases the broker and cache connections
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

// connectRedis returns nil when no URL is configured or the server does not answer
func connectRedis(url string, log logger.ILogger) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{
			"error": err.Error(),
		})
		opt = &redis.Options{Addr: url}
	}

	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("BOOTSTRAP", "Redis unreachable, web result cache disabled", map[string]interface{}{
			"error": err.Error(),
		})
		_ = rdb.Close()
		return nil
	}
	return rdb
}
