package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ai-knowledge-router-be/internal/bootstrap"
	"ai-knowledge-router-be/internal/config"
	"ai-knowledge-router-be/internal/server"
	"ai-knowledge-router-be/internal/tracer"
	"ai-knowledge-router-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		log.Panicf("Unable to bootstrap container: %v", err)
	}
	defer container.Close()

	// 4. Start Background Services
	if err := container.ConsumerService.Consume(context.Background()); err != nil {
		container.Logger.Warn("MAIN", "Routing audit consumer not started", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		container.Logger.Info("MAIN", "Shutting down", nil)
		_ = srv.Shutdown()
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		container.Logger.Error("MAIN", "Server stopped", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
