package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recruit-service/internal/adapters/kafka"
	"recruit-service/internal/api/routes"
	"recruit-service/internal/config"
	"recruit-service/internal/database"
	"recruit-service/internal/realtime"
	"recruit-service/internal/repository"
	"recruit-service/internal/service"
)

func main() {
	cfg := config.Load()

	slog.Info("Starting recruit real-time server")

	db, err := database.NewMySQLConnection(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := database.NewRedisConnection(&cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Real-time core: registry + groups, hub as transport, dispatcher and
	// chat router on top.
	registry := realtime.NewConnectionRegistry()
	groups := realtime.NewGroupRouter()
	tracker := realtime.NewPresenceTracker(registry)
	presenceMirror := repository.NewPresenceRepository(redisClient)

	hub := realtime.NewHub(registry, groups, presenceMirror)
	dispatcher := realtime.NewNotificationDispatcher(registry, groups, hub)
	chatRouter := realtime.NewChatRouter(
		repository.NewConversationRepository(db),
		repository.NewMessageRepository(db),
		dispatcher,
	)
	hub.AttachChatRouter(chatRouter)
	go hub.Run()

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	var consumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		notificationService := service.NewNotificationService(
			repository.NewNotificationRepository(db),
			dispatcher,
		)
		consumer = kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, notificationService)
		go consumer.Run(consumerCtx)
	}

	router := routes.NewRouter(hub, chatRouter, tracker, dispatcher, db, redisClient, cfg.JWT.Secret)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stopConsumer()
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			slog.Error("Failed to close kafka consumer", "error", err)
		}
	}
	hub.Stop()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server stopped")
}
