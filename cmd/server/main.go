package main

// @title           SecuRent Notification Service API
// @version         1.0
// @description     Real-time notification fan-out for the SecuRent rental marketplace.
// @host            localhost:8080
// @BasePath        /api/v1
// @schemes         http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/omerg864/SecuRent-sub001/docs"
	"github.com/omerg864/SecuRent-sub001/internal/adapters/kafka"
	"github.com/omerg864/SecuRent-sub001/internal/adapters/storage"
	"github.com/omerg864/SecuRent-sub001/internal/api/routes"
	"github.com/omerg864/SecuRent-sub001/internal/auth"
	"github.com/omerg864/SecuRent-sub001/internal/config"
	"github.com/omerg864/SecuRent-sub001/internal/database"
	mongorepo "github.com/omerg864/SecuRent-sub001/internal/repositories/mongo"
	"github.com/omerg864/SecuRent-sub001/internal/services"
	"github.com/omerg864/SecuRent-sub001/internal/ws"
)

func main() {
	// .env is optional outside local development
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	slog.Info("Starting notification server")

	// Initialize MongoDB connection
	mongoDB, err := database.NewMongoConnection(cfg.Mongo)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Redis connection
	redisClient, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	redisService := services.NewRedisService(redisClient)

	// Principal stores backing handshake verification
	customerRepo := mongorepo.NewCustomerRepository(mongoDB.DB)
	businessRepo := mongorepo.NewBusinessRepository(mongoDB.DB)
	adminRepo := mongorepo.NewAdminRepository(mongoDB.DB)

	tokenService := auth.NewTokenService(auth.Secrets{
		Customer: cfg.JWT.CustomerSecret,
		Business: cfg.JWT.BusinessSecret,
		Admin:    cfg.JWT.AdminSecret,
	}, customerRepo, businessRepo, adminRepo)

	// Initialize the notification hub
	hub := ws.NewHub(tokenService, redisService, ws.Options{
		HandshakeTimeout: cfg.Hub.HandshakeTimeout,
		AuthTimeout:      cfg.Hub.AuthTimeout,
		SendBuffer:       cfg.Hub.SendBuffer,
	})
	go hub.Run()

	// Optional audit event stream
	var audit services.AuditSink
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.InitKafkaProducer(cfg.Kafka.Brokers)
		if err != nil {
			slog.Error("Failed to connect to Kafka, audit events disabled", "error", err)
		} else {
			publisher := kafka.NewAuditPublisher(producer, cfg.Kafka.Topic)
			defer publisher.Close()
			audit = publisher
		}
	}

	// Optional attachment storage
	var uploader services.Uploader
	if cfg.Minio.Endpoint != "" {
		minioClient, err := storage.NewMinIOClient(cfg.Minio)
		if err != nil {
			slog.Error("Failed to connect to MinIO, attachments disabled", "error", err)
		} else {
			uploader = minioClient
		}
	}

	notificationService := services.NewNotificationService(hub, uploader, audit)

	// Initialize router with all dependencies
	router := routes.NewRouter(hub, notificationService, tokenService, redisService)
	router.SetupRoutes()

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop the notification hub
	hub.Stop()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	if err := mongoDB.Close(ctx); err != nil {
		slog.Error("Error closing MongoDB connection", "error", err)
	}

	slog.Info("Server stopped")
}
