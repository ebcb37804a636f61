package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"betpal/api"
	"betpal/config"
	"betpal/database"
	"betpal/events"
	"betpal/repository"
	"betpal/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting betpal...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// The notification writer persists queued notification records after each
	// engine transaction commits. It uses a pool-backed repository of its own
	// so a failed write can never touch engine state.
	service.RegisterNotificationWriter(eventBus, repository.NewNotificationRepository(db))

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Println("Initializing services...")
	userService := service.NewUserService(uowFactory, cfg.StartingBalance)
	betService := service.NewBetService(uowFactory, cfg.EnforceImpartialJudge)
	friendService := service.NewFriendService(uowFactory)
	notificationService := service.NewNotificationService(uowFactory)
	log.Println("Services initialized successfully")

	// Initialize HTTP server
	handler := api.NewHandler(userService, betService, friendService, notificationService)
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewRouter(handler),
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s in %s mode...", cfg.HTTPAddr, cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for context cancellation or a server failure
	select {
	case err := <-serverErr:
		db.Close()
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}
