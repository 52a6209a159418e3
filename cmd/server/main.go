package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/opaclabs/circulation-engine/internal/config"
	"github.com/opaclabs/circulation-engine/internal/handler"
	"github.com/opaclabs/circulation-engine/internal/notify"
	"github.com/opaclabs/circulation-engine/internal/repository"
	"github.com/opaclabs/circulation-engine/internal/service"
	"github.com/opaclabs/circulation-engine/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize store and services
	store := repository.NewStore(db)
	notifier := notify.NewRedisNotifier(redisClient)

	reservationService := service.NewReservationService(store, notifier, cfg)
	circulationService := service.NewCirculationService(store, notifier, cfg)
	penaltyService := service.NewPenaltyService(store, cfg)

	reservationHandler := handler.NewReservationHandler(reservationService)
	circulationHandler := handler.NewCirculationHandler(circulationService)
	penaltyHandler := handler.NewPenaltyHandler(penaltyService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout())

	// Setup routes
	router := setupRoutes(reservationHandler, circulationHandler, penaltyHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	reservationHandler *handler.ReservationHandler,
	circulationHandler *handler.CirculationHandler,
	penaltyHandler *handler.PenaltyHandler,
	healthHandler *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/reservations", reservationHandler.CreateReservation).Methods("POST")
	api.HandleFunc("/reservations/{reservationId}", reservationHandler.CancelReservation).Methods("DELETE")
	api.HandleFunc("/borrowers/{borrowerId}/reservations", reservationHandler.ListReservations).Methods("GET")

	api.HandleFunc("/loans", circulationHandler.IssueCopy).Methods("POST")
	api.HandleFunc("/copies/{copyId}/return", circulationHandler.ReturnCopy).Methods("POST")
	api.HandleFunc("/borrowers/{borrowerId}/loans", circulationHandler.ListLoans).Methods("GET")
	api.HandleFunc("/availability", circulationHandler.Availability).Methods("GET")

	api.HandleFunc("/borrowers/{borrowerId}/penalties", penaltyHandler.ListPenalties).Methods("GET")
	api.HandleFunc("/penalties/{penaltyId}", penaltyHandler.GetPenalty).Methods("GET")
	api.HandleFunc("/penalties/{penaltyId}/pay", penaltyHandler.PayPenalty).Methods("POST")

	return router
}
