package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/opaclabs/circulation-engine/internal/config"
	"github.com/opaclabs/circulation-engine/internal/notify"
	"github.com/opaclabs/circulation-engine/internal/repository"
	"github.com/opaclabs/circulation-engine/internal/service"
)

// Per-job lock TTL. Generous compared to job runtime so a crashed run
// cannot wedge the schedule for long.
const jobLockTTL = 10 * time.Minute

func main() {
	log.Println("Starting circulation scheduler...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	store := repository.NewStore(db)
	notifier := notify.NewRedisNotifier(redisClient)
	reservationService := service.NewReservationService(store, notifier, cfg)
	penaltyService := service.NewPenaltyService(store, cfg)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Schedule tasks
	setupCronJobs(c, cfg, redisClient, reservationService, penaltyService)

	// Start the scheduler
	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	<-c.Stop().Done()
	log.Println("Scheduler stopped")
}

func setupCronJobs(
	c *cron.Cron,
	cfg *config.Config,
	redisClient *redis.Client,
	reservationService *service.ReservationService,
	penaltyService *service.PenaltyService,
) {
	// Daily overdue penalty accrual
	_, err := c.AddFunc(cfg.Scheduler.AccrualSpec, func() {
		runExclusive(redisClient, "circulation:jobs:accrual", func(ctx context.Context) {
			log.Println("Running overdue penalty accrual job...")

			accrued, err := penaltyService.AccrueOverduePenalties(ctx)
			if err != nil {
				log.Printf("Error running penalty accrual: %v", err)
				return
			}

			log.Printf("Penalty accrual completed, %d penalties created", accrued)
		})
	})
	if err != nil {
		log.Printf("Error scheduling penalty accrual job: %v", err)
	}

	// Daily expired hold sweep
	_, err = c.AddFunc(cfg.Scheduler.ExpirySpec, func() {
		runExclusive(redisClient, "circulation:jobs:expiry", func(ctx context.Context) {
			log.Println("Running expired reservation sweep...")

			expired, err := reservationService.ExpireStaleReservations(ctx)
			if err != nil {
				log.Printf("Error running expiry sweep: %v", err)
				return
			}

			log.Printf("Expiry sweep completed, %d reservations expired", expired)
		})
	})
	if err != nil {
		log.Printf("Error scheduling expiry sweep job: %v", err)
	}

	log.Println("Cron jobs scheduled successfully")
}

// runExclusive makes a job single-flight across scheduler replicas using a
// redis lock. Losing the lock means another replica is already running this
// job, so skipping is the right outcome.
func runExclusive(redisClient *redis.Client, key string, job func(ctx context.Context)) {
	ctx := context.Background()

	acquired, err := redisClient.SetNX(ctx, key, time.Now().Format(time.RFC3339), jobLockTTL).Result()
	if err != nil {
		log.Printf("Error acquiring job lock %s: %v", key, err)
		return
	}

	if !acquired {
		log.Printf("Job lock %s already held, skipping run", key)
		return
	}

	defer func() {
		if err := redisClient.Del(ctx, key).Err(); err != nil {
			log.Printf("Error releasing job lock %s: %v", key, err)
		}
	}()

	job(ctx)
}
