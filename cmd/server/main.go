package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/lwittmann/schulungen/internal/config"
	"github.com/lwittmann/schulungen/internal/database"
	"github.com/lwittmann/schulungen/internal/handler"
	"github.com/lwittmann/schulungen/internal/middleware"
	"github.com/lwittmann/schulungen/internal/queue"
	"github.com/lwittmann/schulungen/internal/repository"
	"github.com/lwittmann/schulungen/internal/router"
	"github.com/lwittmann/schulungen/internal/service"
)

func main() {
	// Load .env if present; in production the variables come from the
	// environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories.
	customers := repository.NewCustomerRepo(db)
	tokens := repository.NewTokenRepo(db)
	templates := repository.NewTemplateRepo(db)
	executions := repository.NewExecutionRepo(db)
	appointments := repository.NewAppointmentRepo(db)
	bookings := repository.NewBookingRepo(db)
	events := repository.NewEventLogRepo(db)

	// Booking core: the ledger runs every transition in one transaction
	// via the store, appends audit records and publishes notification
	// events to RabbitMQ after commit.
	store := repository.NewLedgerStore(db)
	notifier := service.NewQueueNotifier()
	ledger := service.NewLedger(store, events, notifier, nil)
	scheduler := service.NewScheduler(db, templates, executions, appointments, events)
	stats := service.NewStatsService(templates, executions, bookings)

	// The notification consumer renders queued events into
	// logs/notifications.log.  It reconnects on its own; a missing
	// broker only disables notifications.
	go func() {
		if err := queue.StartNotifyConsumer(); err != nil {
			log.Printf("notify consumer: %v", err)
		}
	}()

	// Handlers.
	authH := handler.NewAuthHandler(cfg, customers, tokens)
	templateH := handler.NewTemplateHandler(templates)
	executionH := handler.NewExecutionHandler(scheduler, executions, appointments, templates, bookings)
	bookingH := handler.NewBookingHandler(ledger, bookings)
	statsH := handler.NewStatsHandler(stats, events)

	// Redis backs the response cache and the booking rate limiter.  A
	// nil client disables both; the API itself keeps working.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}
	var cache, limiter echo.MiddlewareFunc
	if rdb != nil {
		cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
		limiter = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, templateH, executionH, statsH, cache)
	router.RegisterStaff(e, templateH, executionH, bookingH, statsH, cfg.JWTSecret)
	router.RegisterCustomer(e, bookingH, cfg.JWTSecret, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
