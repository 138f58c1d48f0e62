package main // Entry point package

import (
	"context"
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/bus-seat-reservation/internal/config"
	"github.com/iliyamo/bus-seat-reservation/internal/database"
	"github.com/iliyamo/bus-seat-reservation/internal/handler"
	"github.com/iliyamo/bus-seat-reservation/internal/inventory"
	"github.com/iliyamo/bus-seat-reservation/internal/lock"
	"github.com/iliyamo/bus-seat-reservation/internal/middleware"
	"github.com/iliyamo/bus-seat-reservation/internal/notify"
	"github.com/iliyamo/bus-seat-reservation/internal/queue"
	"github.com/iliyamo/bus-seat-reservation/internal/repository"
	"github.com/iliyamo/bus-seat-reservation/internal/router"
	queue_publisher "github.com/iliyamo/bus-seat-reservation/internal/service"
	"github.com/iliyamo/bus-seat-reservation/internal/settlement"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the rate limiter, the response cache and the PIN guard.
	// A nil client disables all three; the core booking flow keeps working.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: rate limiting, caching and pin lockout disabled")
	}

	// Repositories over MySQL.
	tripRepo := repository.NewTripRepo(db)
	walletRepo := repository.NewWalletRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	store := repository.NewSettlementStore(db, walletRepo, bookingRepo)

	// The notifier fans seat events out to SSE subscribers; the coordinator
	// is the authoritative lock table feeding it.
	notifier := notify.New(32)
	coordinator := lock.New(cfg.SeatLockTTL, bookingRepo, notifier)
	coordinator.StartJanitor(context.Background())

	inv := inventory.New(tripRepo, bookingRepo)

	guard := settlement.NewPinGuard(rdb, cfg.PinMaxFails, cfg.PinLockout)
	settle := settlement.New(tripRepo, walletRepo, store, coordinator, guard,
		queue_publisher.PublishBookingConfirmed)

	// Background consumer writing the booking audit log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking-consumer: stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance

	// The per-session limiter is mounted inside the /v1 group, after
	// SessionAuth: the session id must already be in context when the rate
	// key is built.  Session minting gets its own IP-keyed bucket since no
	// session exists there yet.
	rlCfg := config.LoadRateLimitConfig()
	limited := middleware.NewTokenBucket(rlCfg, rdb)
	ipCfg := rlCfg
	ipCfg.KeyStrategy = "ip"
	sessionLimited := middleware.NewTokenBucket(ipCfg, rdb)
	cached := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterSessions(e, handler.NewSessionHandler(cfg.SessionSecret, cfg.SessionTTLMin), sessionLimited)
	router.RegisterTrips(e,
		handler.NewTripHandler(tripRepo, inv, coordinator),
		handler.NewLockHandler(inv, coordinator),
		handler.NewBookingHandler(settle, bookingRepo),
		handler.NewStreamHandler(notifier),
		handler.NewWalletHandler(walletRepo),
		cfg.SessionSecret,
		limited,
		cached,
	)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
