package main // Entry point package

import (
    "context"
    "log"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/novastay/booking-settlement/internal/config"
    "github.com/novastay/booking-settlement/internal/database"
    "github.com/novastay/booking-settlement/internal/handler"
    "github.com/novastay/booking-settlement/internal/lifecycle"
    appmw "github.com/novastay/booking-settlement/internal/middleware"
    "github.com/novastay/booking-settlement/internal/queue"
    "github.com/novastay/booking-settlement/internal/repository"
    "github.com/novastay/booking-settlement/internal/router"
    "github.com/novastay/booking-settlement/internal/sweep"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Redis backs rate limiting and the public-route response cache.
    // A nil client disables both instead of failing startup.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Println("redis unavailable; rate limiting and response cache disabled")
    }

    // Repositories.
    userRepo := repository.NewUserRepo(db)
    tokenRepo := repository.NewTokenRepo(db)
    listingRepo := repository.NewListingRepo(db)
    reservationRepo := repository.NewReservationRepo(db)
    blockedRepo := repository.NewBlockedRangeRepo(db)
    transitionRepo := repository.NewTransitionRepo(db)
    commissionRepo := repository.NewCommissionRuleRepo(db)
    withdrawalRepo := repository.NewWithdrawalRepo(db)
    ledgerRepo := repository.NewLedgerRepo(db)

    // The lifecycle service is shared by the HTTP handlers, the
    // background sweeps and the payment-event consumer.
    lifecycleSvc := lifecycle.New(db, reservationRepo, transitionRepo, ledgerRepo)

    // Handlers.
    authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
    publicHandler := handler.NewPublicHandler(listingRepo, reservationRepo, blockedRepo, commissionRepo)
    guestHandler := handler.NewGuestHandler(listingRepo, reservationRepo, blockedRepo, commissionRepo, transitionRepo, lifecycleSvc)
    hostListingHandler := handler.NewHostListingHandler(listingRepo, blockedRepo, reservationRepo)
    hostBookingHandler := handler.NewHostBookingHandler(listingRepo, reservationRepo, lifecycleSvc)
    hostWithdrawalHandler := handler.NewHostWithdrawalHandler(userRepo, reservationRepo, withdrawalRepo, ledgerRepo)
    adminWithdrawalHandler := handler.NewAdminWithdrawalHandler(withdrawalRepo)
    adminCommissionHandler := handler.NewAdminCommissionHandler(commissionRepo, transitionRepo)

    e := echo.New()
    e.HideBanner = true

    // Token-bucket rate limit on everything under /v1.
    e.Use(appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

    cacheMW := appmw.NewRedisCache(config.LoadCacheConfig(), rdb)

    router.RegisterRoutes(e)
    router.RegisterAuth(e, authHandler, cfg.JWTSecret)
    router.RegisterPublic(e, publicHandler, cacheMW)
    router.RegisterGuest(e, guestHandler, cfg.JWTSecret)
    router.RegisterBookingRead(e, guestHandler, cfg.JWTSecret)
    router.RegisterHost(e, hostListingHandler, hostBookingHandler, hostWithdrawalHandler, cfg.JWTSecret)
    router.RegisterAdmin(e, adminWithdrawalHandler, adminCommissionHandler, cfg.JWTSecret)

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    // Background sweeps: payment-timeout refusal, auto checkout and
    // expired blocked-range cleanup.
    interval := time.Duration(cfg.SweepIntervalSec) * time.Second
    timeout := time.Duration(cfg.PaymentTimeoutMin) * time.Minute
    go sweep.StartPaymentTimeout(ctx, lifecycleSvc, reservationRepo, timeout, interval)
    go sweep.StartAutoCheckout(ctx, lifecycleSvc, reservationRepo, interval)
    go sweep.StartBlockCleanup(ctx, blockedRepo, time.Hour)

    // Broker consumers: payment events feed the state machine,
    // reservation/withdrawal events feed the notification log.  Both
    // run their own reconnect loops.
    go func() {
        if err := queue.StartPaymentConsumer(func(ev queue.PaymentEvent) error {
            return lifecycleSvc.ApplyPayment(ctx, ev)
        }); err != nil {
            log.Printf("payment-consumer: %v", err)
        }
    }()
    go func() {
        if err := queue.StartNotificationConsumer(); err != nil {
            log.Printf("notification-consumer: %v", err)
        }
    }()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
