package main

import (
    "log"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/coach-court-booking/internal/config"
    "github.com/iliyamo/coach-court-booking/internal/database"
    "github.com/iliyamo/coach-court-booking/internal/handler"
    "github.com/iliyamo/coach-court-booking/internal/queue"
    "github.com/iliyamo/coach-court-booking/internal/repository"
    "github.com/iliyamo/coach-court-booking/internal/router"
    "github.com/iliyamo/coach-court-booking/internal/service"
    "github.com/iliyamo/coach-court-booking/internal/storage"
)

func main() {
    _ = godotenv.Load() // .env is optional; real env wins
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    store := repository.NewSQLStore(db)
    slotRepo := repository.NewSlotRepo(db)
    bookingRepo := repository.NewBookingRepo(db)
    packageRepo := repository.NewPackageRepo(db)
    planRepo := repository.NewPricingPlanRepo(db)
    coachRepo := repository.NewCoachRepo(db)

    proofs, err := storage.NewDiskProofStore(cfg.ProofDir)
    if err != nil {
        log.Fatalf("storage: %v", err)
    }

    events := &queue.Publisher{URL: cfg.AMQPURL}
    holds := service.NewReservationManager(store, time.Duration(cfg.HoldTTLMin)*time.Minute)
    checkout := service.NewCheckoutService(store, events)
    lifecycle := service.NewBookingLifecycle(store, events)

    sweeper := service.NewSweeper(store, time.Duration(cfg.SweepIntervalMin)*time.Minute)
    sweeper.Start()
    defer sweeper.Stop()

    go func() {
        if err := queue.StartNotificationConsumer(); err != nil {
            log.Printf("notification-consumer: %v", err)
        }
    }()

    e := echo.New()
    e.HideBanner = true
    router.RegisterRoutes(e, router.Handlers{
        Health:       handler.NewHealthHandler(db),
        Slots:        handler.NewSlotHandler(slotRepo, coachRepo),
        Reservations: handler.NewReservationHandler(holds),
        Bookings:     handler.NewBookingHandler(checkout, lifecycle, bookingRepo, coachRepo),
        Packages:     handler.NewPackageHandler(packageRepo, planRepo, coachRepo),
        Plans:        handler.NewPricingPlanHandler(planRepo, coachRepo),
        Proofs:       handler.NewProofHandler(proofs),
    }, cfg.JWTSecret, config.NewRedisClient())

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
