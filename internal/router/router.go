// Package router wires the HTTP surface: public browsing, guest-capable
// hold endpoints and the authenticated student/coach/academy groups.
package router

import (
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/coach-court-booking/internal/config"
    "github.com/iliyamo/coach-court-booking/internal/handler"
    "github.com/iliyamo/coach-court-booking/internal/middleware"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
    Health       *handler.HealthHandler
    Slots        *handler.SlotHandler
    Reservations *handler.ReservationHandler
    Bookings     *handler.BookingHandler
    Packages     *handler.PackageHandler
    Plans        *handler.PricingPlanHandler
    Proofs       *handler.ProofHandler
}

// RegisterRoutes attaches all routes and middleware to the Echo
// instance.  rdb may be nil, in which case rate limiting and response
// caching degrade to no-ops.
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client) {
    e.Use(echomw.Recover())
    e.Use(echomw.Logger())
    e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    cached := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

    e.GET("/healthz", h.Health.Check)

    v1 := e.Group("/v1")
    v1.GET("/coaches/:id/slots", h.Slots.ListOpen, cached)

    // Holds accept guests; everything past the hold requires identity.
    guest := v1.Group("", middleware.OptionalJWTAuth(jwtSecret))
    guest.POST("/reserve-slots", h.Reservations.Hold)
    guest.DELETE("/reserve-slots", h.Reservations.Release)

    auth := v1.Group("", middleware.JWTAuth(jwtSecret))
    auth.POST("/proofs", h.Proofs.Upload)
    auth.POST("/bookings/:id/cancel", h.Bookings.Cancel, middleware.RequireRole("STUDENT", "COACH"))

    student := auth.Group("", middleware.RequireRole("STUDENT"))
    student.POST("/bookings/create", h.Bookings.Create)
    student.GET("/my-bookings", h.Bookings.ListMine)
    student.POST("/packages/purchase", h.Packages.Purchase)
    student.GET("/my-packages", h.Packages.ListMine)

    coach := auth.Group("", middleware.RequireRole("COACH"))
    coach.POST("/slots", h.Slots.Create)
    coach.POST("/slots/bulk", h.Slots.CreateBulk)
    coach.DELETE("/slots/:id", h.Slots.Delete)
    coach.GET("/coach/bookings", h.Bookings.ListForCoach)
    coach.POST("/bookings/:id/complete", h.Bookings.Complete)

    owner := auth.Group("", middleware.RequireRole("COACH", "ACADEMY"))
    owner.POST("/packages/:id/approve", h.Packages.Approve)
    owner.POST("/packages/:id/reject", h.Packages.Reject)
    owner.POST("/pricing-plans", h.Plans.Create)
    owner.GET("/pricing-plans", h.Plans.List)
    owner.DELETE("/pricing-plans/:id", h.Plans.Deactivate)
}
