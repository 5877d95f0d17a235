package router // router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/novastay/booking-settlement/internal/handler"    // host handlers
    "github.com/novastay/booking-settlement/internal/middleware" // JWT + role middlewares
)

// RegisterHost registers HOST-scoped endpoints under /v1/host.
// All routes require a valid JWT and HOST role.
func RegisterHost(e *echo.Echo, listings *handler.HostListingHandler, bookings *handler.HostBookingHandler, withdrawals *handler.HostWithdrawalHandler, jwtSecret string) {
    // Attach middlewares at group construction time for clarity.
    g := e.Group(
        "/v1/host",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("HOST"),
    )

    // ---- Listings ----
    g.POST("/listings", listings.CreateListing)
    g.GET("/listings", listings.ListMyListings)
    g.PATCH("/listings/:id", listings.UpdateListing)
    g.DELETE("/listings/:id", listings.ArchiveListing) // soft archive

    // ---- Co-ownership ----
    g.POST("/listings/:id/owners", listings.AddCoOwner)
    g.GET("/listings/:id/owners", listings.ListOwners)

    // ---- Blocked ranges ----
    g.POST("/listings/:id/blocks", listings.AddBlock)
    g.DELETE("/blocks/:id", listings.RemoveBlock)

    // ---- Booking lifecycle ----
    g.GET("/bookings", bookings.ListBookings)
    g.POST("/bookings/:id/approve", bookings.Approve)
    g.POST("/bookings/:id/reject", bookings.Reject)
    g.POST("/bookings/:id/checkin", bookings.Checkin)
    g.POST("/bookings/:id/checkout", bookings.Checkout)

    // ---- Settlement ----
    g.GET("/balance", withdrawals.GetBalance)
    g.GET("/ledger", withdrawals.ListLedger)
    g.POST("/withdrawals", withdrawals.RequestWithdrawal)
    g.GET("/withdrawals", withdrawals.ListWithdrawals)
}
