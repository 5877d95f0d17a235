package router

import (
    "github.com/labstack/echo/v4"

    "github.com/novastay/booking-settlement/internal/handler"
    "github.com/novastay/booking-settlement/internal/middleware"
)

// RegisterGuest registers the guest-side booking endpoints under
// /v1.  Any authenticated user may book: hosts and admins stay in
// guest role when they travel themselves.  Callers can request
// bookings, cancel their own WAITING bookings and view their
// reservation history.
func RegisterGuest(e *echo.Echo, h *handler.GuestHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("GUEST", "HOST", "ADMIN"),
    )
    g.POST("/listings/:id/bookings", h.RequestBooking)
    g.DELETE("/bookings/:id", h.CancelBooking)
    g.GET("/my-bookings", h.ListMyBookings)
}

// RegisterBookingRead registers the booking detail endpoint shared
// by guests and hosts; the handler enforces that the caller is the
// reservation's guest or its receivable host.
func RegisterBookingRead(e *echo.Echo, h *handler.GuestHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("GUEST", "HOST", "ADMIN"),
    )
    g.GET("/bookings/:id", h.GetBooking)
}
