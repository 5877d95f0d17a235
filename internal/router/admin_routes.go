package router

// This file registers the back-office routes: the withdrawal review
// queue, commission rule management and the booking audit trail.
// They are separate from the host routes to keep concerns isolated.

import (
    "github.com/labstack/echo/v4"

    "github.com/novastay/booking-settlement/internal/handler"
    "github.com/novastay/booking-settlement/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
func RegisterAdmin(e *echo.Echo, withdrawals *handler.AdminWithdrawalHandler, commissions *handler.AdminCommissionHandler, jwtSecret string) {
    g := e.Group(
        "/v1/admin",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("ADMIN"),
    )

    // ---- Withdrawal review queue ----
    g.GET("/withdrawals", withdrawals.List)
    g.POST("/withdrawals/:id/verify-account", withdrawals.VerifyAccount)
    g.POST("/withdrawals/:id/approve", withdrawals.Approve)
    g.POST("/withdrawals/:id/complete", withdrawals.Complete)
    g.POST("/withdrawals/:id/reject", withdrawals.Reject)

    // ---- Commission rules ----
    g.POST("/commission-rules", commissions.CreateRule)
    g.GET("/commission-rules", commissions.ListRules)
    g.POST("/commission-rules/:id/deactivate", commissions.DeactivateRule)

    // ---- Audit trail ----
    g.GET("/bookings/:id/history", commissions.BookingHistory)
}
