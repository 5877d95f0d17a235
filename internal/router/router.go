package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing

    "github.com/novastay/booking-settlement/internal/handler"    // import the handlers that implement business logic
    "github.com/novastay/booking-settlement/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    // Map the GET request at path "/healthz" to the Health handler.  This
    // endpoint can be used by load balancers or monitoring systems to verify
    // that the service is up and running.
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    // Rotating refresh: exchanges the refresh token for a new pair.
    g.POST("/refresh", a.Refresh)
    // Non-rotating variant: issues a fresh access token only.
    g.POST("/refresh-access", a.RefreshAccess)
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.Use(middleware.RequireRole("GUEST", "HOST", "ADMIN"))
    auth.GET("/me", a.Me)

    // Alias kept so clients can log out with just a refresh token in
    // the body, without the /auth prefix.
    e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers the unauthenticated read-only endpoints:
// the availability probe and the price quote.  Both answers are
// advisory; the booking transaction re-checks under the listing
// lock.  The optional cache middleware (redis response cache) is
// applied to these GETs only.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
    mws := []echo.MiddlewareFunc{}
    if cache != nil {
        mws = append(mws, cache)
    }
    e.GET("/v1/listings/:id/availability", p.CheckAvailability, mws...)
    e.GET("/v1/listings/:id/quote", p.QuotePrice, mws...)
}
