package handler

import (
    "errors"
    "log"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/novastay/booking-settlement/internal/booking"
    "github.com/novastay/booking-settlement/internal/pricing"
    "github.com/novastay/booking-settlement/internal/repository"
)

// PublicHandler serves the unauthenticated read-only surface: the
// availability probe and the price quote.  Both are advisory; the
// availability answer can go stale the moment it is written and the
// booking transaction always re-checks under the listing lock.
type PublicHandler struct {
    ListingRepo     *repository.ListingRepo
    ReservationRepo *repository.ReservationRepo
    BlockedRepo     *repository.BlockedRangeRepo
    CommissionRepo  *repository.CommissionRuleRepo
}

// NewPublicHandler constructs a PublicHandler.  All dependencies must be non-nil.
func NewPublicHandler(listings *repository.ListingRepo, reservations *repository.ReservationRepo, blocked *repository.BlockedRangeRepo, commissions *repository.CommissionRuleRepo) *PublicHandler {
    if listings == nil || reservations == nil || blocked == nil || commissions == nil {
        panic("nil repository passed to NewPublicHandler")
    }
    return &PublicHandler{ListingRepo: listings, ReservationRepo: reservations, BlockedRepo: blocked, CommissionRepo: commissions}
}

// CheckAvailability handles GET /v1/listings/:id/availability.  The
// from/to query parameters form the half-open range [from, to); a
// departure matching another stay's arrival does not conflict.
// Archived listings report as not found.
func (h *PublicHandler) CheckAvailability(c echo.Context) error {
    listingID, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
    }
    from, okFrom := parseDate(c.QueryParam("from"))
    to, okTo := parseDate(c.QueryParam("to"))
    if !okFrom || !okTo {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "from and to are required as YYYY-MM-DD"})
    }
    ctx := c.Request().Context()
    listing, err := h.ListingRepo.GetByID(ctx, listingID)
    if err != nil {
        if errors.Is(err, repository.ErrListingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if listing.Archived {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
    }
    occupying, err := h.ReservationRepo.OccupyingByListing(ctx, listingID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    blocks, err := h.BlockedRepo.ListByListing(ctx, listingID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    avail, err := booking.CheckAvailability(from, to, occupying, blocks)
    if err != nil {
        if errors.Is(err, booking.ErrInvalidRange) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be before to"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability check failed"})
    }
    return c.JSON(http.StatusOK, avail)
}

// QuotePrice handles GET /v1/listings/:id/quote.  Without a
// base_price override it quotes the listing's own nightly price.
// The quote is informational; the amounts a reservation actually
// fixes are computed again inside the booking transaction.
func (h *PublicHandler) QuotePrice(c echo.Context) error {
    listingID, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
    }
    ctx := c.Request().Context()
    listing, err := h.ListingRepo.GetByID(ctx, listingID)
    if err != nil {
        if errors.Is(err, repository.ErrListingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    basePrice := listing.BasePrice
    if raw := strings.TrimSpace(c.QueryParam("base_price")); raw != "" {
        parsed, err := decimal.NewFromString(raw)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid base_price"})
        }
        basePrice = parsed
    }
    rule, err := h.CommissionRepo.ResolveForCategory(ctx, listing.Category)
    if err != nil {
        if errors.Is(err, repository.ErrNoCommissionRule) {
            log.Printf("quote: no active commission rule for category %q", listing.Category)
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "pricing unavailable"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    quote, err := pricing.ComputeFor(basePrice, rule, listing.Currency)
    if err != nil {
        switch {
        case errors.Is(err, pricing.ErrNegativeBasePrice):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "base price must not be negative"})
        case errors.Is(err, pricing.ErrInvalidCommissionRule):
            log.Printf("quote: commission rule %d exceeds base price for listing %d", rule.ID, listingID)
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "pricing unavailable"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "quote failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "currency": listing.Currency,
        "quote":    quote,
    })
}
