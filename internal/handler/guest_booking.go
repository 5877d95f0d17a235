package handler

import (
    "errors"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/novastay/booking-settlement/internal/booking"
    "github.com/novastay/booking-settlement/internal/lifecycle"
    "github.com/novastay/booking-settlement/internal/model"
    "github.com/novastay/booking-settlement/internal/pricing"
    "github.com/novastay/booking-settlement/internal/repository"
)

// GuestHandler groups the repositories needed to request, cancel
// and list bookings on behalf of guests.  JWT authentication and
// role validation happen in middleware; methods return 401 only
// when the user ID cannot be extracted from the context.  The
// booking request runs inside a transaction holding the per-listing
// row lock so concurrent requests for the same listing serialize.
type GuestHandler struct {
    ListingRepo     *repository.ListingRepo
    ReservationRepo *repository.ReservationRepo
    BlockedRepo     *repository.BlockedRangeRepo
    CommissionRepo  *repository.CommissionRuleRepo
    TransitionRepo  *repository.TransitionRepo
    Lifecycle       *lifecycle.Service
}

// NewGuestHandler constructs a GuestHandler.  All dependencies must be non-nil.
func NewGuestHandler(listings *repository.ListingRepo, reservations *repository.ReservationRepo, blocked *repository.BlockedRangeRepo, commissions *repository.CommissionRuleRepo, transitions *repository.TransitionRepo, svc *lifecycle.Service) *GuestHandler {
    if listings == nil || reservations == nil || blocked == nil || commissions == nil || transitions == nil || svc == nil {
        panic("nil dependency passed to NewGuestHandler")
    }
    return &GuestHandler{
        ListingRepo:     listings,
        ReservationRepo: reservations,
        BlockedRepo:     blocked,
        CommissionRepo:  commissions,
        TransitionRepo:  transitions,
        Lifecycle:       svc,
    }
}

type bookingReq struct {
    ArrivalDate   string `json:"arrival_date" validate:"required"`
    DepartureDate string `json:"departure_date" validate:"required"`
    Headcount     uint32 `json:"headcount" validate:"required,min=1"`
}

// RequestBooking handles POST /v1/listings/:id/bookings.  It
// creates a WAITING reservation after re-checking availability
// under the listing lock; the public availability probe is only
// advisory.  The money amounts are fixed here at quote time and
// never recomputed, so later commission rule changes do not touch
// existing reservations.  Returns 201 with the new reservation,
// 409 when the range conflicts, 400 for an invalid date range.
func (h *GuestHandler) RequestBooking(c echo.Context) error {
    guestID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    listingID, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
    }
    var req bookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := validate.Struct(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "arrival_date, departure_date and headcount are required"})
    }
    arrival, okA := parseDate(req.ArrivalDate)
    departure, okD := parseDate(req.DepartureDate)
    if !okA || !okD {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "dates must be YYYY-MM-DD"})
    }
    if err := booking.ValidateRange(arrival, departure); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "arrival must be before departure"})
    }
    today := time.Now().UTC().Truncate(24 * time.Hour)
    if arrival.Before(today) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "arrival date is in the past"})
    }

    ctx := c.Request().Context()
    tx, err := h.ListingRepo.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    // Lock the listing row; this serializes all booking attempts
    // for the listing so two guests cannot both pass the conflict
    // check for overlapping ranges.
    if err := h.ListingRepo.LockTx(ctx, tx, listingID); err != nil {
        if errors.Is(err, repository.ErrListingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to lock listing"})
    }
    listing, err := h.ListingRepo.GetByIDTx(ctx, tx, listingID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load listing"})
    }
    if listing.Archived {
        return c.JSON(http.StatusConflict, echo.Map{"error": "listing is archived"})
    }
    occupying, err := h.ReservationRepo.OccupyingByListingTx(ctx, tx, listingID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
    }
    blocks, err := h.BlockedRepo.ListByListingTx(ctx, tx, listingID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
    }
    avail, err := booking.CheckAvailability(arrival, departure, occupying, blocks)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date range"})
    }
    if !avail.Available {
        return c.JSON(http.StatusConflict, echo.Map{
            "error":           "dates unavailable",
            "conflict_reason": avail.Reason,
        })
    }
    rule, err := h.CommissionRepo.ResolveForCategoryTx(ctx, tx, listing.Category)
    if err != nil {
        if errors.Is(err, repository.ErrNoCommissionRule) {
            // Configuration fault, not a caller error; the detail is
            // for the admin log, not the guest.
            log.Printf("booking: no active commission rule for category %q", listing.Category)
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "pricing unavailable"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resolve commission rule"})
    }
    nights := int64(departure.Sub(arrival).Hours() / 24)
    stayBase := listing.BasePrice.Mul(decimal.NewFromInt(nights))
    quote, err := pricing.ComputeFor(stayBase, rule, listing.Currency)
    if err != nil {
        if errors.Is(err, pricing.ErrInvalidCommissionRule) {
            log.Printf("booking: commission rule %d exceeds stay price for listing %d", rule.ID, listingID)
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "pricing unavailable"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "quote failed"})
    }
    hostID, err := h.ListingRepo.FirstOwnerTx(ctx, tx, listingID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resolve listing owner"})
    }
    res := &model.Reservation{
        ListingID:      listingID,
        GuestID:        guestID,
        HostID:         hostID,
        Headcount:      req.Headcount,
        ArrivalDate:    arrival,
        DepartureDate:  departure,
        Status:         string(booking.StatusWaiting),
        PaymentStatus:  string(booking.PaymentUnpaid),
        GuestTotal:     quote.ClientPays,
        HostReceivable: quote.HostReceives,
    }
    if err := h.ReservationRepo.CreateTx(ctx, tx, res); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
    }
    if err := h.TransitionRepo.AppendTx(ctx, tx, model.ReservationTransition{
        ReservationID: res.ID,
        PrevStatus:    "",
        NewStatus:     string(booking.StatusWaiting),
        ActorID:       guestID,
    }); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record transition"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true
    return c.JSON(http.StatusCreated, echo.Map{
        "reservation_id":  res.ID,
        "status":          res.Status,
        "arrival_date":    arrival.Format(dateLayout),
        "departure_date":  departure.Format(dateLayout),
        "guest_total":     res.GuestTotal,
        "host_receivable": res.HostReceivable,
        "currency":        listing.Currency,
    })
}

// CancelBooking handles DELETE /v1/bookings/:id.  Guests may only
// cancel their own WAITING reservations; anything later belongs to
// the host-side flow.  Returns 204 on success, 409 when the
// reservation has already moved on.
func (h *GuestHandler) CancelBooking(c echo.Context) error {
    guestID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    resID, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    ctx := c.Request().Context()
    res, err := h.ReservationRepo.GetByID(ctx, resID)
    if err != nil {
        if errors.Is(err, repository.ErrReservationNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if res.GuestID != guestID {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    if _, err := h.Lifecycle.Refuse(ctx, resID, guestID, "cancelled by guest"); err != nil {
        switch {
        case errors.Is(err, booking.ErrIllegalTransition), errors.Is(err, repository.ErrStale):
            return c.JSON(http.StatusConflict, echo.Map{"error": "reservation can no longer be cancelled"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancellation failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// ListMyBookings handles GET /v1/my-bookings.  Returns all
// reservations created by the current guest, newest first.
func (h *GuestHandler) ListMyBookings(c echo.Context) error {
    guestID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    details, err := h.ReservationRepo.ListByGuest(c.Request().Context(), guestID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": details})
}

// GetBooking handles GET /v1/bookings/:id.  Visible to the guest
// who made the reservation and to the receivable host.
func (h *GuestHandler) GetBooking(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    resID, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    detail, err := h.ReservationRepo.GetDetailByID(c.Request().Context(), resID)
    if err != nil {
        if errors.Is(err, repository.ErrReservationNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if detail.GuestID != userID && detail.HostID != userID {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    return c.JSON(http.StatusOK, echo.Map{"item": detail})
}
