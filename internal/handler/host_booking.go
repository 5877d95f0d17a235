package handler

import (
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/novastay/booking-settlement/internal/booking"
    "github.com/novastay/booking-settlement/internal/lifecycle"
    "github.com/novastay/booking-settlement/internal/repository"
)

// HostBookingHandler drives reservations through the host-side
// lifecycle: approve, reject, check-in and check-out.  Every call
// verifies the actor co-owns the reservation's listing, then
// delegates to the lifecycle service, which shares its CAS
// transitions with the sweeps and the payment consumer.
type HostBookingHandler struct {
    ListingRepo     *repository.ListingRepo
    ReservationRepo *repository.ReservationRepo
    Lifecycle       *lifecycle.Service
}

// NewHostBookingHandler constructs a HostBookingHandler.  All dependencies must be non-nil.
func NewHostBookingHandler(listings *repository.ListingRepo, reservations *repository.ReservationRepo, svc *lifecycle.Service) *HostBookingHandler {
    if listings == nil || reservations == nil || svc == nil {
        panic("nil dependency passed to NewHostBookingHandler")
    }
    return &HostBookingHandler{ListingRepo: listings, ReservationRepo: reservations, Lifecycle: svc}
}

// authorize loads the reservation and checks listing co-ownership.
// It returns the listing id, or writes nothing and reports the http
// status to respond with.
func (h *HostBookingHandler) authorize(c echo.Context, resID, hostID uint64) (int, string) {
    res, err := h.ReservationRepo.GetByID(c.Request().Context(), resID)
    if err != nil {
        if errors.Is(err, repository.ErrReservationNotFound) {
            return http.StatusNotFound, "reservation not found"
        }
        return http.StatusInternalServerError, "database error"
    }
    owner, err := h.ListingRepo.IsOwner(c.Request().Context(), res.ListingID, hostID)
    if err != nil {
        return http.StatusInternalServerError, "database error"
    }
    if !owner {
        return http.StatusForbidden, "forbidden"
    }
    return 0, ""
}

// transitionStatus maps lifecycle errors onto HTTP statuses the
// way the error taxonomy prescribes: conflict-family errors are
// 409, timing guards are 422.
func transitionStatus(err error) (int, string) {
    switch {
    case errors.Is(err, booking.ErrIllegalTransition):
        return http.StatusConflict, "illegal transition"
    case errors.Is(err, repository.ErrStale):
        return http.StatusConflict, "reservation changed concurrently"
    case errors.Is(err, booking.ErrTooEarly):
        return http.StatusUnprocessableEntity, "too early"
    case errors.Is(err, booking.ErrNotReady):
        return http.StatusUnprocessableEntity, "confirmation conditions not met"
    case errors.Is(err, repository.ErrAlreadyCredited):
        return http.StatusConflict, "reservation already settled"
    case errors.Is(err, repository.ErrReservationNotFound):
        return http.StatusNotFound, "reservation not found"
    }
    return http.StatusInternalServerError, "transition failed"
}

// Approve handles POST /v1/host/bookings/:id/approve.  When the
// payment is already confirmed this completes WAITING -> RESERVED;
// otherwise the approval is recorded and the payment event finishes
// the move.
func (h *HostBookingHandler) Approve(c echo.Context) error {
    hostID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    resID, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    if status, msg := h.authorize(c, resID, hostID); status != 0 {
        return c.JSON(status, echo.Map{"error": msg})
    }
    res, err := h.Lifecycle.Approve(c.Request().Context(), resID, hostID)
    if err != nil {
        status, msg := transitionStatus(err)
        return c.JSON(status, echo.Map{"error": msg})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "reservation_id": res.ID,
        "status":         res.Status,
        "host_approved":  res.HostApproved,
        "payment_status": res.PaymentStatus,
    })
}

// Reject handles POST /v1/host/bookings/:id/reject.  The optional
// body reason lands in the audit trail.
func (h *HostBookingHandler) Reject(c echo.Context) error {
    hostID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    resID, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    var body struct {
        Reason string `json:"reason"`
    }
    _ = c.Bind(&body)
    reason := strings.TrimSpace(body.Reason)
    if reason == "" {
        reason = "rejected by host"
    }
    if status, msg := h.authorize(c, resID, hostID); status != 0 {
        return c.JSON(status, echo.Map{"error": msg})
    }
    res, err := h.Lifecycle.Refuse(c.Request().Context(), resID, hostID, reason)
    if err != nil {
        status, msg := transitionStatus(err)
        return c.JSON(status, echo.Map{"error": msg})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "reservation_id": res.ID,
        "status":         res.Status,
    })
}

// Checkin handles POST /v1/host/bookings/:id/checkin.  Allowed on
// or after the arrival date, never before.
func (h *HostBookingHandler) Checkin(c echo.Context) error {
    hostID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    resID, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    if status, msg := h.authorize(c, resID, hostID); status != 0 {
        return c.JSON(status, echo.Map{"error": msg})
    }
    res, err := h.Lifecycle.Checkin(c.Request().Context(), resID, hostID, time.Now().UTC())
    if err != nil {
        status, msg := transitionStatus(err)
        return c.JSON(status, echo.Map{"error": msg})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "reservation_id": res.ID,
        "status":         res.Status,
    })
}

// Checkout handles POST /v1/host/bookings/:id/checkout.  On success
// the host receivable has been credited to the settlement ledger.
func (h *HostBookingHandler) Checkout(c echo.Context) error {
    hostID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    resID, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    if status, msg := h.authorize(c, resID, hostID); status != 0 {
        return c.JSON(status, echo.Map{"error": msg})
    }
    res, err := h.Lifecycle.Checkout(c.Request().Context(), resID, hostID, time.Now().UTC())
    if err != nil {
        status, msg := transitionStatus(err)
        return c.JSON(status, echo.Map{"error": msg})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "reservation_id": res.ID,
        "status":         res.Status,
        "credited":       res.HostReceivable,
    })
}

// ListBookings handles GET /v1/host/bookings.  Without a query
// parameter it returns every reservation on the host's listings;
// with ?listing_id= it narrows to one listing after an ownership
// check.
func (h *HostBookingHandler) ListBookings(c echo.Context) error {
    hostID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx := c.Request().Context()
    if raw := strings.TrimSpace(c.QueryParam("listing_id")); raw != "" {
        listingID, err := strconv.ParseUint(raw, 10, 64)
        if err != nil || listingID == 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing_id"})
        }
        owner, err := h.ListingRepo.IsOwner(ctx, listingID, hostID)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
        }
        if !owner {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
        details, err := h.ReservationRepo.ListByListing(ctx, listingID)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
        }
        return c.JSON(http.StatusOK, echo.Map{"items": details})
    }
    details, err := h.ReservationRepo.ListByHost(ctx, hostID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": details})
}
