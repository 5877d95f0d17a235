package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/novastay/booking-settlement/internal/booking"
    "github.com/novastay/booking-settlement/internal/model"
    "github.com/novastay/booking-settlement/internal/repository"
)

// HostListingHandler lets hosts manage their listings and blocked
// ranges.  Ownership is checked against the listing_owners join
// table on every mutating call; co-owners have equal rights.
type HostListingHandler struct {
    ListingRepo     *repository.ListingRepo
    BlockedRepo     *repository.BlockedRangeRepo
    ReservationRepo *repository.ReservationRepo
}

// NewHostListingHandler constructs a HostListingHandler.  All dependencies must be non-nil.
func NewHostListingHandler(listings *repository.ListingRepo, blocked *repository.BlockedRangeRepo, reservations *repository.ReservationRepo) *HostListingHandler {
    if listings == nil || blocked == nil || reservations == nil {
        panic("nil repository passed to NewHostListingHandler")
    }
    return &HostListingHandler{ListingRepo: listings, BlockedRepo: blocked, ReservationRepo: reservations}
}

type listingReq struct {
    Name      string `json:"name" validate:"required"`
    Category  string `json:"category" validate:"required"`
    BasePrice string `json:"base_price" validate:"required"`
    Currency  string `json:"currency" validate:"required,len=3"`
}

// CreateListing handles POST /v1/host/listings.  The creating host
// becomes the first owner and the settlement receivable host for
// future reservations.
func (h *HostListingHandler) CreateListing(c echo.Context) error {
    hostID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req listingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := validate.Struct(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, category, base_price and currency are required"})
    }
    basePrice, err := decimal.NewFromString(strings.TrimSpace(req.BasePrice))
    if err != nil || basePrice.IsNegative() {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "base_price must be a non-negative decimal"})
    }
    l := &model.Listing{
        Name:      strings.TrimSpace(req.Name),
        Category:  strings.ToUpper(strings.TrimSpace(req.Category)),
        BasePrice: basePrice,
        Currency:  strings.ToUpper(strings.TrimSpace(req.Currency)),
    }
    if err := h.ListingRepo.Create(c.Request().Context(), l, hostID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create listing"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "id":         l.ID,
        "name":       l.Name,
        "category":   l.Category,
        "base_price": l.BasePrice,
        "currency":   l.Currency,
    })
}

// UpdateListing handles PATCH /v1/host/listings/:id.  Price changes
// only affect later quotes; amounts already fixed on reservations
// are untouched.
func (h *HostListingHandler) UpdateListing(c echo.Context) error {
    hostID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    listingID, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
    }
    var req listingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := validate.Struct(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, category, base_price and currency are required"})
    }
    basePrice, err := decimal.NewFromString(strings.TrimSpace(req.BasePrice))
    if err != nil || basePrice.IsNegative() {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "base_price must be a non-negative decimal"})
    }
    ctx := c.Request().Context()
    owner, err := h.checkOwner(c, listingID, hostID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if !owner {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    if err := h.ListingRepo.Update(ctx, listingID,
        strings.TrimSpace(req.Name),
        strings.ToUpper(strings.TrimSpace(req.Category)),
        basePrice,
        strings.ToUpper(strings.TrimSpace(req.Currency))); err != nil {
        if errors.Is(err, repository.ErrListingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update listing"})
    }
    return c.NoContent(http.StatusNoContent)
}

// ArchiveListing handles DELETE /v1/host/listings/:id.  Archival is
// a soft delete and is refused while the listing still has
// reservations holding occupancy or waiting for a decision.
func (h *HostListingHandler) ArchiveListing(c echo.Context) error {
    hostID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    listingID, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
    }
    ctx := c.Request().Context()
    owner, err := h.checkOwner(c, listingID, hostID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if !owner {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    active, err := h.ReservationRepo.HasActiveForListing(ctx, listingID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if active {
        return c.JSON(http.StatusConflict, echo.Map{"error": "listing has active reservations"})
    }
    if err := h.ListingRepo.Archive(ctx, listingID); err != nil {
        if errors.Is(err, repository.ErrListingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to archive listing"})
    }
    return c.NoContent(http.StatusNoContent)
}

// ListMyListings handles GET /v1/host/listings.
func (h *HostListingHandler) ListMyListings(c echo.Context) error {
    hostID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    listings, err := h.ListingRepo.ListByOwner(c.Request().Context(), hostID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load listings"})
    }
    items := make([]echo.Map, 0, len(listings))
    for _, l := range listings {
        items = append(items, echo.Map{
            "id":         l.ID,
            "name":       l.Name,
            "category":   l.Category,
            "base_price": l.BasePrice,
            "currency":   l.Currency,
            "archived":   l.Archived,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type blockReq struct {
    StartDate string `json:"start_date" validate:"required"`
    EndDate   string `json:"end_date" validate:"required"`
}

// AddBlock handles POST /v1/host/listings/:id/blocks.  Blocked
// ranges are half-open like reservations and never carry money.
func (h *HostListingHandler) AddBlock(c echo.Context) error {
    hostID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    listingID, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
    }
    var req blockReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := validate.Struct(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date and end_date are required"})
    }
    start, okS := parseDate(req.StartDate)
    end, okE := parseDate(req.EndDate)
    if !okS || !okE {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "dates must be YYYY-MM-DD"})
    }
    if err := booking.ValidateRange(start, end); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be before end_date"})
    }
    owner, err := h.checkOwner(c, listingID, hostID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if !owner {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    b := &model.BlockedRange{
        ListingID: listingID,
        StartDate: start,
        EndDate:   end,
        CreatedBy: hostID,
    }
    if err := h.BlockedRepo.Create(c.Request().Context(), b); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create blocked range"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "id":         b.ID,
        "listing_id": b.ListingID,
        "start_date": start.Format(dateLayout),
        "end_date":   end.Format(dateLayout),
    })
}

// RemoveBlock handles DELETE /v1/host/blocks/:id.
func (h *HostListingHandler) RemoveBlock(c echo.Context) error {
    hostID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    blockID, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid block id"})
    }
    ctx := c.Request().Context()
    block, err := h.BlockedRepo.GetByID(ctx, blockID)
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "blocked range not found"})
    }
    owner, err := h.checkOwner(c, block.ListingID, hostID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if !owner {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    if err := h.BlockedRepo.Delete(ctx, blockID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete blocked range"})
    }
    return c.NoContent(http.StatusNoContent)
}

type coOwnerReq struct {
    HostID uint64 `json:"host_id" validate:"required"`
}

// AddCoOwner handles POST /v1/host/listings/:id/owners.  Co-owners
// gain equal management rights; the settlement receivable host
// stays the earliest grant.
func (h *HostListingHandler) AddCoOwner(c echo.Context) error {
    hostID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    listingID, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
    }
    var req coOwnerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := validate.Struct(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "host_id is required"})
    }
    owner, err := h.checkOwner(c, listingID, hostID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if !owner {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    if err := h.ListingRepo.AddOwner(c.Request().Context(), listingID, req.HostID); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "already a co-owner"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to add co-owner"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "listing_id": listingID,
        "host_id":    req.HostID,
    })
}

// ListOwners handles GET /v1/host/listings/:id/owners.
func (h *HostListingHandler) ListOwners(c echo.Context) error {
    hostID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    listingID, ok := parseIDParam(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid listing id"})
    }
    owner, err := h.checkOwner(c, listingID, hostID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if !owner {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    owners, err := h.ListingRepo.Owners(c.Request().Context(), listingID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load owners"})
    }
    return c.JSON(http.StatusOK, echo.Map{"listing_id": listingID, "owners": owners})
}

// checkOwner reports whether hostID co-owns the listing.
func (h *HostListingHandler) checkOwner(c echo.Context, listingID, hostID uint64) (bool, error) {
    return h.ListingRepo.IsOwner(c.Request().Context(), listingID, hostID)
}
