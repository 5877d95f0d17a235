package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Listing represents a rentable unit as stored in the `listings`
// table.  A listing carries the nightly base price used by the
// commission calculator and may be co-owned by several hosts via
// the listing_owners join table.  Listings are never hard-deleted
// while reservations reference them; instead the archived flag is
// set and the listing stops accepting new bookings.
//
// Fields:
//  ID         - primary key identifier.
//  Name       - display name of the unit.
//  Category   - listing category used for commission rule scoping.
//  BasePrice  - nightly base price in the reference currency (>= 0).
//  Currency   - ISO currency code of the base price.
//  Archived   - soft-delete flag; archived listings reject bookings.
//  CreatedAt  - timestamp of creation.
//  UpdatedAt  - timestamp of last update.
type Listing struct {
    ID        uint64          // listings.id
    Name      string          // listings.name
    Category  string          // listings.category
    BasePrice decimal.Decimal // listings.base_price
    Currency  string          // listings.currency
    Archived  bool            // listings.archived
    CreatedAt time.Time       // listings.created_at
    UpdatedAt time.Time       // listings.updated_at
}

// ListingOwner links a host user to a listing.  Co-ownership is
// allowed, so a listing may have multiple rows here.  Every owner
// may manage the listing and mark arrivals and departures, but
// settlement credits accrue to the receivable host recorded on the
// reservation.
//
// Fields:
//  ListingID - reference to the listing.
//  HostID    - owning host user.
//  CreatedAt - when the ownership was granted.
type ListingOwner struct {
    ListingID uint64    // listing_owners.listing_id
    HostID    uint64    // listing_owners.host_id
    CreatedAt time.Time // listing_owners.created_at
}

// BlockedRange is an owner- or admin-imposed unavailability window
// on a listing, independent of any reservation.  Blocked ranges are
// half-open `[StartDate, EndDate)` like reservations and are never
// linked to money.
//
// Fields:
//  ID        - primary key identifier.
//  ListingID - listing the block applies to.
//  StartDate - first blocked day (inclusive).
//  EndDate   - day the block ends (exclusive).
//  CreatedBy - user who created the block (owner or admin).
//  CreatedAt - timestamp of creation.
type BlockedRange struct {
    ID        uint64    // blocked_ranges.id
    ListingID uint64    // blocked_ranges.listing_id
    StartDate time.Time // blocked_ranges.start_date (DATE)
    EndDate   time.Time // blocked_ranges.end_date (DATE)
    CreatedBy uint64    // blocked_ranges.created_by
    CreatedAt time.Time // blocked_ranges.created_at
}
