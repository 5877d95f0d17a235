package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Reservation records one guest's request to occupy a listing for
// the half-open date range `[ArrivalDate, DepartureDate)`.  The
// status column is driven exclusively through the booking state
// machine; rows are never deleted, only moved to a terminal state
// (CHECKOUT or REFUSED).
//
// Fields:
//  ID             - primary key identifier.
//  ListingID      - listing being occupied.
//  GuestID        - user who requested the stay.
//  HostID         - host credited on settlement for this stay.
//  Headcount      - number of guests (>= 1).
//  ArrivalDate    - first night (inclusive, DATE).
//  DepartureDate  - departure day (exclusive, DATE).
//  Status         - booking lifecycle state (WAITING, RESERVED,
//                   CHECKIN, CHECKOUT, REFUSED).
//  PaymentStatus  - payment lifecycle state (UNPAID, HELD,
//                   CONFIRMED, FAILED, RELEASED).
//  HostApproved   - whether the host has approved the request;
//                   combined with a confirmed payment it completes
//                   the WAITING -> RESERVED transition.
//  GuestTotal     - amount the guest pays (base price + client
//                   commission), fixed at quote time.
//  HostReceivable - amount owed to the host (base price - host
//                   commission), fixed at quote time.
//  CreatedAt      - creation timestamp.
//  UpdatedAt      - last update timestamp.
type Reservation struct {
    ID             uint64          // reservations.id
    ListingID      uint64          // reservations.listing_id
    GuestID        uint64          // reservations.guest_id
    HostID         uint64          // reservations.host_id
    Headcount      uint32          // reservations.headcount
    ArrivalDate    time.Time       // reservations.arrival_date (DATE)
    DepartureDate  time.Time       // reservations.departure_date (DATE)
    Status         string          // reservations.status
    PaymentStatus  string          // reservations.payment_status
    HostApproved   bool            // reservations.host_approved
    GuestTotal     decimal.Decimal // reservations.guest_total
    HostReceivable decimal.Decimal // reservations.host_receivable
    CreatedAt      time.Time       // reservations.created_at
    UpdatedAt      time.Time       // reservations.updated_at
}

// ReservationTransition is one immutable audit entry describing a
// state change applied to a reservation.  The table is append-only;
// the pair (PrevStatus, NewStatus) always matches a legal edge of
// the booking state machine at the time it was recorded.
//
// Fields:
//  ID            - primary key identifier.
//  ReservationID - reservation the transition belongs to.
//  PrevStatus    - status before the transition.
//  NewStatus     - status after the transition.
//  ActorID       - user who triggered the change; zero for the
//                  background sweeps and payment events.
//  Reason        - optional free-text reason (e.g. rejection note).
//  CreatedAt     - when the transition was applied.
type ReservationTransition struct {
    ID            uint64    // reservation_transitions.id
    ReservationID uint64    // reservation_transitions.reservation_id
    PrevStatus    string    // reservation_transitions.prev_status
    NewStatus     string    // reservation_transitions.new_status
    ActorID       uint64    // reservation_transitions.actor_id
    Reason        string    // reservation_transitions.reason
    CreatedAt     time.Time // reservation_transitions.created_at
}
