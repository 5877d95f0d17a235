// Package booking contains the pure reservation logic: the
// half-open interval conflict checker and the booking state
// machine.  Nothing in this package touches the database; the
// repository layer feeds it rows and persists its verdicts.
package booking

import (
    "errors"
    "time"

    "github.com/novastay/booking-settlement/internal/model"
)

// ErrInvalidRange is returned when a caller supplies a date range
// whose start is not strictly before its end.  This is a caller
// error and is never retried.
var ErrInvalidRange = errors.New("invalid date range")

// ConflictReason distinguishes what a proposed stay collided with.
// The distinction matters for guest-facing messaging: an existing
// reservation and an owner-imposed block are worded differently.
type ConflictReason string

const (
    // ConflictReservation means the range overlaps a reservation
    // that currently holds occupancy (RESERVED or CHECKIN).
    ConflictReservation ConflictReason = "reservation"
    // ConflictBlocked means the range overlaps an owner- or
    // admin-imposed blocked range.
    ConflictBlocked ConflictReason = "blocked"
)

// Availability is the result of a conflict check.  When Available
// is false, Reason names the first conflict found.
type Availability struct {
    Available bool           `json:"available"`
    Reason    ConflictReason `json:"conflict_reason,omitempty"`
}

// Overlaps reports whether the half-open ranges [a1,a2) and [b1,b2)
// share at least one day.  Touching endpoints do not overlap, which
// is what enables back-to-back stays: a departure on the same day
// as the next guest's arrival is fine.  The same predicate is used
// for promotion-campaign overlap detection elsewhere.
func Overlaps(a1, a2, b1, b2 time.Time) bool {
    return a1.Before(b2) && b1.Before(a2)
}

// ValidateRange checks that start is strictly before end.  Both
// values are expected to be bare DATE values (midnight UTC).
func ValidateRange(start, end time.Time) error {
    if !start.Before(end) {
        return ErrInvalidRange
    }
    return nil
}

// CheckAvailability evaluates a proposed stay against the listing's
// current reservations and blocked ranges.  Only reservations whose
// status holds occupancy (RESERVED, CHECKIN) can conflict; WAITING
// requests never block other requests, so several pending bids for
// the same dates may coexist until one is approved.  The first
// conflict short-circuits the scan.  The function has no side
// effects and is safe to call concurrently.
func CheckAvailability(start, end time.Time, reservations []model.Reservation, blocks []model.BlockedRange) (Availability, error) {
    if err := ValidateRange(start, end); err != nil {
        return Availability{}, err
    }
    for _, r := range reservations {
        if !Status(r.Status).HoldsOccupancy() {
            continue
        }
        if Overlaps(start, end, r.ArrivalDate, r.DepartureDate) {
            return Availability{Available: false, Reason: ConflictReservation}, nil
        }
    }
    for _, b := range blocks {
        if Overlaps(start, end, b.StartDate, b.EndDate) {
            return Availability{Available: false, Reason: ConflictBlocked}, nil
        }
    }
    return Availability{Available: true}, nil
}
