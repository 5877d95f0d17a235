package booking

import (
    "errors"
    "time"
)

// Status is the lifecycle state of a reservation.  The zero-value
// is not a valid status; rows are created in StatusWaiting.
type Status string

const (
    StatusWaiting  Status = "WAITING"  // initial: requested, not yet approved/paid
    StatusReserved Status = "RESERVED" // approved by host and payment confirmed
    StatusCheckin  Status = "CHECKIN"  // guest has arrived
    StatusCheckout Status = "CHECKOUT" // terminal: stay delivered, host credited
    StatusRefused  Status = "REFUSED"  // terminal: rejected, cancelled or timed out
)

// PaymentStatus tracks what the payment collaborator has told us
// about a reservation's funds.  It is advanced by payment events,
// not by the booking state machine itself.
type PaymentStatus string

const (
    PaymentUnpaid    PaymentStatus = "UNPAID"    // no funds movement yet
    PaymentHeld      PaymentStatus = "HELD"      // funds hold placed by the gateway
    PaymentConfirmed PaymentStatus = "CONFIRMED" // payment captured
    PaymentFailed    PaymentStatus = "FAILED"    // gateway reported failure
    PaymentReleased  PaymentStatus = "RELEASED"  // hold released after refusal
)

// ErrIllegalTransition is returned when a requested status change
// is not an edge of the transition table.
var ErrIllegalTransition = errors.New("illegal transition")

// ErrTooEarly is returned when a check-in or check-out is attempted
// before its date precondition.  Not retryable until the date
// passes.
var ErrTooEarly = errors.New("too early for this transition")

// transitions is the exhaustive edge set of the booking state
// machine.  Anything not listed fails with ErrIllegalTransition.
var transitions = map[Status][]Status{
    StatusWaiting:  {StatusReserved, StatusRefused},
    StatusReserved: {StatusCheckin},
    StatusCheckin:  {StatusCheckout},
    StatusCheckout: {},
    StatusRefused:  {},
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
    _, ok := transitions[s]
    return ok
}

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
    return s.Valid() && len(transitions[s]) == 0
}

// HoldsOccupancy reports whether a reservation in this status
// blocks other requests for overlapping dates.  WAITING does not:
// several pending bids may compete for the same window.  CHECKOUT
// is historical and no longer forward-blocking.
func (s Status) HoldsOccupancy() bool {
    return s == StatusReserved || s == StatusCheckin
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to Status) bool {
    for _, next := range transitions[from] {
        if next == to {
            return true
        }
    }
    return false
}

// Transition validates a requested edge and returns
// ErrIllegalTransition when it is not part of the table.  The
// persistence layer enforces the same edge again as a conditional
// update so that concurrent callers racing past this check fail
// with its stale-state error instead of corrupting state.
func Transition(from, to Status) error {
    if !CanTransition(from, to) {
        return ErrIllegalTransition
    }
    return nil
}

// Confirm decides whether a WAITING reservation may complete the
// move to RESERVED.  Both conditions must hold: the host
// must have approved and the payment collaborator must have
// confirmed funds.  Callers invoke it from the approval path and
// from the payment-event path; whichever condition arrives second
// completes the transition.
func Confirm(status Status, hostApproved bool, payment PaymentStatus) error {
    if err := Transition(status, StatusReserved); err != nil {
        return err
    }
    if !hostApproved || payment != PaymentConfirmed {
        // Not an error: the other condition has not arrived yet.
        return ErrNotReady
    }
    return nil
}

// ErrNotReady signals that a WAITING -> RESERVED move is legal but
// one of its two conditions (host approval, payment confirmation)
// is still outstanding.  The reservation stays WAITING.
var ErrNotReady = errors.New("confirmation conditions not met")

// ReceiveConfirmation decides how a payment confirmation applies to
// a reservation.  Only UNPAID or HELD may advance; CONFIRMED,
// FAILED and RELEASED stay as recorded, so duplicate and straggling
// events are harmless (apply false).  A confirmation that lost the
// race against a refusal must not capture funds for a stay that
// will never happen: it records RELEASED and the caller sends a
// release-hold command, the same as a refusal of held funds.
func ReceiveConfirmation(status Status, payment PaymentStatus) (next PaymentStatus, release, apply bool) {
    if payment != PaymentUnpaid && payment != PaymentHeld {
        return payment, false, false
    }
    if status == StatusRefused {
        return PaymentReleased, true, true
    }
    return PaymentConfirmed, false, true
}

// Checkin validates the RESERVED -> CHECKIN move at a moment in
// time.  Arrival may be marked on or after the arrival date; an
// earlier attempt fails with ErrTooEarly.
func Checkin(status Status, arrival, now time.Time) error {
    if err := Transition(status, StatusCheckin); err != nil {
        return err
    }
    if now.Before(arrival) {
        return ErrTooEarly
    }
    return nil
}

// Checkout validates the CHECKIN -> CHECKOUT move at a moment in
// time.  Departure may be marked on or after the departure date,
// by the host or by the scheduled sweep.
func Checkout(status Status, departure, now time.Time) error {
    if err := Transition(status, StatusCheckout); err != nil {
        return err
    }
    if now.Before(departure) {
        return ErrTooEarly
    }
    return nil
}
