package booking

import (
    "testing"
    "time"
)

// TestTransitionTableClosure enumerates the full status x status
// grid and asserts exactly the five legal edges exist.
func TestTransitionTableClosure(t *testing.T) {
    all := []Status{StatusWaiting, StatusReserved, StatusCheckin, StatusCheckout, StatusRefused}
    legal := map[[2]Status]bool{
        {StatusWaiting, StatusReserved}: true,
        {StatusWaiting, StatusRefused}:  true,
        {StatusReserved, StatusCheckin}: true,
        {StatusCheckin, StatusCheckout}: true,
    }
    for _, from := range all {
        for _, to := range all {
            want := legal[[2]Status{from, to}]
            if got := CanTransition(from, to); got != want {
                t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
            }
            err := Transition(from, to)
            if want && err != nil {
                t.Errorf("Transition(%s, %s) = %v, want nil", from, to, err)
            }
            if !want && err != ErrIllegalTransition {
                t.Errorf("Transition(%s, %s) = %v, want ErrIllegalTransition", from, to, err)
            }
        }
    }
}

func TestTerminalStates(t *testing.T) {
    for _, s := range []Status{StatusCheckout, StatusRefused} {
        if !s.Terminal() {
            t.Errorf("%s should be terminal", s)
        }
    }
    for _, s := range []Status{StatusWaiting, StatusReserved, StatusCheckin} {
        if s.Terminal() {
            t.Errorf("%s should not be terminal", s)
        }
    }
    if Status("BOGUS").Valid() {
        t.Error("unknown status reported valid")
    }
}

func TestHoldsOccupancy(t *testing.T) {
    occupancy := map[Status]bool{
        StatusWaiting:  false,
        StatusReserved: true,
        StatusCheckin:  true,
        StatusCheckout: false,
        StatusRefused:  false,
    }
    for s, want := range occupancy {
        if got := s.HoldsOccupancy(); got != want {
            t.Errorf("%s.HoldsOccupancy() = %v, want %v", s, got, want)
        }
    }
}

func TestConfirm(t *testing.T) {
    cases := []struct {
        name     string
        status   Status
        approved bool
        payment  PaymentStatus
        want     error
    }{
        {"both conditions met", StatusWaiting, true, PaymentConfirmed, nil},
        {"approval only", StatusWaiting, true, PaymentHeld, ErrNotReady},
        {"payment only", StatusWaiting, false, PaymentConfirmed, ErrNotReady},
        {"neither", StatusWaiting, false, PaymentUnpaid, ErrNotReady},
        {"already reserved", StatusReserved, true, PaymentConfirmed, ErrIllegalTransition},
        {"refused", StatusRefused, true, PaymentConfirmed, ErrIllegalTransition},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            if got := Confirm(tc.status, tc.approved, tc.payment); got != tc.want {
                t.Errorf("Confirm = %v, want %v", got, tc.want)
            }
        })
    }
}

func TestReceiveConfirmation(t *testing.T) {
    cases := []struct {
        name    string
        status  Status
        payment PaymentStatus
        next    PaymentStatus
        release bool
        apply   bool
    }{
        {"held waiting", StatusWaiting, PaymentHeld, PaymentConfirmed, false, true},
        {"unpaid waiting", StatusWaiting, PaymentUnpaid, PaymentConfirmed, false, true},
        // The timeout sweep refused the stay while the confirmation
        // was in flight: the funds must go back, never be captured.
        {"held after refusal", StatusRefused, PaymentHeld, PaymentReleased, true, true},
        {"unpaid after refusal", StatusRefused, PaymentUnpaid, PaymentReleased, true, true},
        // A refusal already released the hold; a late confirmation
        // must not overwrite that record.
        {"released after refusal", StatusRefused, PaymentReleased, PaymentReleased, false, false},
        {"duplicate confirmation", StatusReserved, PaymentConfirmed, PaymentConfirmed, false, false},
        {"after failure", StatusWaiting, PaymentFailed, PaymentFailed, false, false},
        {"held during stay", StatusCheckin, PaymentHeld, PaymentConfirmed, false, true},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            next, release, apply := ReceiveConfirmation(tc.status, tc.payment)
            if next != tc.next || release != tc.release || apply != tc.apply {
                t.Errorf("ReceiveConfirmation(%s, %s) = (%s, %v, %v), want (%s, %v, %v)",
                    tc.status, tc.payment, next, release, apply, tc.next, tc.release, tc.apply)
            }
        })
    }
}

func TestCheckinCheckout(t *testing.T) {
    arrival := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
    departure := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

    if err := Checkin(StatusReserved, arrival, arrival.Add(-time.Hour)); err != ErrTooEarly {
        t.Errorf("early checkin: got %v, want ErrTooEarly", err)
    }
    if err := Checkin(StatusReserved, arrival, arrival); err != nil {
        t.Errorf("on-date checkin: got %v, want nil", err)
    }
    if err := Checkin(StatusWaiting, arrival, arrival); err != ErrIllegalTransition {
        t.Errorf("checkin from WAITING: got %v, want ErrIllegalTransition", err)
    }

    if err := Checkout(StatusCheckin, departure, departure.Add(-time.Hour)); err != ErrTooEarly {
        t.Errorf("early checkout: got %v, want ErrTooEarly", err)
    }
    if err := Checkout(StatusCheckin, departure, departure.Add(time.Hour)); err != nil {
        t.Errorf("late checkout: got %v, want nil", err)
    }
    // CHECKOUT is unreachable from WAITING without passing RESERVED and CHECKIN.
    if err := Checkout(StatusWaiting, departure, departure); err != ErrIllegalTransition {
        t.Errorf("checkout from WAITING: got %v, want ErrIllegalTransition", err)
    }
    if err := Checkout(StatusCheckout, departure, departure); err != ErrIllegalTransition {
        t.Errorf("double checkout: got %v, want ErrIllegalTransition", err)
    }
}
