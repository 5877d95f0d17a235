package booking

import (
    "testing"
    "time"

    "github.com/novastay/booking-settlement/internal/model"
)

// day parses a YYYY-MM-DD string into a UTC midnight time.Time.
func day(t *testing.T, s string) time.Time {
    t.Helper()
    d, err := time.Parse("2006-01-02", s)
    if err != nil {
        t.Fatalf("bad test date %q: %v", s, err)
    }
    return d
}

func TestOverlaps(t *testing.T) {
    cases := []struct {
        name           string
        a1, a2, b1, b2 string
        want           bool
    }{
        {"identical", "2024-06-01", "2024-06-05", "2024-06-01", "2024-06-05", true},
        {"contained", "2024-06-02", "2024-06-04", "2024-06-01", "2024-06-05", true},
        {"partial front", "2024-06-03", "2024-06-07", "2024-06-01", "2024-06-05", true},
        {"partial back", "2024-05-28", "2024-06-02", "2024-06-01", "2024-06-05", true},
        {"touching back-to-back", "2024-06-05", "2024-06-10", "2024-06-01", "2024-06-05", false},
        {"touching reversed", "2024-06-01", "2024-06-05", "2024-06-05", "2024-06-10", false},
        {"disjoint", "2024-07-01", "2024-07-05", "2024-06-01", "2024-06-05", false},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            got := Overlaps(day(t, tc.a1), day(t, tc.a2), day(t, tc.b1), day(t, tc.b2))
            if got != tc.want {
                t.Errorf("Overlaps(%s,%s,%s,%s) = %v, want %v", tc.a1, tc.a2, tc.b1, tc.b2, got, tc.want)
            }
            // The predicate is symmetric in its two ranges.
            if sym := Overlaps(day(t, tc.b1), day(t, tc.b2), day(t, tc.a1), day(t, tc.a2)); sym != got {
                t.Errorf("Overlaps is not symmetric for %s", tc.name)
            }
        })
    }
}

func TestValidateRange(t *testing.T) {
    if err := ValidateRange(day(t, "2024-06-01"), day(t, "2024-06-02")); err != nil {
        t.Fatalf("valid range rejected: %v", err)
    }
    if err := ValidateRange(day(t, "2024-06-02"), day(t, "2024-06-01")); err != ErrInvalidRange {
        t.Fatalf("reversed range: got %v, want ErrInvalidRange", err)
    }
    if err := ValidateRange(day(t, "2024-06-01"), day(t, "2024-06-01")); err != ErrInvalidRange {
        t.Fatalf("empty range: got %v, want ErrInvalidRange", err)
    }
}

func TestCheckAvailability(t *testing.T) {
    reserved := model.Reservation{
        Status:        string(StatusReserved),
        ArrivalDate:   day(t, "2024-06-01"),
        DepartureDate: day(t, "2024-06-05"),
    }
    waiting := model.Reservation{
        Status:        string(StatusWaiting),
        ArrivalDate:   day(t, "2024-06-01"),
        DepartureDate: day(t, "2024-06-05"),
    }
    checkedOut := model.Reservation{
        Status:        string(StatusCheckout),
        ArrivalDate:   day(t, "2024-06-01"),
        DepartureDate: day(t, "2024-06-05"),
    }
    block := model.BlockedRange{
        StartDate: day(t, "2024-06-20"),
        EndDate:   day(t, "2024-06-25"),
    }

    t.Run("conflict with reserved", func(t *testing.T) {
        got, err := CheckAvailability(day(t, "2024-06-03"), day(t, "2024-06-07"), []model.Reservation{reserved}, nil)
        if err != nil {
            t.Fatalf("unexpected error: %v", err)
        }
        if got.Available || got.Reason != ConflictReservation {
            t.Fatalf("got %+v, want reservation conflict", got)
        }
    })

    t.Run("back-to-back accepted", func(t *testing.T) {
        got, err := CheckAvailability(day(t, "2024-06-05"), day(t, "2024-06-10"), []model.Reservation{reserved}, nil)
        if err != nil {
            t.Fatalf("unexpected error: %v", err)
        }
        if !got.Available {
            t.Fatalf("touching ranges should not conflict, got %+v", got)
        }
    })

    t.Run("waiting does not block", func(t *testing.T) {
        got, err := CheckAvailability(day(t, "2024-06-02"), day(t, "2024-06-04"), []model.Reservation{waiting}, nil)
        if err != nil {
            t.Fatalf("unexpected error: %v", err)
        }
        if !got.Available {
            t.Fatalf("WAITING reservation must not block, got %+v", got)
        }
    })

    t.Run("checkout does not block", func(t *testing.T) {
        got, err := CheckAvailability(day(t, "2024-06-02"), day(t, "2024-06-04"), []model.Reservation{checkedOut}, nil)
        if err != nil {
            t.Fatalf("unexpected error: %v", err)
        }
        if !got.Available {
            t.Fatalf("CHECKOUT reservation must not block, got %+v", got)
        }
    })

    t.Run("conflict with blocked range", func(t *testing.T) {
        got, err := CheckAvailability(day(t, "2024-06-22"), day(t, "2024-06-24"), nil, []model.BlockedRange{block})
        if err != nil {
            t.Fatalf("unexpected error: %v", err)
        }
        if got.Available || got.Reason != ConflictBlocked {
            t.Fatalf("got %+v, want blocked conflict", got)
        }
    })

    t.Run("reservation conflict reported before block", func(t *testing.T) {
        wideBlock := model.BlockedRange{StartDate: day(t, "2024-06-01"), EndDate: day(t, "2024-06-30")}
        got, err := CheckAvailability(day(t, "2024-06-03"), day(t, "2024-06-07"), []model.Reservation{reserved}, []model.BlockedRange{wideBlock})
        if err != nil {
            t.Fatalf("unexpected error: %v", err)
        }
        if got.Reason != ConflictReservation {
            t.Fatalf("first conflict should be the reservation, got %+v", got)
        }
    })

    t.Run("invalid range", func(t *testing.T) {
        if _, err := CheckAvailability(day(t, "2024-06-05"), day(t, "2024-06-01"), nil, nil); err != ErrInvalidRange {
            t.Fatalf("got %v, want ErrInvalidRange", err)
        }
    })
}
