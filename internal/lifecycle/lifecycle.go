// Package lifecycle drives reservations through the booking state
// machine against the database.  Handlers, the scheduled sweeps and
// the payment-event consumer all funnel through this one place so
// every transition gets the same treatment: validated against the
// transition table, applied as a compare-and-swap update, recorded
// in the append-only audit log inside the same transaction, and
// announced to the notification queue after commit.
package lifecycle

import (
    "context"
    "database/sql"
    "log"
    "time"

    "github.com/google/uuid"

    "github.com/novastay/booking-settlement/internal/booking"
    "github.com/novastay/booking-settlement/internal/model"
    "github.com/novastay/booking-settlement/internal/queue"
    "github.com/novastay/booking-settlement/internal/repository"
    queue_publisher "github.com/novastay/booking-settlement/internal/service"
)

// Service bundles the repositories needed to apply transitions.
type Service struct {
    db           *sql.DB
    reservations *repository.ReservationRepo
    transitions  *repository.TransitionRepo
    ledger       *repository.LedgerRepo
}

// New constructs a Service.  All dependencies must be non-nil.
func New(db *sql.DB, reservations *repository.ReservationRepo, transitions *repository.TransitionRepo, ledger *repository.LedgerRepo) *Service {
    if db == nil || reservations == nil || transitions == nil || ledger == nil {
        panic("nil dependency passed to lifecycle.New")
    }
    return &Service{db: db, reservations: reservations, transitions: transitions, ledger: ledger}
}

// announce publishes a reservation event after a committed
// transition.  Failures are logged inside the publisher and
// ignored: notifications are informed, never consulted.
func announce(ctx context.Context, res model.Reservation, prev, next booking.Status, reason string) {
    _ = queue_publisher.PublishReservationEvent(ctx, queue.ReservationEvent{
        EventID:       uuid.NewString(),
        ReservationID: res.ID,
        ListingID:     res.ListingID,
        GuestID:       res.GuestID,
        HostID:        res.HostID,
        PrevStatus:    string(prev),
        NewStatus:     string(next),
        Reason:        reason,
        OccurredAt:    time.Now().UTC().Format(time.RFC3339),
    })
}

// apply runs fn inside a transaction with the usual
// commit-or-rollback discipline.
func (s *Service) apply(ctx context.Context, fn func(tx *sql.Tx) error) error {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := fn(tx); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// Approve records host approval on a WAITING reservation and, when
// the payment collaborator has already confirmed funds, completes
// the WAITING -> RESERVED transition in the same breath.  The
// returned reservation reflects the committed state.  Authorization
// (the actor co-owns the listing) is the caller's concern.
func (s *Service) Approve(ctx context.Context, reservationID, actorID uint64) (model.Reservation, error) {
    var res model.Reservation
    var confirmed bool
    err := s.apply(ctx, func(tx *sql.Tx) error {
        var err error
        res, err = s.reservations.GetByIDTx(ctx, tx, reservationID)
        if err != nil {
            return err
        }
        status := booking.Status(res.Status)
        if err := booking.Transition(status, booking.StatusReserved); err != nil {
            return err
        }
        if err := s.reservations.SetHostApprovedTx(ctx, tx, res.ID); err != nil {
            return err
        }
        res.HostApproved = true
        switch err := booking.Confirm(status, true, booking.PaymentStatus(res.PaymentStatus)); err {
        case nil:
            if err := s.reservations.UpdateStatusTx(ctx, tx, res.ID, string(booking.StatusWaiting), string(booking.StatusReserved)); err != nil {
                return err
            }
            if err := s.transitions.AppendTx(ctx, tx, model.ReservationTransition{
                ReservationID: res.ID,
                PrevStatus:    string(booking.StatusWaiting),
                NewStatus:     string(booking.StatusReserved),
                ActorID:       actorID,
            }); err != nil {
                return err
            }
            res.Status = string(booking.StatusReserved)
            confirmed = true
            return nil
        case booking.ErrNotReady:
            // Approval recorded; the payment event completes the move later.
            return nil
        default:
            return err
        }
    })
    if err != nil {
        return model.Reservation{}, err
    }
    if confirmed {
        announce(ctx, res, booking.StatusWaiting, booking.StatusReserved, "")
    }
    return res, nil
}

// Refuse moves a WAITING reservation to REFUSED, whether by host
// rejection, guest cancellation, payment failure or the timeout
// sweep.  Any prior funds hold is released: the payment status is
// marked RELEASED and a release-hold command goes to the payment
// collaborator after commit.
func (s *Service) Refuse(ctx context.Context, reservationID, actorID uint64, reason string) (model.Reservation, error) {
    var res model.Reservation
    var hadFunds bool
    err := s.apply(ctx, func(tx *sql.Tx) error {
        var err error
        res, err = s.reservations.GetByIDTx(ctx, tx, reservationID)
        if err != nil {
            return err
        }
        if err := booking.Transition(booking.Status(res.Status), booking.StatusRefused); err != nil {
            return err
        }
        if err := s.reservations.UpdateStatusTx(ctx, tx, res.ID, string(booking.StatusWaiting), string(booking.StatusRefused)); err != nil {
            return err
        }
        payment := booking.PaymentStatus(res.PaymentStatus)
        hadFunds = payment == booking.PaymentHeld || payment == booking.PaymentConfirmed
        if hadFunds {
            if err := s.reservations.SetPaymentStatusTx(ctx, tx, res.ID, string(booking.PaymentReleased)); err != nil {
                return err
            }
            res.PaymentStatus = string(booking.PaymentReleased)
        }
        if err := s.transitions.AppendTx(ctx, tx, model.ReservationTransition{
            ReservationID: res.ID,
            PrevStatus:    string(booking.StatusWaiting),
            NewStatus:     string(booking.StatusRefused),
            ActorID:       actorID,
            Reason:        reason,
        }); err != nil {
            return err
        }
        res.Status = string(booking.StatusRefused)
        return nil
    })
    if err != nil {
        return model.Reservation{}, err
    }
    if hadFunds {
        _ = queue_publisher.PublishReleaseHold(ctx, queue.ReleaseHoldCommand{
            CommandID:     uuid.NewString(),
            ReservationID: res.ID,
            Reason:        reason,
            IssuedAt:      time.Now().UTC().Format(time.RFC3339),
        })
    }
    announce(ctx, res, booking.StatusWaiting, booking.StatusRefused, reason)
    return res, nil
}

// Checkin marks guest arrival.  Fails with booking.ErrTooEarly
// before the arrival date and with the usual transition errors
// otherwise.
func (s *Service) Checkin(ctx context.Context, reservationID, actorID uint64, now time.Time) (model.Reservation, error) {
    var res model.Reservation
    err := s.apply(ctx, func(tx *sql.Tx) error {
        var err error
        res, err = s.reservations.GetByIDTx(ctx, tx, reservationID)
        if err != nil {
            return err
        }
        if err := booking.Checkin(booking.Status(res.Status), res.ArrivalDate, now); err != nil {
            return err
        }
        if err := s.reservations.UpdateStatusTx(ctx, tx, res.ID, string(booking.StatusReserved), string(booking.StatusCheckin)); err != nil {
            return err
        }
        if err := s.transitions.AppendTx(ctx, tx, model.ReservationTransition{
            ReservationID: res.ID,
            PrevStatus:    string(booking.StatusReserved),
            NewStatus:     string(booking.StatusCheckin),
            ActorID:       actorID,
        }); err != nil {
            return err
        }
        res.Status = string(booking.StatusCheckin)
        return nil
    })
    if err != nil {
        return model.Reservation{}, err
    }
    announce(ctx, res, booking.StatusReserved, booking.StatusCheckin, "")
    return res, nil
}

// Checkout marks departure and credits the host receivable to the
// settlement ledger exactly once.  The CAS transition and the
// unique ledger key together make a second checkout attempt fail
// instead of double-crediting; the sweep and a host both calling
// this concurrently is the expected race, not an anomaly.
func (s *Service) Checkout(ctx context.Context, reservationID, actorID uint64, now time.Time) (model.Reservation, error) {
    var res model.Reservation
    err := s.apply(ctx, func(tx *sql.Tx) error {
        var err error
        res, err = s.reservations.GetByIDTx(ctx, tx, reservationID)
        if err != nil {
            return err
        }
        if err := booking.Checkout(booking.Status(res.Status), res.DepartureDate, now); err != nil {
            return err
        }
        if err := s.reservations.UpdateStatusTx(ctx, tx, res.ID, string(booking.StatusCheckin), string(booking.StatusCheckout)); err != nil {
            return err
        }
        if err := s.ledger.CreditTx(ctx, tx, res.ID, res.HostID, res.HostReceivable); err != nil {
            return err
        }
        if err := s.transitions.AppendTx(ctx, tx, model.ReservationTransition{
            ReservationID: res.ID,
            PrevStatus:    string(booking.StatusCheckin),
            NewStatus:     string(booking.StatusCheckout),
            ActorID:       actorID,
        }); err != nil {
            return err
        }
        res.Status = string(booking.StatusCheckout)
        return nil
    })
    if err != nil {
        return model.Reservation{}, err
    }
    announce(ctx, res, booking.StatusCheckin, booking.StatusCheckout, "")
    return res, nil
}

// ApplyPayment feeds one event from the payment collaborator into
// the state machine.  A confirmation on an approved WAITING
// reservation completes the move to RESERVED; a failure refuses it.
// A confirmation arriving after the reservation was refused releases
// the captured funds back to the guest.  Duplicates and stragglers
// in other states are recorded and otherwise harmless.
func (s *Service) ApplyPayment(ctx context.Context, ev queue.PaymentEvent) error {
    switch ev.Type {
    case queue.PaymentConfirmedType:
        return s.applyPaymentConfirmed(ctx, ev)
    case queue.PaymentFailedType:
        return s.applyPaymentFailed(ctx, ev)
    default:
        log.Printf("lifecycle: ignoring unknown payment event type %q", ev.Type)
        return nil
    }
}

func (s *Service) applyPaymentConfirmed(ctx context.Context, ev queue.PaymentEvent) error {
    var res model.Reservation
    var confirmed, released bool
    err := s.apply(ctx, func(tx *sql.Tx) error {
        var err error
        res, err = s.reservations.GetByIDTx(ctx, tx, ev.ReservationID)
        if err != nil {
            return err
        }
        next, release, ok := booking.ReceiveConfirmation(booking.Status(res.Status), booking.PaymentStatus(res.PaymentStatus))
        if !ok {
            // Duplicate or straggler; the recorded payment state stands.
            return nil
        }
        if err := s.reservations.SetPaymentStatusTx(ctx, tx, res.ID, string(next)); err != nil {
            return err
        }
        res.PaymentStatus = string(next)
        if release {
            // The confirmation lost the race against a refusal; the
            // funds go back to the guest after commit.
            released = true
            return nil
        }
        switch err := booking.Confirm(booking.Status(res.Status), res.HostApproved, booking.PaymentConfirmed); err {
        case nil:
            if err := s.reservations.UpdateStatusTx(ctx, tx, res.ID, string(booking.StatusWaiting), string(booking.StatusReserved)); err != nil {
                return err
            }
            if err := s.transitions.AppendTx(ctx, tx, model.ReservationTransition{
                ReservationID: res.ID,
                PrevStatus:    string(booking.StatusWaiting),
                NewStatus:     string(booking.StatusReserved),
                Reason:        "payment confirmed",
            }); err != nil {
                return err
            }
            res.Status = string(booking.StatusReserved)
            confirmed = true
            return nil
        case booking.ErrNotReady:
            // Paid but not yet approved; approval completes the move.
            return nil
        case booking.ErrIllegalTransition:
            // Already past WAITING; the capture is recorded, nothing moves.
            return nil
        default:
            return err
        }
    })
    if err != nil {
        return err
    }
    if released {
        _ = queue_publisher.PublishReleaseHold(ctx, queue.ReleaseHoldCommand{
            CommandID:     uuid.NewString(),
            ReservationID: res.ID,
            Reason:        "payment confirmed after refusal",
            IssuedAt:      time.Now().UTC().Format(time.RFC3339),
        })
    }
    if confirmed {
        announce(ctx, res, booking.StatusWaiting, booking.StatusReserved, "payment confirmed")
    }
    return nil
}

func (s *Service) applyPaymentFailed(ctx context.Context, ev queue.PaymentEvent) error {
    res, err := s.reservations.GetByID(ctx, ev.ReservationID)
    if err != nil {
        return err
    }
    // Record the failure before refusing so the refusal path sees
    // FAILED and does not issue a release for funds never held.
    if err := s.markPaymentFailed(ctx, res.ID); err != nil {
        return err
    }
    if booking.Status(res.Status) != booking.StatusWaiting {
        // Already decided; nothing to refuse.
        return nil
    }
    if _, err := s.Refuse(ctx, res.ID, 0, "payment failed"); err != nil {
        if err == repository.ErrStale || err == booking.ErrIllegalTransition {
            // A concurrent actor decided the reservation first.
            return nil
        }
        return err
    }
    return nil
}

func (s *Service) markPaymentFailed(ctx context.Context, id uint64) error {
    return s.apply(ctx, func(tx *sql.Tx) error {
        return s.reservations.SetPaymentStatusTx(ctx, tx, id, string(booking.PaymentFailed))
    })
}
