// Package sweep runs the background jobs that nudge reservations
// forward when no human actor does: refusing WAITING requests whose
// payment window expired and checking out stays past their departure
// date.  Both jobs go through the lifecycle service, so a sweep and
// a concurrent HTTP request racing on the same reservation resolve
// through the compare-and-swap update; losing the race is the
// normal outcome for one of them.
package sweep

import (
    "context"
    "log"
    "time"

    "github.com/novastay/booking-settlement/internal/booking"
    "github.com/novastay/booking-settlement/internal/lifecycle"
    "github.com/novastay/booking-settlement/internal/repository"
)

// StartPaymentTimeout refuses WAITING reservations created more
// than timeout ago.  It ticks every interval until ctx is done.
// Run it in its own goroutine.
func StartPaymentTimeout(ctx context.Context, svc *lifecycle.Service, reservations *repository.ReservationRepo, timeout, interval time.Duration) {
    log.Printf("sweep: payment timeout started (timeout=%s interval=%s)", timeout, interval)
    ticker := time.NewTicker(interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            log.Println("sweep: payment timeout stopped")
            return
        case <-ticker.C:
            sweepPaymentTimeout(ctx, svc, reservations, timeout)
        }
    }
}

func sweepPaymentTimeout(ctx context.Context, svc *lifecycle.Service, reservations *repository.ReservationRepo, timeout time.Duration) {
    cutoff := time.Now().UTC().Add(-timeout)
    ids, err := reservations.ListWaitingBefore(ctx, cutoff)
    if err != nil {
        log.Printf("sweep: listing expired waiting reservations: %v", err)
        return
    }
    for _, id := range ids {
        if _, err := svc.Refuse(ctx, id, 0, "payment window expired"); err != nil {
            // ErrStale: someone beat the sweep to it; not a problem.
            if err == repository.ErrStale || err == booking.ErrIllegalTransition {
                continue
            }
            log.Printf("sweep: refusing reservation %d: %v", id, err)
        }
    }
}

// StartAutoCheckout completes CHECKIN reservations whose departure
// date has passed, crediting the host ledger for each.  It ticks
// every interval until ctx is done.
func StartAutoCheckout(ctx context.Context, svc *lifecycle.Service, reservations *repository.ReservationRepo, interval time.Duration) {
    log.Printf("sweep: auto checkout started (interval=%s)", interval)
    ticker := time.NewTicker(interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            log.Println("sweep: auto checkout stopped")
            return
        case <-ticker.C:
            sweepAutoCheckout(ctx, svc, reservations)
        }
    }
}

// StartBlockCleanup deletes blocked ranges whose end date has
// passed.  Availability checks ignore them anyway; this keeps the
// table from growing without bound.  It ticks every interval until
// ctx is done.
func StartBlockCleanup(ctx context.Context, blocked *repository.BlockedRangeRepo, interval time.Duration) {
    log.Printf("sweep: block cleanup started (interval=%s)", interval)
    ticker := time.NewTicker(interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            log.Println("sweep: block cleanup stopped")
            return
        case <-ticker.C:
            n, err := blocked.DeleteExpired(ctx, time.Now().UTC())
            if err != nil {
                log.Printf("sweep: deleting expired blocked ranges: %v", err)
                continue
            }
            if n > 0 {
                log.Printf("sweep: deleted %d expired blocked ranges", n)
            }
        }
    }
}

func sweepAutoCheckout(ctx context.Context, svc *lifecycle.Service, reservations *repository.ReservationRepo) {
    now := time.Now().UTC()
    ids, err := reservations.ListDueCheckout(ctx, now)
    if err != nil {
        log.Printf("sweep: listing due checkouts: %v", err)
        return
    }
    for _, id := range ids {
        if _, err := svc.Checkout(ctx, id, 0, now); err != nil {
            if err == repository.ErrStale || err == booking.ErrIllegalTransition {
                continue
            }
            log.Printf("sweep: checking out reservation %d: %v", id, err)
        }
    }
}
