// Package settlement implements the ledger side of the core: the
// tiered withdrawal balance computation and the withdrawal request
// state machine.  Like package booking it is pure; repositories
// fetch the host's reservations and withdrawal requests and feed
// them in, and the atomic compute-validate-insert unit lives in the
// handler's transaction.
package settlement

import (
    "errors"

    "github.com/shopspring/decimal"

    "github.com/novastay/booking-settlement/internal/booking"
    "github.com/novastay/booking-settlement/internal/model"
)

// ErrInsufficientBalance is returned when a withdrawal request
// exceeds the tier-appropriate maximum computed fresh from the
// ledger.  The host must lower the amount.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrUnknownTier is returned for a tier value other than PARTIAL_50
// or FULL_100.
var ErrUnknownTier = errors.New("unknown withdrawal tier")

// ErrNonPositiveAmount rejects zero or negative withdrawal amounts.
var ErrNonPositiveAmount = errors.New("withdrawal amount must be positive")

// Withdrawal tiers.  PARTIAL_50 lets a host draw up to half of the
// receivables whose reservations have reached RESERVED (funds
// committed); FULL_100 is limited to stays fully delivered
// (CHECKOUT).
const (
    TierPartial50 = "PARTIAL_50"
    TierFull100   = "FULL_100"
)

var half = decimal.NewFromFloat(0.5)

// Balance is a host's settlement position at one point in time.
//
// TotalReceivable is the gross sum of host receivables over
// reservations at or past RESERVED.  DeliveredReceivable restricts
// that to CHECKOUT.  WithdrawalsHeld is everything already tied up
// in the host's withdrawal requests, counting non-terminal requests
// (PENDING, ACCOUNT_VALIDATION, PROCESSING) and already-paid ones
// (COMPLETED); REJECTED requests release their funds.  The two
// Available figures are the per-tier maxima after subtracting the
// held amount, floored at zero.
type Balance struct {
    TotalReceivable     decimal.Decimal `json:"total_receivable"`
    DeliveredReceivable decimal.Decimal `json:"delivered_receivable"`
    WithdrawalsHeld     decimal.Decimal `json:"withdrawals_held"`
    Available50         decimal.Decimal `json:"amount_available_50"`
    Available100        decimal.Decimal `json:"amount_available_100"`
}

// Compute aggregates a host's reservations and withdrawal requests
// into a Balance.  Subtracting held withdrawals from both tiers is
// the invariant that protects against double-paying funds across
// requests.
func Compute(reservations []model.Reservation, withdrawals []model.WithdrawalRequest) Balance {
    var committed, delivered decimal.Decimal
    for _, r := range reservations {
        switch booking.Status(r.Status) {
        case booking.StatusReserved, booking.StatusCheckin:
            committed = committed.Add(r.HostReceivable)
        case booking.StatusCheckout:
            committed = committed.Add(r.HostReceivable)
            delivered = delivered.Add(r.HostReceivable)
        }
    }
    var held decimal.Decimal
    for _, w := range withdrawals {
        if HoldsFunds(w.Status) {
            held = held.Add(w.Amount)
        }
    }
    return Balance{
        TotalReceivable:     committed,
        DeliveredReceivable: delivered,
        WithdrawalsHeld:     held,
        Available50:         floorZero(committed.Mul(half).Sub(held)),
        Available100:        floorZero(delivered.Sub(held)),
    }
}

// Available returns the balance figure for the given tier.
func (b Balance) Available(tier string) (decimal.Decimal, error) {
    switch tier {
    case TierPartial50:
        return b.Available50, nil
    case TierFull100:
        return b.Available100, nil
    default:
        return decimal.Decimal{}, ErrUnknownTier
    }
}

// Validate checks a requested withdrawal amount against the
// tier-appropriate maximum.  Callers must compute the balance
// fresh, inside the same serialized unit that inserts the request;
// the client-supplied snapshot is never trusted.
func Validate(amount decimal.Decimal, tier string, b Balance) error {
    if !amount.IsPositive() {
        return ErrNonPositiveAmount
    }
    max, err := b.Available(tier)
    if err != nil {
        return err
    }
    if amount.GreaterThan(max) {
        return ErrInsufficientBalance
    }
    return nil
}

func floorZero(d decimal.Decimal) decimal.Decimal {
    if d.IsNegative() {
        return decimal.Zero
    }
    return d
}
