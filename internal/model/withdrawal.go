package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// WithdrawalRequest is a host's request to pay out part of their
// settled balance.  The request stores a read-only snapshot of the
// balance it was validated against so it stays auditable even after
// later bookings change the live figure; validation itself always
// recomputes the balance fresh inside the creation transaction.
// Requests are mutated only by admin review and become immutable
// once COMPLETED.
//
// Fields:
//  ID              - primary key identifier.
//  Reference       - opaque UUID handed to the host and to the
//                    payout processor for correlation.
//  HostID          - host requesting the payout.
//  Amount          - requested amount (<= tier maximum at creation).
//  Tier            - PARTIAL_50 or FULL_100 entitlement tier.
//  BalanceSnapshot - tier-appropriate available balance at creation.
//  Status          - PENDING, ACCOUNT_VALIDATION, PROCESSING,
//                    COMPLETED or REJECTED.
//  PaymentMethod   - payout method reference (IBAN, wallet id, ...).
//  MethodVerified  - whether the payout method was verified when
//                    the request was created; unverified methods
//                    start in ACCOUNT_VALIDATION instead of PENDING.
//  CreatedAt       - creation timestamp.
//  UpdatedAt       - last update timestamp.
type WithdrawalRequest struct {
    ID              uint64          // withdrawal_requests.id
    Reference       string          // withdrawal_requests.reference
    HostID          uint64          // withdrawal_requests.host_id
    Amount          decimal.Decimal // withdrawal_requests.amount
    Tier            string          // withdrawal_requests.tier
    BalanceSnapshot decimal.Decimal // withdrawal_requests.balance_snapshot
    Status          string          // withdrawal_requests.status
    PaymentMethod   string          // withdrawal_requests.payment_method
    MethodVerified  bool            // withdrawal_requests.method_verified
    CreatedAt       time.Time       // withdrawal_requests.created_at
    UpdatedAt       time.Time       // withdrawal_requests.updated_at
}

// LedgerEntry is the exactly-once settlement credit written when a
// reservation reaches CHECKOUT.  The UNIQUE key on ReservationID is
// what makes the checkout credit idempotent: a second attempt to
// credit the same reservation violates the key and is rejected by
// the database.
//
// Fields:
//  ID            - primary key identifier.
//  ReservationID - reservation that earned the credit (unique).
//  HostID        - host the amount is owed to.
//  Amount        - host receivable credited.
//  CreatedAt     - when the credit was recorded.
type LedgerEntry struct {
    ID            uint64          // ledger_entries.id
    ReservationID uint64          // ledger_entries.reservation_id
    HostID        uint64          // ledger_entries.host_id
    Amount        decimal.Decimal // ledger_entries.amount
    CreatedAt     time.Time       // ledger_entries.created_at
}
