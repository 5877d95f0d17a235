package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/shopspring/decimal"

    "github.com/novastay/booking-settlement/internal/model"
)

// LedgerRepo writes the exactly-once settlement credits recorded
// when a reservation reaches CHECKOUT.  The ledger_entries table
// carries a UNIQUE key on reservation_id; a duplicate insert maps
// to ErrAlreadyCredited so the same stay can never pay the host
// twice even if two checkout attempts race past the CAS.
type LedgerRepo struct {
    db *sql.DB
}

// NewLedgerRepo returns a new LedgerRepo bound to the given database.
func NewLedgerRepo(db *sql.DB) *LedgerRepo { return &LedgerRepo{db: db} }

// CreditTx records the host receivable of a checked-out reservation
// within the checkout transaction.
func (r *LedgerRepo) CreditTx(ctx context.Context, tx *sql.Tx, reservationID, hostID uint64, amount decimal.Decimal) error {
    _, err := tx.ExecContext(ctx,
        `INSERT INTO ledger_entries (reservation_id, host_id, amount) VALUES (?, ?, ?)`,
        reservationID, hostID, amount)
    if err != nil {
        // MySQL duplicate-key error 1062 on the reservation_id unique key.
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return ErrAlreadyCredited
        }
        return err
    }
    return nil
}

// ListByHost returns a host's settlement credits, newest first.
func (r *LedgerRepo) ListByHost(ctx context.Context, hostID uint64) ([]model.LedgerEntry, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, reservation_id, host_id, amount, created_at
         FROM ledger_entries WHERE host_id = ? ORDER BY created_at DESC`, hostID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.LedgerEntry, 0)
    for rows.Next() {
        var e model.LedgerEntry
        if err := rows.Scan(&e.ID, &e.ReservationID, &e.HostID, &e.Amount, &e.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, e)
    }
    return out, rows.Err()
}
