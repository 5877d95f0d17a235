package repository

import (
    "context"
    "database/sql"

    "github.com/novastay/booking-settlement/internal/model"
)

// TransitionRepo writes and reads the append-only audit log of
// reservation state changes.  Rows are never updated or deleted;
// AppendTx shares the transaction of the transition it records so
// the audit entry and the status change commit or roll back
// together.
type TransitionRepo struct {
    db *sql.DB
}

// NewTransitionRepo returns a new TransitionRepo bound to the given database.
func NewTransitionRepo(db *sql.DB) *TransitionRepo { return &TransitionRepo{db: db} }

// AppendTx records one transition within an existing transaction.
func (r *TransitionRepo) AppendTx(ctx context.Context, tx *sql.Tx, t model.ReservationTransition) error {
    _, err := tx.ExecContext(ctx,
        `INSERT INTO reservation_transitions (reservation_id, prev_status, new_status, actor_id, reason)
         VALUES (?, ?, ?, ?, ?)`,
        t.ReservationID, t.PrevStatus, t.NewStatus, t.ActorID, t.Reason)
    return err
}

// ListByReservation returns the full audit trail of a reservation,
// oldest entry first.
func (r *TransitionRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.ReservationTransition, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, reservation_id, prev_status, new_status, actor_id, reason, created_at
         FROM reservation_transitions WHERE reservation_id = ? ORDER BY id`, reservationID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.ReservationTransition, 0)
    for rows.Next() {
        var t model.ReservationTransition
        if err := rows.Scan(&t.ID, &t.ReservationID, &t.PrevStatus, &t.NewStatus, &t.ActorID, &t.Reason, &t.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, t)
    }
    return out, rows.Err()
}
