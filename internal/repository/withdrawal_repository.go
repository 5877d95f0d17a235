package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/novastay/booking-settlement/internal/model"
)

// ErrWithdrawalNotFound is returned when no withdrawal request
// exists for the requested identifier.
var ErrWithdrawalNotFound = errors.New("withdrawal request not found")

// WithdrawalRepo provides data access to withdrawal_requests.
// Creation always happens inside the per-host settlement
// transaction (host row locked, balance recomputed fresh) and admin
// review moves requests through CAS status updates just like
// reservations.
type WithdrawalRepo struct {
    db *sql.DB
}

// NewWithdrawalRepo returns a new WithdrawalRepo bound to the given database.
func NewWithdrawalRepo(db *sql.DB) *WithdrawalRepo { return &WithdrawalRepo{db: db} }

// DB exposes the underlying handle for transaction control.
func (r *WithdrawalRepo) DB() *sql.DB { return r.db }

const withdrawalColumns = `id, reference, host_id, amount, tier, balance_snapshot, status,
       payment_method, method_verified, created_at, updated_at`

func scanWithdrawal(row interface{ Scan(...any) error }) (model.WithdrawalRequest, error) {
    var m model.WithdrawalRequest
    err := row.Scan(&m.ID, &m.Reference, &m.HostID, &m.Amount, &m.Tier, &m.BalanceSnapshot,
        &m.Status, &m.PaymentMethod, &m.MethodVerified, &m.CreatedAt, &m.UpdatedAt)
    return m, err
}

// CreateTx inserts a withdrawal request within the settlement
// transaction and writes the generated ID back.
func (r *WithdrawalRepo) CreateTx(ctx context.Context, tx *sql.Tx, m *model.WithdrawalRequest) error {
    res, err := tx.ExecContext(ctx,
        `INSERT INTO withdrawal_requests
           (reference, host_id, amount, tier, balance_snapshot, status, payment_method, method_verified)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
        m.Reference, m.HostID, m.Amount, m.Tier, m.BalanceSnapshot, m.Status, m.PaymentMethod, m.MethodVerified)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    m.ID = uint64(id)
    return nil
}

// GetByID loads a withdrawal request by id.
func (r *WithdrawalRepo) GetByID(ctx context.Context, id uint64) (model.WithdrawalRequest, error) {
    m, err := scanWithdrawal(r.db.QueryRowContext(ctx,
        `SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE id = ?`, id))
    if err == sql.ErrNoRows {
        return model.WithdrawalRequest{}, ErrWithdrawalNotFound
    }
    return m, err
}

// GetByIDTx is GetByID inside an existing transaction.
func (r *WithdrawalRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.WithdrawalRequest, error) {
    m, err := scanWithdrawal(tx.QueryRowContext(ctx,
        `SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE id = ?`, id))
    if err == sql.ErrNoRows {
        return model.WithdrawalRequest{}, ErrWithdrawalNotFound
    }
    return m, err
}

// UpdateStatusTx performs the compare-and-swap status transition on
// a withdrawal request.  Zero affected rows means a concurrent
// admin action got there first.
func (r *WithdrawalRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to string) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE withdrawal_requests SET status = ? WHERE id = ? AND status = ?`,
        to, id, from)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrStale
    }
    return nil
}

// ListByHostTx returns all of a host's withdrawal requests inside
// the settlement transaction; the balance computation filters them
// by fund-holding status itself.
func (r *WithdrawalRepo) ListByHostTx(ctx context.Context, tx *sql.Tx, hostID uint64) ([]model.WithdrawalRequest, error) {
    rows, err := tx.QueryContext(ctx,
        `SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE host_id = ? ORDER BY created_at DESC`, hostID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectWithdrawals(rows)
}

// ListByHost returns all of a host's withdrawal requests, newest first.
func (r *WithdrawalRepo) ListByHost(ctx context.Context, hostID uint64) ([]model.WithdrawalRequest, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE host_id = ? ORDER BY created_at DESC`, hostID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectWithdrawals(rows)
}

// HasVerifiedMethodTx reports whether the host already completed a
// payout through the same payment method.  A method with at least
// one COMPLETED withdrawal is considered verified; anything else
// must pass admin account validation first.
func (r *WithdrawalRepo) HasVerifiedMethodTx(ctx context.Context, tx *sql.Tx, hostID uint64, method string) (bool, error) {
    var one int
    err := tx.QueryRowContext(ctx,
        `SELECT 1 FROM withdrawal_requests
         WHERE host_id = ? AND payment_method = ? AND status = 'COMPLETED' LIMIT 1`,
        hostID, method).Scan(&one)
    if err == sql.ErrNoRows {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// ListByStatus returns requests in one status, oldest first, for
// the admin review queue.  An empty status returns everything.
func (r *WithdrawalRepo) ListByStatus(ctx context.Context, status string) ([]model.WithdrawalRequest, error) {
    query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests`
    args := []any{}
    if status != "" {
        query += ` WHERE status = ?`
        args = append(args, status)
    }
    query += ` ORDER BY created_at`
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectWithdrawals(rows)
}

func collectWithdrawals(rows *sql.Rows) ([]model.WithdrawalRequest, error) {
    out := make([]model.WithdrawalRequest, 0)
    for rows.Next() {
        m, err := scanWithdrawal(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, m)
    }
    return out, rows.Err()
}
