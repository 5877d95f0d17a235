package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/novastay/booking-settlement/internal/model"
)

// BlockedRangeRepo provides data access to the blocked_ranges
// table.  Blocked ranges are owner- or admin-imposed unavailability
// windows, created and removed freely and never linked to money.
// Dates are stored as DATE columns and treated as half-open
// `[start_date, end_date)` like reservations.
type BlockedRangeRepo struct {
    db *sql.DB
}

// NewBlockedRangeRepo returns a new BlockedRangeRepo bound to the provided database.
func NewBlockedRangeRepo(db *sql.DB) *BlockedRangeRepo { return &BlockedRangeRepo{db: db} }

// Create inserts a blocked range and writes the generated ID back.
func (r *BlockedRangeRepo) Create(ctx context.Context, b *model.BlockedRange) error {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO blocked_ranges (listing_id, start_date, end_date, created_by) VALUES (?, ?, ?, ?)`,
        b.ListingID, b.StartDate.Format("2006-01-02"), b.EndDate.Format("2006-01-02"), b.CreatedBy)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    return nil
}

// Delete removes a blocked range.  It returns the listing ID of the
// deleted row so the handler can verify ownership first via
// GetByID; sql.ErrNoRows is returned when the range does not exist.
func (r *BlockedRangeRepo) Delete(ctx context.Context, id uint64) error {
    _, err := r.db.ExecContext(ctx, `DELETE FROM blocked_ranges WHERE id = ?`, id)
    return err
}

// GetByID loads a single blocked range.
func (r *BlockedRangeRepo) GetByID(ctx context.Context, id uint64) (model.BlockedRange, error) {
    var b model.BlockedRange
    err := r.db.QueryRowContext(ctx,
        `SELECT id, listing_id, start_date, end_date, created_by, created_at FROM blocked_ranges WHERE id = ?`,
        id).Scan(&b.ID, &b.ListingID, &b.StartDate, &b.EndDate, &b.CreatedBy, &b.CreatedAt)
    return b, err
}

// ListByListing returns all blocked ranges for a listing ordered by
// start date.
func (r *BlockedRangeRepo) ListByListing(ctx context.Context, listingID uint64) ([]model.BlockedRange, error) {
    return r.list(ctx, r.db.QueryContext, listingID)
}

// ListByListingTx is ListByListing inside an existing transaction,
// used by the booking conflict check while the listing lock is held.
func (r *BlockedRangeRepo) ListByListingTx(ctx context.Context, tx *sql.Tx, listingID uint64) ([]model.BlockedRange, error) {
    return r.list(ctx, tx.QueryContext, listingID)
}

type queryFunc func(ctx context.Context, query string, args ...any) (*sql.Rows, error)

func (r *BlockedRangeRepo) list(ctx context.Context, query queryFunc, listingID uint64) ([]model.BlockedRange, error) {
    rows, err := query(ctx,
        `SELECT id, listing_id, start_date, end_date, created_by, created_at
         FROM blocked_ranges WHERE listing_id = ? ORDER BY start_date`, listingID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.BlockedRange, 0)
    for rows.Next() {
        var b model.BlockedRange
        if err := rows.Scan(&b.ID, &b.ListingID, &b.StartDate, &b.EndDate, &b.CreatedBy, &b.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, b)
    }
    return out, rows.Err()
}

// DeleteExpired removes blocked ranges that ended before the given
// day.  Housekeeping only; availability checks would ignore them
// anyway.
func (r *BlockedRangeRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
    res, err := r.db.ExecContext(ctx,
        `DELETE FROM blocked_ranges WHERE end_date < ?`, before.Format("2006-01-02"))
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
