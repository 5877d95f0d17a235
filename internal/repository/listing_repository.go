package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/shopspring/decimal"

    "github.com/novastay/booking-settlement/internal/model"
)

// ErrListingNotFound is returned when no listing exists for the
// requested identifier, or when it is archived and the operation
// requires an active listing.
var ErrListingNotFound = errors.New("listing not found")

// ListingRepo provides CRUD operations for listings and their
// ownership links.  Listings are soft-archived rather than
// deleted: reservations keep referencing them forever, so a hard
// delete is never issued.
type ListingRepo struct {
    db *sql.DB
}

// NewListingRepo returns a new ListingRepo bound to the given database.
func NewListingRepo(db *sql.DB) *ListingRepo { return &ListingRepo{db: db} }

// DB exposes the underlying handle so handlers can open
// transactions spanning multiple repositories.
func (r *ListingRepo) DB() *sql.DB { return r.db }

// Create inserts a listing and its first ownership row in one
// transaction.  The generated ID is written back to l.
func (r *ListingRepo) Create(ctx context.Context, l *model.Listing, hostID uint64) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    res, err := tx.ExecContext(ctx,
        `INSERT INTO listings (name, category, base_price, currency) VALUES (?, ?, ?, ?)`,
        l.Name, l.Category, l.BasePrice, l.Currency)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    l.ID = uint64(id)
    if _, err := tx.ExecContext(ctx,
        `INSERT INTO listing_owners (listing_id, host_id) VALUES (?, ?)`,
        l.ID, hostID); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// GetByID loads a listing by id.  Archived listings are returned as
// well; callers that must reject them check the Archived flag.
func (r *ListingRepo) GetByID(ctx context.Context, id uint64) (model.Listing, error) {
    var l model.Listing
    err := r.db.QueryRowContext(ctx,
        `SELECT id, name, category, base_price, currency, archived, created_at, updated_at
         FROM listings WHERE id = ?`, id).
        Scan(&l.ID, &l.Name, &l.Category, &l.BasePrice, &l.Currency, &l.Archived, &l.CreatedAt, &l.UpdatedAt)
    if err == sql.ErrNoRows {
        return model.Listing{}, ErrListingNotFound
    }
    return l, err
}

// GetByIDTx is GetByID inside an existing transaction.
func (r *ListingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Listing, error) {
    var l model.Listing
    err := tx.QueryRowContext(ctx,
        `SELECT id, name, category, base_price, currency, archived, created_at, updated_at
         FROM listings WHERE id = ?`, id).
        Scan(&l.ID, &l.Name, &l.Category, &l.BasePrice, &l.Currency, &l.Archived, &l.CreatedAt, &l.UpdatedAt)
    if err == sql.ErrNoRows {
        return model.Listing{}, ErrListingNotFound
    }
    return l, err
}

// LockTx takes a row lock on the listing inside the given
// transaction.  This is the per-listing serialization token for the
// check-then-insert booking sequence: while the lock is held no
// second reservation can slip in between another request's conflict
// check and insert.
func (r *ListingRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) error {
    var locked uint64
    err := tx.QueryRowContext(ctx, `SELECT id FROM listings WHERE id = ? FOR UPDATE`, id).Scan(&locked)
    if err == sql.ErrNoRows {
        return ErrListingNotFound
    }
    return err
}

// Update applies owner/admin edits to a listing.  Base price
// changes only affect future quotes; existing reservations keep the
// totals fixed at their quote time.
func (r *ListingRepo) Update(ctx context.Context, id uint64, name, category string, basePrice decimal.Decimal, currency string) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE listings SET name = ?, category = ?, base_price = ?, currency = ? WHERE id = ? AND archived = 0`,
        name, category, basePrice, currency, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrListingNotFound
    }
    return nil
}

// Archive soft-deletes a listing.  The row survives so existing
// reservations keep a valid reference; only new bookings stop.
func (r *ListingRepo) Archive(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx, `UPDATE listings SET archived = 1 WHERE id = ? AND archived = 0`, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrListingNotFound
    }
    return nil
}

// IsOwner reports whether hostID co-owns the listing.
func (r *ListingRepo) IsOwner(ctx context.Context, listingID, hostID uint64) (bool, error) {
    var one int
    err := r.db.QueryRowContext(ctx,
        `SELECT 1 FROM listing_owners WHERE listing_id = ? AND host_id = ? LIMIT 1`,
        listingID, hostID).Scan(&one)
    if err == sql.ErrNoRows {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// AddOwner grants co-ownership of a listing to another host.  A
// grant that already exists returns ErrConflict.
func (r *ListingRepo) AddOwner(ctx context.Context, listingID, hostID uint64) error {
    res, err := r.db.ExecContext(ctx,
        `INSERT IGNORE INTO listing_owners (listing_id, host_id) VALUES (?, ?)`,
        listingID, hostID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrConflict
    }
    return nil
}

// Owners returns the host IDs co-owning a listing, oldest grant first.
func (r *ListingRepo) Owners(ctx context.Context, listingID uint64) ([]uint64, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT host_id FROM listing_owners WHERE listing_id = ? ORDER BY created_at, host_id`, listingID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var ids []uint64
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            return nil, err
        }
        ids = append(ids, id)
    }
    return ids, rows.Err()
}

// FirstOwnerTx returns the earliest-granted owner of a listing
// within a transaction.  This is the host credited on settlement
// when a booking is created.
func (r *ListingRepo) FirstOwnerTx(ctx context.Context, tx *sql.Tx, listingID uint64) (uint64, error) {
    var id uint64
    err := tx.QueryRowContext(ctx,
        `SELECT host_id FROM listing_owners WHERE listing_id = ? ORDER BY created_at, host_id LIMIT 1`,
        listingID).Scan(&id)
    if err == sql.ErrNoRows {
        return 0, ErrListingNotFound
    }
    return id, err
}

// ListByOwner returns all listings the host co-owns, newest first.
func (r *ListingRepo) ListByOwner(ctx context.Context, hostID uint64) ([]model.Listing, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT l.id, l.name, l.category, l.base_price, l.currency, l.archived, l.created_at, l.updated_at
         FROM listings l
         JOIN listing_owners lo ON lo.listing_id = l.id
         WHERE lo.host_id = ?
         ORDER BY l.created_at DESC`, hostID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Listing, 0)
    for rows.Next() {
        var l model.Listing
        if err := rows.Scan(&l.ID, &l.Name, &l.Category, &l.BasePrice, &l.Currency, &l.Archived, &l.CreatedAt, &l.UpdatedAt); err != nil {
            return nil, err
        }
        out = append(out, l)
    }
    return out, rows.Err()
}
