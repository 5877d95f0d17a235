package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/novastay/booking-settlement/internal/model"
)

// ErrReservationNotFound is returned when no reservation exists for
// the requested identifier.
var ErrReservationNotFound = errors.New("reservation not found")

// ReservationRepo provides CRUD operations for reservations.  Rows
// are created in WAITING and only ever mutated through conditional
// status updates, so every state-machine transition is a
// compare-and-swap on the current status: zero affected rows means
// a concurrent actor or sweep already moved the reservation and the
// caller gets ErrStale.  All timestamp fields are stored in UTC.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for transaction control.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationColumns = `id, listing_id, guest_id, host_id, headcount, arrival_date, departure_date,
       status, payment_status, host_approved, guest_total, host_receivable, created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }) (model.Reservation, error) {
    var m model.Reservation
    err := row.Scan(
        &m.ID, &m.ListingID, &m.GuestID, &m.HostID, &m.Headcount, &m.ArrivalDate, &m.DepartureDate,
        &m.Status, &m.PaymentStatus, &m.HostApproved, &m.GuestTotal, &m.HostReceivable, &m.CreatedAt, &m.UpdatedAt,
    )
    return m, err
}

// CreateTx inserts a new reservation within the scope of an
// existing transaction and populates the generated ID.  The caller
// holds the per-listing lock and has already run the conflict
// check; commit or rollback is the caller's responsibility.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, m *model.Reservation) error {
    res, err := tx.ExecContext(ctx,
        `INSERT INTO reservations
           (listing_id, guest_id, host_id, headcount, arrival_date, departure_date,
            status, payment_status, host_approved, guest_total, host_receivable)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
        m.ListingID, m.GuestID, m.HostID, m.Headcount,
        m.ArrivalDate.Format("2006-01-02"), m.DepartureDate.Format("2006-01-02"),
        m.Status, m.PaymentStatus, m.HostApproved, m.GuestTotal, m.HostReceivable)
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

// GetByID loads a reservation by id.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
    m, err := scanReservation(r.db.QueryRowContext(ctx,
        `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id))
    if err == sql.ErrNoRows {
        return model.Reservation{}, ErrReservationNotFound
    }
    return m, err
}

// GetByIDTx is GetByID inside an existing transaction.
func (r *ReservationRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Reservation, error) {
    m, err := scanReservation(tx.QueryRowContext(ctx,
        `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id))
    if err == sql.ErrNoRows {
        return model.Reservation{}, ErrReservationNotFound
    }
    return m, err
}

// OccupyingByListingTx returns the reservations that currently hold
// occupancy on a listing (RESERVED, CHECKIN).  It runs inside the
// booking transaction while the listing lock is held, so the rows
// it returns are exactly the set the conflict check must consider.
func (r *ReservationRepo) OccupyingByListingTx(ctx context.Context, tx *sql.Tx, listingID uint64) ([]model.Reservation, error) {
    rows, err := tx.QueryContext(ctx,
        `SELECT `+reservationColumns+` FROM reservations
         WHERE listing_id = ? AND status IN ('RESERVED', 'CHECKIN')`, listingID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Reservation, 0)
    for rows.Next() {
        m, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, m)
    }
    return out, rows.Err()
}

// OccupyingByListing is the lock-free variant used by the public
// availability probe.  The answer can be stale the moment it is
// produced; only the booking transaction's locked re-check is
// authoritative.
func (r *ReservationRepo) OccupyingByListing(ctx context.Context, listingID uint64) ([]model.Reservation, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+reservationColumns+` FROM reservations
         WHERE listing_id = ? AND status IN ('RESERVED', 'CHECKIN')`, listingID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Reservation, 0)
    for rows.Next() {
        m, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, m)
    }
    return out, rows.Err()
}

// UpdateStatusTx performs the compare-and-swap status transition
// `from -> to` on a reservation.  When zero rows match, the
// reservation was concurrently moved and ErrStale is returned; the
// caller should re-read and decide whether to retry or report
// IllegalTransition.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to string) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE reservations SET status = ? WHERE id = ? AND status = ?`,
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

// SetHostApprovedTx records host approval on a WAITING reservation.
// The conditional WHERE keeps approval CAS-safe like every other
// mutation: approval of an already-decided reservation is stale.
func (r *ReservationRepo) SetHostApprovedTx(ctx context.Context, tx *sql.Tx, id uint64) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE reservations SET host_approved = 1 WHERE id = ? AND status = 'WAITING'`, id)
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

// SetPaymentStatusTx advances the payment status recorded for a
// reservation.  Payment state is written by payment events and the
// refusal path (hold release), never by guests directly.
func (r *ReservationRepo) SetPaymentStatusTx(ctx context.Context, tx *sql.Tx, id uint64, payment string) error {
    _, err := tx.ExecContext(ctx,
        `UPDATE reservations SET payment_status = ? WHERE id = ?`, payment, id)
    return err
}

// ListByGuest returns all reservations created by the guest, newest
// first, with the listing name joined in for display.
func (r *ReservationRepo) ListByGuest(ctx context.Context, guestID uint64) ([]ReservationDetail, error) {
    return r.listDetails(ctx, `r.guest_id = ?`, guestID)
}

// ListByHost returns all reservations on listings the host co-owns,
// newest first.
func (r *ReservationRepo) ListByHost(ctx context.Context, hostID uint64) ([]ReservationDetail, error) {
    return r.listDetails(ctx, `r.host_id = ?`, hostID)
}

// ListByListing returns all reservations on one listing, newest first.
func (r *ReservationRepo) ListByListing(ctx context.Context, listingID uint64) ([]ReservationDetail, error) {
    return r.listDetails(ctx, `r.listing_id = ?`, listingID)
}

// ReservationDetail is a reservation joined with its listing for
// display to guests and hosts.
type ReservationDetail struct {
    ID             uint64    `json:"id"`
    ListingID      uint64    `json:"listing_id"`
    ListingName    string    `json:"listing_name"`
    GuestID        uint64    `json:"guest_id"`
    HostID         uint64    `json:"host_id"`
    Headcount      uint32    `json:"headcount"`
    ArrivalDate    string    `json:"arrival_date"`
    DepartureDate  string    `json:"departure_date"`
    Status         string    `json:"status"`
    PaymentStatus  string    `json:"payment_status"`
    GuestTotal     string    `json:"guest_total"`
    HostReceivable string    `json:"host_receivable"`
    CreatedAt      time.Time `json:"created_at"`
}

func (r *ReservationRepo) listDetails(ctx context.Context, where string, arg uint64) ([]ReservationDetail, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT r.id, r.listing_id, l.name, r.guest_id, r.host_id, r.headcount,
                r.arrival_date, r.departure_date, r.status, r.payment_status,
                r.guest_total, r.host_receivable, r.created_at
         FROM reservations r
         JOIN listings l ON l.id = r.listing_id
         WHERE `+where+`
         ORDER BY r.created_at DESC`, arg)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]ReservationDetail, 0)
    for rows.Next() {
        var d ReservationDetail
        var arrival, departure time.Time
        if err := rows.Scan(
            &d.ID, &d.ListingID, &d.ListingName, &d.GuestID, &d.HostID, &d.Headcount,
            &arrival, &departure, &d.Status, &d.PaymentStatus,
            &d.GuestTotal, &d.HostReceivable, &d.CreatedAt,
        ); err != nil {
            return nil, err
        }
        d.ArrivalDate = arrival.Format("2006-01-02")
        d.DepartureDate = departure.Format("2006-01-02")
        out = append(out, d)
    }
    return out, rows.Err()
}

// GetDetailByID returns the display row for one reservation, or
// ErrReservationNotFound.
func (r *ReservationRepo) GetDetailByID(ctx context.Context, id uint64) (ReservationDetail, error) {
    details, err := r.listDetails(ctx, `r.id = ?`, id)
    if err != nil {
        return ReservationDetail{}, err
    }
    if len(details) == 0 {
        return ReservationDetail{}, ErrReservationNotFound
    }
    return details[0], nil
}

// ListWaitingBefore returns the IDs of WAITING reservations created
// at or before the cutoff whose payment was never confirmed.  The
// payment-timeout sweep auto-refuses them; each refusal still goes
// through the normal CAS transition so a concurrent approval wins
// cleanly.
func (r *ReservationRepo) ListWaitingBefore(ctx context.Context, cutoff time.Time) ([]uint64, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id FROM reservations
         WHERE status = 'WAITING' AND payment_status <> 'CONFIRMED' AND created_at <= ?`,
        cutoff.UTC().Format("2006-01-02 15:04:05"))
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

// ListDueCheckout returns the IDs of CHECKIN reservations whose
// departure date is on or before the given day.  The checkout sweep
// completes them.
func (r *ReservationRepo) ListDueCheckout(ctx context.Context, day time.Time) ([]uint64, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id FROM reservations WHERE status = 'CHECKIN' AND departure_date <= ?`,
        day.Format("2006-01-02"))
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

// ListByHostForSettlementTx returns the host's reservations inside
// the settlement transaction.  Only the status and receivable
// matter to the balance computation, but full rows are returned for
// uniformity with the rest of the repository.
func (r *ReservationRepo) ListByHostForSettlementTx(ctx context.Context, tx *sql.Tx, hostID uint64) ([]model.Reservation, error) {
    rows, err := tx.QueryContext(ctx,
        `SELECT `+reservationColumns+` FROM reservations WHERE host_id = ?`, hostID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Reservation, 0)
    for rows.Next() {
        m, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, m)
    }
    return out, rows.Err()
}

// HasActiveForListing reports whether a listing still has
// non-terminal reservations, which blocks archiving with
// ErrConflict at the handler level.
func (r *ReservationRepo) HasActiveForListing(ctx context.Context, listingID uint64) (bool, error) {
    var one int
    err := r.db.QueryRowContext(ctx,
        `SELECT 1 FROM reservations
         WHERE listing_id = ? AND status IN ('WAITING', 'RESERVED', 'CHECKIN') LIMIT 1`,
        listingID).Scan(&one)
    if err == sql.ErrNoRows {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}
