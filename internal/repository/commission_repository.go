package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/novastay/booking-settlement/internal/model"
)

// ErrNoCommissionRule is returned when no active rule resolves for
// a listing category.  Bookings cannot be quoted without a rule, so
// handlers surface this as a configuration error to admins, not to
// guests.
var ErrNoCommissionRule = errors.New("no active commission rule")

// CommissionRuleRepo manages commission rules and resolves the one
// active rule applying to a listing category.  Resolution order:
// category-scoped rules win over the global rule, and within one
// scope the most recently activated rule wins.
type CommissionRuleRepo struct {
    db *sql.DB
}

// NewCommissionRuleRepo returns a new CommissionRuleRepo bound to the given database.
func NewCommissionRuleRepo(db *sql.DB) *CommissionRuleRepo { return &CommissionRuleRepo{db: db} }

// Create inserts an active rule and writes the generated ID back.
func (r *CommissionRuleRepo) Create(ctx context.Context, m *model.CommissionRule) error {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO commission_rules
           (scope, host_rate, host_fixed, client_rate, client_fixed, active, activated_at)
         VALUES (?, ?, ?, ?, ?, 1, UTC_TIMESTAMP())`,
        m.Scope, m.HostRate, m.HostFixed, m.ClientRate, m.ClientFixed)
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

// Deactivate turns a rule off.  Rules are never deleted so old
// quotes stay explainable.
func (r *CommissionRuleRepo) Deactivate(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE commission_rules SET active = 0 WHERE id = ? AND active = 1`, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return sql.ErrNoRows
    }
    return nil
}

const commissionColumns = `id, scope, host_rate, host_fixed, client_rate, client_fixed, active, activated_at, created_at`

func scanCommissionRule(row interface{ Scan(...any) error }) (model.CommissionRule, error) {
    var m model.CommissionRule
    err := row.Scan(&m.ID, &m.Scope, &m.HostRate, &m.HostFixed, &m.ClientRate, &m.ClientFixed,
        &m.Active, &m.ActivatedAt, &m.CreatedAt)
    return m, err
}

// ResolveForCategory returns the single active rule applying to a
// listing category, ErrNoCommissionRule when nothing resolves.
func (r *CommissionRuleRepo) ResolveForCategory(ctx context.Context, category string) (model.CommissionRule, error) {
    m, err := scanCommissionRule(r.db.QueryRowContext(ctx,
        `SELECT `+commissionColumns+` FROM commission_rules
         WHERE active = 1 AND scope IN (?, ?)
         ORDER BY scope = ? DESC, activated_at DESC, id DESC
         LIMIT 1`,
        category, model.CommissionRuleScopeGlobal, category))
    if err == sql.ErrNoRows {
        return model.CommissionRule{}, ErrNoCommissionRule
    }
    return m, err
}

// ResolveForCategoryTx is ResolveForCategory inside a transaction,
// used on the booking path so the quote and the insert see one
// consistent rule.
func (r *CommissionRuleRepo) ResolveForCategoryTx(ctx context.Context, tx *sql.Tx, category string) (model.CommissionRule, error) {
    m, err := scanCommissionRule(tx.QueryRowContext(ctx,
        `SELECT `+commissionColumns+` FROM commission_rules
         WHERE active = 1 AND scope IN (?, ?)
         ORDER BY scope = ? DESC, activated_at DESC, id DESC
         LIMIT 1`,
        category, model.CommissionRuleScopeGlobal, category))
    if err == sql.ErrNoRows {
        return model.CommissionRule{}, ErrNoCommissionRule
    }
    return m, err
}

// List returns every rule, newest first, for the admin UI.
func (r *CommissionRuleRepo) List(ctx context.Context) ([]model.CommissionRule, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+commissionColumns+` FROM commission_rules ORDER BY created_at DESC`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.CommissionRule, 0)
    for rows.Next() {
        m, err := scanCommissionRule(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, m)
    }
    return out, rows.Err()
}
