package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/coach-court-booking/internal/model"
)

// PricingPlanRepo provides data access to the pricing_plans table.
// Plans referenced by historical bookings are never deleted, only
// deactivated.
type PricingPlanRepo struct {
    db *sql.DB
}

// NewPricingPlanRepo returns a new PricingPlanRepo bound to the given database.
func NewPricingPlanRepo(db *sql.DB) *PricingPlanRepo { return &PricingPlanRepo{db: db} }

const planColumns = `id, owner_kind, owner_id, kind, percentage, fixed_cents,
    sessions_required, valid_from, valid_to, active, created_at, updated_at`

func scanPlan(row interface{ Scan(...interface{}) error }) (model.PricingPlan, error) {
    var p model.PricingPlan
    var ownerKind string
    var pct sql.NullFloat64
    var fixed sql.NullInt64
    var from, to sql.NullTime
    err := row.Scan(&p.ID, &ownerKind, &p.OwnerID, &p.Kind, &pct, &fixed,
        &p.SessionsRequired, &from, &to, &p.Active, &p.CreatedAt, &p.UpdatedAt)
    if err != nil {
        return p, err
    }
    p.OwnerKind = model.PlanOwnerKind(ownerKind)
    if pct.Valid {
        v := pct.Float64
        p.Percentage = &v
    }
    if fixed.Valid {
        v := fixed.Int64
        p.FixedCents = &v
    }
    if from.Valid {
        t := from.Time
        p.ValidFrom = &t
    }
    if to.Valid {
        t := to.Time
        p.ValidTo = &t
    }
    return p, nil
}

// Create inserts a pricing plan and populates its generated ID.  Shape
// validation (percentage XOR fixed, seasonal range) happens in the
// handler before this call.
func (r *PricingPlanRepo) Create(ctx context.Context, p *model.PricingPlan) error {
    const q = `INSERT INTO pricing_plans
        (owner_kind, owner_id, kind, percentage, fixed_cents, sessions_required, valid_from, valid_to, active)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)`
    res, err := r.db.ExecContext(ctx, q,
        string(p.OwnerKind), p.OwnerID, p.Kind, p.Percentage, p.FixedCents,
        p.SessionsRequired, p.ValidFrom, p.ValidTo)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    p.ID = uint64(id)
    return nil
}

// GetByID returns a plan or ErrNotFound.
func (r *PricingPlanRepo) GetByID(ctx context.Context, id uint64) (*model.PricingPlan, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM pricing_plans WHERE id = ?`, id)
    p, err := scanPlan(row)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    return &p, nil
}

// GetByIDTx is the transactional variant used by checkout.
func (r *PricingPlanRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.PricingPlan, error) {
    row := tx.QueryRowContext(ctx, `SELECT `+planColumns+` FROM pricing_plans WHERE id = ?`, id)
    p, err := scanPlan(row)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    return &p, nil
}

// ListByOwner returns an owner's plans newest first.
func (r *PricingPlanRepo) ListByOwner(ctx context.Context, ownerKind model.PlanOwnerKind, ownerID uint64) ([]model.PricingPlan, error) {
    query := `SELECT ` + planColumns + ` FROM pricing_plans WHERE owner_kind = ? AND owner_id = ? ORDER BY created_at DESC`
    rows, err := r.db.QueryContext(ctx, query, string(ownerKind), ownerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.PricingPlan, 0)
    for rows.Next() {
        p, err := scanPlan(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    return out, rows.Err()
}

// Deactivate retires a plan owned by the caller.  Returns ErrNotFound
// when no such plan exists and ErrForbidden on an ownership mismatch.
func (r *PricingPlanRepo) Deactivate(ctx context.Context, id uint64, ownerKind model.PlanOwnerKind, ownerID uint64) error {
    var actualKind string
    var actualOwner uint64
    err := r.db.QueryRowContext(ctx, `SELECT owner_kind, owner_id FROM pricing_plans WHERE id = ?`, id).
        Scan(&actualKind, &actualOwner)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return ErrNotFound
        }
        return err
    }
    if actualKind != string(ownerKind) || actualOwner != ownerID {
        return ErrForbidden
    }
    _, err = r.db.ExecContext(ctx,
        `UPDATE pricing_plans SET active = 0, updated_at = UTC_TIMESTAMP() WHERE id = ?`, id)
    return err
}
