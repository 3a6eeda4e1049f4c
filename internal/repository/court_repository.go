package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/coach-court-booking/internal/model"
)

// CourtRepo provides read access to courts and their fee schedules.
type CourtRepo struct {
    db *sql.DB
}

// NewCourtRepo returns a new CourtRepo bound to the given database.
func NewCourtRepo(db *sql.DB) *CourtRepo { return &CourtRepo{db: db} }

// GetByID returns a court or ErrNotFound.
func (r *CourtRepo) GetByID(ctx context.Context, id uint64) (*model.Court, error) {
    const q = `SELECT id, name, location, created_at, updated_at FROM courts WHERE id = ?`
    var c model.Court
    var location sql.NullString
    err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &location, &c.CreatedAt, &c.UpdatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    if location.Valid {
        v := location.String
        c.Location = &v
    }
    return &c, nil
}

// FeesByCourtTx loads the full fee schedule of a court inside the
// checkout transaction, ordered by window start.
func (r *CourtRepo) FeesByCourtTx(ctx context.Context, tx *sql.Tx, courtID uint64) ([]model.CourtFee, error) {
    const q = `SELECT id, court_id, start_minute, end_minute, fee_cents
               FROM court_fees WHERE court_id = ? ORDER BY start_minute`
    rows, err := tx.QueryContext(ctx, q, courtID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.CourtFee
    for rows.Next() {
        var f model.CourtFee
        if err := rows.Scan(&f.ID, &f.CourtID, &f.StartMinute, &f.EndMinute, &f.FeeCents); err != nil {
            return nil, err
        }
        out = append(out, f)
    }
    return out, rows.Err()
}

// FeesByCourt is the standalone variant for reads outside a checkout
// transaction.
func (r *CourtRepo) FeesByCourt(ctx context.Context, courtID uint64) ([]model.CourtFee, error) {
    const q = `SELECT id, court_id, start_minute, end_minute, fee_cents
               FROM court_fees WHERE court_id = ? ORDER BY start_minute`
    rows, err := r.db.QueryContext(ctx, q, courtID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.CourtFee
    for rows.Next() {
        var f model.CourtFee
        if err := rows.Scan(&f.ID, &f.CourtID, &f.StartMinute, &f.EndMinute, &f.FeeCents); err != nil {
            return nil, err
        }
        out = append(out, f)
    }
    return out, rows.Err()
}
