package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/coach-court-booking/internal/model"
)

// PackageRepo provides data access to the booking_packages table.  The
// consumption counter is only ever moved by ConsumeTx, which performs a
// single guarded increment of N so concurrent checkouts can never lose
// an update; the row lock taken by GetForUpdateTx serializes them.
type PackageRepo struct {
    db *sql.DB
}

// NewPackageRepo returns a new PackageRepo bound to the given database.
func NewPackageRepo(db *sql.DB) *PackageRepo { return &PackageRepo{db: db} }

const packageColumns = `id, student_id, kind, coach_id, academy_id, plan_id,
    total_sessions, sessions_booked, sessions_completed,
    original_cents, discount_cents, final_cents, status, expires_at, created_at, updated_at`

func scanPackage(row interface{ Scan(...interface{}) error }) (model.BookingPackage, error) {
    var p model.BookingPackage
    var kind uint8
    var expiresAt sql.NullTime
    err := row.Scan(&p.ID, &p.StudentID, &kind, &p.CoachID, &p.AcademyID, &p.PlanID,
        &p.TotalSessions, &p.SessionsBooked, &p.SessionsCompleted,
        &p.OriginalCents, &p.DiscountCents, &p.FinalCents, &p.Status, &expiresAt, &p.CreatedAt, &p.UpdatedAt)
    if err != nil {
        return p, err
    }
    p.Kind = model.PackageKind(kind)
    if expiresAt.Valid {
        t := expiresAt.Time
        p.ExpiresAt = &t
    }
    return p, nil
}

// Create inserts a freshly purchased package in PENDING status and
// populates its generated ID.
func (r *PackageRepo) Create(ctx context.Context, p *model.BookingPackage) error {
    const q = `INSERT INTO booking_packages
        (student_id, kind, coach_id, academy_id, plan_id, total_sessions, sessions_booked, sessions_completed,
         original_cents, discount_cents, final_cents, status, expires_at)
        VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q,
        p.StudentID, uint8(p.Kind), p.CoachID, p.AcademyID, p.PlanID, p.TotalSessions,
        p.OriginalCents, p.DiscountCents, p.FinalCents, p.Status, p.ExpiresAt)
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

// GetByID returns a package or ErrNotFound.
func (r *PackageRepo) GetByID(ctx context.Context, id uint64) (*model.BookingPackage, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+packageColumns+` FROM booking_packages WHERE id = ?`, id)
    p, err := scanPackage(row)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    return &p, nil
}

// GetForUpdateTx loads a package with its row locked so the consumption
// increment later in the same transaction cannot race another checkout.
func (r *PackageRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.BookingPackage, error) {
    row := tx.QueryRowContext(ctx, `SELECT `+packageColumns+` FROM booking_packages WHERE id = ? FOR UPDATE`, id)
    p, err := scanPackage(row)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    return &p, nil
}

// ConsumeTx increments sessions_booked by n in one statement.  The WHERE
// clause re-checks the capacity so an increment that would overshoot
// total_sessions matches zero rows and surfaces ErrPackageExhausted.
func (r *PackageRepo) ConsumeTx(ctx context.Context, tx *sql.Tx, id uint64, n uint32) error {
    const q = `UPDATE booking_packages
               SET sessions_booked = sessions_booked + ?, updated_at = UTC_TIMESTAMP()
               WHERE id = ? AND sessions_booked + ? <= total_sessions`
    res, err := tx.ExecContext(ctx, q, n, id, n)
    if err != nil {
        return err
    }
    affected, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if affected == 0 {
        return ErrPackageExhausted
    }
    return nil
}

// IncrementCompletedTx bumps sessions_completed when a package-funded
// booking is marked completed.
func (r *PackageRepo) IncrementCompletedTx(ctx context.Context, tx *sql.Tx, id uint64) error {
    _, err := tx.ExecContext(ctx,
        `UPDATE booking_packages SET sessions_completed = sessions_completed + 1, updated_at = UTC_TIMESTAMP() WHERE id = ?`, id)
    return err
}

// SetStatus transitions a package out of PENDING.  Only PENDING rows
// match, so approving or rejecting twice (or after the other) returns
// ErrConflict.
func (r *PackageRepo) SetStatus(ctx context.Context, id uint64, status string) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE booking_packages SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ? AND status = ?`,
        status, id, model.PackageStatusPending)
    if err != nil {
        return err
    }
    affected, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if affected == 0 {
        var exists bool
        if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM booking_packages WHERE id = ?)`, id).Scan(&exists); err != nil {
            return err
        }
        if !exists {
            return ErrNotFound
        }
        return ErrConflict
    }
    return nil
}

// ListByStudent returns the student's packages newest first.
func (r *PackageRepo) ListByStudent(ctx context.Context, studentID uint64) ([]model.BookingPackage, error) {
    query := `SELECT ` + packageColumns + ` FROM booking_packages WHERE student_id = ? ORDER BY created_at DESC`
    rows, err := r.db.QueryContext(ctx, query, studentID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.BookingPackage, 0)
    for rows.Next() {
        p, err := scanPackage(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    return out, rows.Err()
}
