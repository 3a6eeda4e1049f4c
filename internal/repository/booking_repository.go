package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/coach-court-booking/internal/model"
)

// BookingRepo provides CRUD operations for bookings.  Bookings are only
// ever inserted inside the checkout transaction; afterwards their status
// moves from UPCOMING to COMPLETED or CANCELLED.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, student_id, coach_id, court_id, slot_id, starts_at, ends_at,
    coach_fee_cents, court_fee_cents, base_price_cents, price_cents, discount_cents, discount_pct,
    pricing_plan_id, package_id, coach_proof_ref, court_proof_ref, status, venue_confirmed,
    created_at, updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (model.Booking, error) {
    var b model.Booking
    var planID, pkgID sql.NullInt64
    var coachRef, courtRef sql.NullString
    err := row.Scan(&b.ID, &b.StudentID, &b.CoachID, &b.CourtID, &b.SlotID, &b.StartsAt, &b.EndsAt,
        &b.CoachFeeCents, &b.CourtFeeCents, &b.BasePriceCents, &b.PriceCents, &b.DiscountCents, &b.DiscountPct,
        &planID, &pkgID, &coachRef, &courtRef, &b.Status, &b.VenueConfirmed,
        &b.CreatedAt, &b.UpdatedAt)
    if err != nil {
        return b, err
    }
    if planID.Valid {
        v := uint64(planID.Int64)
        b.PricingPlanID = &v
    }
    if pkgID.Valid {
        v := uint64(pkgID.Int64)
        b.PackageID = &v
    }
    if coachRef.Valid {
        v := coachRef.String
        b.CoachProofRef = &v
    }
    if courtRef.Valid {
        v := courtRef.String
        b.CourtProofRef = &v
    }
    return b, nil
}

// CreateTx inserts one booking within the checkout transaction and
// populates its generated ID.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    const q = `INSERT INTO bookings
        (student_id, coach_id, court_id, slot_id, starts_at, ends_at,
         coach_fee_cents, court_fee_cents, base_price_cents, price_cents, discount_cents, discount_pct,
         pricing_plan_id, package_id, coach_proof_ref, court_proof_ref, status, venue_confirmed)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`
    res, err := tx.ExecContext(ctx, q,
        b.StudentID, b.CoachID, b.CourtID, b.SlotID, b.StartsAt.UTC(), b.EndsAt.UTC(),
        b.CoachFeeCents, b.CourtFeeCents, b.BasePriceCents, b.PriceCents, b.DiscountCents, b.DiscountPct,
        b.PricingPlanID, b.PackageID, b.CoachProofRef, b.CourtProofRef, b.Status)
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

// GetByIDTx loads a booking for update decisions inside a transaction.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
    row := tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? FOR UPDATE`, id)
    b, err := scanBooking(row)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    return &b, nil
}

// SetStatusTx updates a booking's status inside a transaction.
func (r *BookingRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
    _, err := tx.ExecContext(ctx,
        `UPDATE bookings SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`, status, id)
    return err
}

// HasNonCancelledBetween reports whether the student has any booking
// with the coach that was not cancelled.  Backs the first-time-only
// discount eligibility check.
func (r *BookingRepo) HasNonCancelledBetween(ctx context.Context, studentID, coachID uint64) (bool, error) {
    const q = `SELECT EXISTS(
                 SELECT 1 FROM bookings
                 WHERE student_id = ? AND coach_id = ? AND status <> ?)`
    var exists bool
    err := r.db.QueryRowContext(ctx, q, studentID, coachID, model.BookingStatusCancelled).Scan(&exists)
    return exists, err
}

// HasNonCancelledBetweenTx is the transactional variant used by checkout.
func (r *BookingRepo) HasNonCancelledBetweenTx(ctx context.Context, tx *sql.Tx, studentID, coachID uint64) (bool, error) {
    const q = `SELECT EXISTS(
                 SELECT 1 FROM bookings
                 WHERE student_id = ? AND coach_id = ? AND status <> ?)`
    var exists bool
    err := tx.QueryRowContext(ctx, q, studentID, coachID, model.BookingStatusCancelled).Scan(&exists)
    return exists, err
}

// ListByStudent returns the student's bookings newest first.
func (r *BookingRepo) ListByStudent(ctx context.Context, studentID uint64) ([]model.Booking, error) {
    return r.list(ctx, `student_id`, studentID)
}

// ListByCoach returns the coach's bookings newest first.
func (r *BookingRepo) ListByCoach(ctx context.Context, coachID uint64) ([]model.Booking, error) {
    return r.list(ctx, `coach_id`, coachID)
}

func (r *BookingRepo) list(ctx context.Context, column string, id uint64) ([]model.Booking, error) {
    query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + column + ` = ? ORDER BY created_at DESC`
    rows, err := r.db.QueryContext(ctx, query, id)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Booking, 0)
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, b)
    }
    return out, rows.Err()
}
