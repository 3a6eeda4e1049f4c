package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/coach-court-booking/internal/model"
)

// CoachRepo provides read access to coaches and academy memberships.
// Coach profile management lives outside the booking core; this repo
// only serves pricing and eligibility lookups plus the completed-session
// counter.
type CoachRepo struct {
    db *sql.DB
}

// NewCoachRepo returns a new CoachRepo bound to the given database.
func NewCoachRepo(db *sql.DB) *CoachRepo { return &CoachRepo{db: db} }

// GetByID returns a coach or ErrNotFound.
func (r *CoachRepo) GetByID(ctx context.Context, id uint64) (*model.Coach, error) {
    const q = `SELECT id, user_id, display_name, hourly_rate_cents, sessions_completed, created_at, updated_at
               FROM coaches WHERE id = ?`
    var c model.Coach
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &c.ID, &c.UserID, &c.DisplayName, &c.HourlyRateCents, &c.SessionsCompleted, &c.CreatedAt, &c.UpdatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    return &c, nil
}

// GetByIDTx is the transactional variant used by checkout.
func (r *CoachRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Coach, error) {
    const q = `SELECT id, user_id, display_name, hourly_rate_cents, sessions_completed, created_at, updated_at
               FROM coaches WHERE id = ?`
    var c model.Coach
    err := tx.QueryRowContext(ctx, q, id).Scan(
        &c.ID, &c.UserID, &c.DisplayName, &c.HourlyRateCents, &c.SessionsCompleted, &c.CreatedAt, &c.UpdatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    return &c, nil
}

// GetByUserID resolves the coach profile of an authenticated user.
func (r *CoachRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Coach, error) {
    const q = `SELECT id, user_id, display_name, hourly_rate_cents, sessions_completed, created_at, updated_at
               FROM coaches WHERE user_id = ?`
    var c model.Coach
    err := r.db.QueryRowContext(ctx, q, userID).Scan(
        &c.ID, &c.UserID, &c.DisplayName, &c.HourlyRateCents, &c.SessionsCompleted, &c.CreatedAt, &c.UpdatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    return &c, nil
}

// IsActiveAcademyMember reports whether the coach is currently an
// active member of the academy.
func (r *CoachRepo) IsActiveAcademyMember(ctx context.Context, coachID, academyID uint64) (bool, error) {
    const q = `SELECT EXISTS(
                 SELECT 1 FROM academy_members
                 WHERE coach_id = ? AND academy_id = ? AND active = 1)`
    var active bool
    err := r.db.QueryRowContext(ctx, q, coachID, academyID).Scan(&active)
    return active, err
}

// IsActiveAcademyMemberTx reports whether the coach is currently an
// active member of the academy.  Backs academy-package eligibility.
func (r *CoachRepo) IsActiveAcademyMemberTx(ctx context.Context, tx *sql.Tx, coachID, academyID uint64) (bool, error) {
    const q = `SELECT EXISTS(
                 SELECT 1 FROM academy_members
                 WHERE coach_id = ? AND academy_id = ? AND active = 1)`
    var active bool
    err := tx.QueryRowContext(ctx, q, coachID, academyID).Scan(&active)
    return active, err
}

// IncrementSessionsCompletedTx bumps the coach's lifetime counter when a
// booking completes.
func (r *CoachRepo) IncrementSessionsCompletedTx(ctx context.Context, tx *sql.Tx, coachID uint64) error {
    _, err := tx.ExecContext(ctx,
        `UPDATE coaches SET sessions_completed = sessions_completed + 1, updated_at = UTC_TIMESTAMP() WHERE id = ?`, coachID)
    return err
}
