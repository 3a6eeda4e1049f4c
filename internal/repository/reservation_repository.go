package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/coach-court-booking/internal/model"
)

// ReservationRepo provides data access to the slot_reservations table.
// Expiration is enforced lazily: every read filters on
// expires_at > UTC_TIMESTAMP(), so an expired row simply stops blocking
// other holders until the sweeper physically removes it.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the provided database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ActiveBySlotIDsTx returns all unexpired reservations covering any of
// the given slots.  Runs inside the caller's transaction so the result
// is consistent with the slot row locks taken alongside it.
func (r *ReservationRepo) ActiveBySlotIDsTx(ctx context.Context, tx *sql.Tx, slotIDs []uint64) ([]model.SlotReservation, error) {
    if len(slotIDs) == 0 {
        return nil, nil
    }
    query := `SELECT id, slot_id, holder_id, token, expires_at, created_at
              FROM slot_reservations
              WHERE slot_id IN (` + placeholders(len(slotIDs)) + `) AND expires_at > UTC_TIMESTAMP()`
    rows, err := tx.QueryContext(ctx, query, idArgs(slotIDs)...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.SlotReservation
    for rows.Next() {
        var res model.SlotReservation
        if err := rows.Scan(&res.ID, &res.SlotID, &res.HolderID, &res.Token, &res.ExpiresAt, &res.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, res)
    }
    return out, rows.Err()
}

// CreateMultipleTx inserts one reservation row per slot.  All rows of a
// hold request share the same token and expiry.  Passing an empty slice
// has no effect and returns nil.
func (r *ReservationRepo) CreateMultipleTx(ctx context.Context, tx *sql.Tx, reservations []model.SlotReservation) error {
    if len(reservations) == 0 {
        return nil
    }
    query := `INSERT INTO slot_reservations (slot_id, holder_id, token, expires_at) VALUES `
    args := make([]interface{}, 0, len(reservations)*4)
    for i, res := range reservations {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?)"
        args = append(args, res.SlotID, res.HolderID, res.Token, res.ExpiresAt.UTC())
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

// DeleteByHolderOnSlotsTx removes the holder's own reservations on the
// given slots so a re-hold never leaves duplicate rows behind.
func (r *ReservationRepo) DeleteByHolderOnSlotsTx(ctx context.Context, tx *sql.Tx, holderID uint64, slotIDs []uint64) error {
    if len(slotIDs) == 0 {
        return nil
    }
    query := `DELETE FROM slot_reservations WHERE holder_id = ? AND slot_id IN (` + placeholders(len(slotIDs)) + `)`
    args := make([]interface{}, 0, len(slotIDs)+1)
    args = append(args, holderID)
    args = append(args, idArgs(slotIDs)...)
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

// DeleteByTokenTx removes every reservation of a checkout once its
// bookings have been persisted.
func (r *ReservationRepo) DeleteByTokenTx(ctx context.Context, tx *sql.Tx, token string) error {
    _, err := tx.ExecContext(ctx, `DELETE FROM slot_reservations WHERE token = ?`, token)
    return err
}

// DeleteExpiredTx purges reservations past their expiry inside the
// caller's transaction and returns the number of rows removed.
func (r *ReservationRepo) DeleteExpiredTx(ctx context.Context, tx *sql.Tx) (int64, error) {
    res, err := tx.ExecContext(ctx, `DELETE FROM slot_reservations WHERE expires_at <= UTC_TIMESTAMP()`)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// DeleteExpired is the standalone variant used by the periodic sweeper.
func (r *ReservationRepo) DeleteExpired(ctx context.Context) (int64, error) {
    res, err := r.db.ExecContext(ctx, `DELETE FROM slot_reservations WHERE expires_at <= UTC_TIMESTAMP()`)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
