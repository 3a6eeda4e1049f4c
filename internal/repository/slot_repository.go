package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/iliyamo/coach-court-booking/internal/model"
)

// SlotRepo provides data access to the slots table.  Slots are the only
// contended resource in the system together with their reservations, so
// the repo exposes an explicit FOR UPDATE lock used by the checkout
// transaction.  All timestamps are stored and compared in UTC.
type SlotRepo struct {
    db *sql.DB
}

// NewSlotRepo returns a new SlotRepo bound to the provided database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions that
// span several repositories.
func (r *SlotRepo) DB() *sql.DB { return r.db }

const slotColumns = `id, coach_id, court_id, starts_at, ends_at, is_booked, court_booked_by, created_at, updated_at`

func scanSlot(row interface{ Scan(...interface{}) error }) (model.Slot, error) {
    var s model.Slot
    var by string
    err := row.Scan(&s.ID, &s.CoachID, &s.CourtID, &s.StartsAt, &s.EndsAt, &s.IsBooked, &by, &s.CreatedAt, &s.UpdatedAt)
    s.CourtBookedBy = model.CourtBookedBy(by)
    return s, err
}

// Create inserts a single slot and populates its generated ID.
func (r *SlotRepo) Create(ctx context.Context, s *model.Slot) error {
    const q = `INSERT INTO slots (coach_id, court_id, starts_at, ends_at, is_booked, court_booked_by)
               VALUES (?, ?, ?, ?, 0, ?)`
    res, err := r.db.ExecContext(ctx, q, s.CoachID, s.CourtID, s.StartsAt.UTC(), s.EndsAt.UTC(), string(s.CourtBookedBy))
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    s.ID = uint64(id)
    return nil
}

// CreateBulk inserts multiple slots in one statement.  Generated IDs are
// not populated; callers list slots afterwards when they need them.
// Passing an empty slice has no effect and returns nil.
func (r *SlotRepo) CreateBulk(ctx context.Context, slots []model.Slot) error {
    if len(slots) == 0 {
        return nil
    }
    query := `INSERT INTO slots (coach_id, court_id, starts_at, ends_at, is_booked, court_booked_by) VALUES `
    args := make([]interface{}, 0, len(slots)*5)
    for i, s := range slots {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?, 0, ?)"
        args = append(args, s.CoachID, s.CourtID, s.StartsAt.UTC(), s.EndsAt.UTC(), string(s.CourtBookedBy))
    }
    _, err := r.db.ExecContext(ctx, query, args...)
    return err
}

// GetByID returns a single slot or ErrSlotNotFound.
func (r *SlotRepo) GetByID(ctx context.Context, id uint64) (*model.Slot, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+slotColumns+` FROM slots WHERE id = ?`, id)
    s, err := scanSlot(row)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrSlotNotFound
        }
        return nil, err
    }
    return &s, nil
}

// ByIDsTx loads the given slots inside a transaction without locking.
// The result order follows starts_at; missing IDs are simply absent.
func (r *SlotRepo) ByIDsTx(ctx context.Context, tx *sql.Tx, ids []uint64) ([]model.Slot, error) {
    if len(ids) == 0 {
        return nil, nil
    }
    query := `SELECT ` + slotColumns + ` FROM slots WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY starts_at`
    rows, err := tx.QueryContext(ctx, query, idArgs(ids)...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Slot
    for rows.Next() {
        s, err := scanSlot(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, s)
    }
    return out, rows.Err()
}

// LockByIDsTx loads the given slots with SELECT ... FOR UPDATE so that
// two concurrent checkouts targeting the same slot serialize on the row
// lock.  IDs are sorted before locking to keep lock acquisition order
// deterministic across transactions.
func (r *SlotRepo) LockByIDsTx(ctx context.Context, tx *sql.Tx, ids []uint64) ([]model.Slot, error) {
    if len(ids) == 0 {
        return nil, nil
    }
    sorted := append([]uint64(nil), ids...)
    for i := 1; i < len(sorted); i++ {
        for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
            sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
        }
    }
    query := `SELECT ` + slotColumns + ` FROM slots WHERE id IN (` + placeholders(len(sorted)) + `) ORDER BY id FOR UPDATE`
    rows, err := tx.QueryContext(ctx, query, idArgs(sorted)...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Slot
    for rows.Next() {
        s, err := scanSlot(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, s)
    }
    return out, rows.Err()
}

// MarkBookedTx flips is_booked for the given slots inside a transaction.
func (r *SlotRepo) MarkBookedTx(ctx context.Context, tx *sql.Tx, ids []uint64, booked bool) error {
    if len(ids) == 0 {
        return nil
    }
    query := `UPDATE slots SET is_booked = ?, updated_at = UTC_TIMESTAMP() WHERE id IN (` + placeholders(len(ids)) + `)`
    args := make([]interface{}, 0, len(ids)+1)
    args = append(args, booked)
    args = append(args, idArgs(ids)...)
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

// ListOpenByCoach returns a coach's unbooked future slots ordered by
// start time.  Used by the public browse endpoint.
func (r *SlotRepo) ListOpenByCoach(ctx context.Context, coachID uint64, from time.Time) ([]model.Slot, error) {
    const q = `SELECT ` + slotColumns + ` FROM slots
               WHERE coach_id = ? AND is_booked = 0 AND starts_at >= ?
               ORDER BY starts_at`
    rows, err := r.db.QueryContext(ctx, q, coachID, from.UTC())
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Slot, 0)
    for rows.Next() {
        s, err := scanSlot(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, s)
    }
    return out, rows.Err()
}

// DeleteUnbooked removes a slot owned by the given coach provided it has
// never been booked.  It returns ErrSlotNotFound when the slot does not
// exist, ErrForbidden when owned by another coach and ErrConflict when
// the slot is booked.
func (r *SlotRepo) DeleteUnbooked(ctx context.Context, slotID, coachID uint64) error {
    var ownerID uint64
    var booked bool
    err := r.db.QueryRowContext(ctx, `SELECT coach_id, is_booked FROM slots WHERE id = ?`, slotID).Scan(&ownerID, &booked)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return ErrSlotNotFound
        }
        return err
    }
    if ownerID != coachID {
        return ErrForbidden
    }
    if booked {
        return ErrConflict
    }
    _, err = r.db.ExecContext(ctx, `DELETE FROM slots WHERE id = ? AND is_booked = 0`, slotID)
    return err
}

// placeholders builds "?,?,?" for n parameters.
func placeholders(n int) string {
    return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// idArgs widens a uint64 slice into driver arguments.
func idArgs(ids []uint64) []interface{} {
    args := make([]interface{}, 0, len(ids))
    for _, id := range ids {
        args = append(args, id)
    }
    return args
}
