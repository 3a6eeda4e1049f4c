package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/coach-court-booking/internal/model"
)

// Store is the unit-of-work boundary consumed by the service layer.
// Every mutating flow (hold, checkout, completion, cancellation, sweep)
// begins a transaction, stages all of its reads and writes through a
// StoreTx, and commits or rolls back as one block.  Services never see
// *sql.Tx directly, which keeps them testable against in-memory fakes.
type Store interface {
    // InTx runs fn inside a single transaction.  When fn returns an
    // error every staged write is rolled back and the error is
    // returned unchanged.
    InTx(ctx context.Context, fn func(tx StoreTx) error) error
}

// StoreTx is the transaction-scoped view of the data store.  Reservation
// reads only ever return unexpired rows; expiry filtering is part of the
// contract, not the caller's job.
type StoreTx interface {
    // Slots.
    SlotsByIDs(ctx context.Context, ids []uint64) ([]model.Slot, error)
    LockSlots(ctx context.Context, ids []uint64) ([]model.Slot, error)
    MarkSlotsBooked(ctx context.Context, ids []uint64, booked bool) error

    // Reservations.
    ActiveReservations(ctx context.Context, slotIDs []uint64) ([]model.SlotReservation, error)
    InsertReservations(ctx context.Context, reservations []model.SlotReservation) error
    DeleteHolderReservations(ctx context.Context, holderID uint64, slotIDs []uint64) error
    DeleteReservationsByToken(ctx context.Context, token string) error
    DeleteExpiredReservations(ctx context.Context) (int64, error)

    // Bookings.
    InsertBooking(ctx context.Context, b *model.Booking) error
    BookingByID(ctx context.Context, id uint64) (*model.Booking, error)
    SetBookingStatus(ctx context.Context, id uint64, status string) error
    HasPriorBooking(ctx context.Context, studentID, coachID uint64) (bool, error)

    // Packages.
    LockPackage(ctx context.Context, id uint64) (*model.BookingPackage, error)
    ConsumePackage(ctx context.Context, id uint64, n uint32) error
    IncrementPackageCompleted(ctx context.Context, id uint64) error

    // Pricing inputs.
    PricingPlanByID(ctx context.Context, id uint64) (*model.PricingPlan, error)
    CoachByID(ctx context.Context, id uint64) (*model.Coach, error)
    CourtFees(ctx context.Context, courtID uint64) ([]model.CourtFee, error)
    IsActiveAcademyMember(ctx context.Context, coachID, academyID uint64) (bool, error)
    IncrementCoachCompleted(ctx context.Context, coachID uint64) error
}

// SQLStore implements Store on MySQL by delegating to the Tx-suffixed
// repository methods within one *sql.Tx.
type SQLStore struct {
    db           *sql.DB
    slots        *SlotRepo
    reservations *ReservationRepo
    bookings     *BookingRepo
    packages     *PackageRepo
    plans        *PricingPlanRepo
    coaches      *CoachRepo
    courts       *CourtRepo
}

// NewSQLStore builds a SQLStore and its repositories from one handle.
func NewSQLStore(db *sql.DB) *SQLStore {
    return &SQLStore{
        db:           db,
        slots:        NewSlotRepo(db),
        reservations: NewReservationRepo(db),
        bookings:     NewBookingRepo(db),
        packages:     NewPackageRepo(db),
        plans:        NewPricingPlanRepo(db),
        coaches:      NewCoachRepo(db),
        courts:       NewCourtRepo(db),
    }
}

// InTx begins a transaction, runs fn and commits; any error from fn or
// commit rolls everything back.
func (s *SQLStore) InTx(ctx context.Context, fn func(tx StoreTx) error) error {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := fn(&sqlStoreTx{store: s, tx: tx}); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

type sqlStoreTx struct {
    store *SQLStore
    tx    *sql.Tx
}

func (t *sqlStoreTx) SlotsByIDs(ctx context.Context, ids []uint64) ([]model.Slot, error) {
    return t.store.slots.ByIDsTx(ctx, t.tx, ids)
}

func (t *sqlStoreTx) LockSlots(ctx context.Context, ids []uint64) ([]model.Slot, error) {
    return t.store.slots.LockByIDsTx(ctx, t.tx, ids)
}

func (t *sqlStoreTx) MarkSlotsBooked(ctx context.Context, ids []uint64, booked bool) error {
    return t.store.slots.MarkBookedTx(ctx, t.tx, ids, booked)
}

func (t *sqlStoreTx) ActiveReservations(ctx context.Context, slotIDs []uint64) ([]model.SlotReservation, error) {
    return t.store.reservations.ActiveBySlotIDsTx(ctx, t.tx, slotIDs)
}

func (t *sqlStoreTx) InsertReservations(ctx context.Context, reservations []model.SlotReservation) error {
    return t.store.reservations.CreateMultipleTx(ctx, t.tx, reservations)
}

func (t *sqlStoreTx) DeleteHolderReservations(ctx context.Context, holderID uint64, slotIDs []uint64) error {
    return t.store.reservations.DeleteByHolderOnSlotsTx(ctx, t.tx, holderID, slotIDs)
}

func (t *sqlStoreTx) DeleteReservationsByToken(ctx context.Context, token string) error {
    return t.store.reservations.DeleteByTokenTx(ctx, t.tx, token)
}

func (t *sqlStoreTx) DeleteExpiredReservations(ctx context.Context) (int64, error) {
    return t.store.reservations.DeleteExpiredTx(ctx, t.tx)
}

func (t *sqlStoreTx) InsertBooking(ctx context.Context, b *model.Booking) error {
    return t.store.bookings.CreateTx(ctx, t.tx, b)
}

func (t *sqlStoreTx) BookingByID(ctx context.Context, id uint64) (*model.Booking, error) {
    return t.store.bookings.GetByIDTx(ctx, t.tx, id)
}

func (t *sqlStoreTx) SetBookingStatus(ctx context.Context, id uint64, status string) error {
    return t.store.bookings.SetStatusTx(ctx, t.tx, id, status)
}

func (t *sqlStoreTx) HasPriorBooking(ctx context.Context, studentID, coachID uint64) (bool, error) {
    return t.store.bookings.HasNonCancelledBetweenTx(ctx, t.tx, studentID, coachID)
}

func (t *sqlStoreTx) LockPackage(ctx context.Context, id uint64) (*model.BookingPackage, error) {
    return t.store.packages.GetForUpdateTx(ctx, t.tx, id)
}

func (t *sqlStoreTx) ConsumePackage(ctx context.Context, id uint64, n uint32) error {
    return t.store.packages.ConsumeTx(ctx, t.tx, id, n)
}

func (t *sqlStoreTx) IncrementPackageCompleted(ctx context.Context, id uint64) error {
    return t.store.packages.IncrementCompletedTx(ctx, t.tx, id)
}

func (t *sqlStoreTx) PricingPlanByID(ctx context.Context, id uint64) (*model.PricingPlan, error) {
    return t.store.plans.GetByIDTx(ctx, t.tx, id)
}

func (t *sqlStoreTx) CoachByID(ctx context.Context, id uint64) (*model.Coach, error) {
    return t.store.coaches.GetByIDTx(ctx, t.tx, id)
}

func (t *sqlStoreTx) CourtFees(ctx context.Context, courtID uint64) ([]model.CourtFee, error) {
    return t.store.courts.FeesByCourtTx(ctx, t.tx, courtID)
}

func (t *sqlStoreTx) IsActiveAcademyMember(ctx context.Context, coachID, academyID uint64) (bool, error) {
    return t.store.coaches.IsActiveAcademyMemberTx(ctx, t.tx, coachID, academyID)
}

func (t *sqlStoreTx) IncrementCoachCompleted(ctx context.Context, coachID uint64) error {
    return t.store.coaches.IncrementSessionsCompletedTx(ctx, t.tx, coachID)
}
