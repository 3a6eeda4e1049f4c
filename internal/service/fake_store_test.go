package service

import (
    "context"
    "errors"
    "sort"
    "sync"
    "time"

    "github.com/iliyamo/coach-court-booking/internal/model"
    "github.com/iliyamo/coach-court-booking/internal/queue"
    "github.com/iliyamo/coach-court-booking/internal/repository"
)

// errBoom is the injected infrastructure failure.
var errBoom = errors.New("boom")

// fakeStore is an in-memory repository.Store with real transaction
// semantics: InTx serializes on a mutex and restores a snapshot when the
// callback fails, so atomicity and mutual-exclusion behaviour can be
// exercised without MySQL.
type fakeStore struct {
    mu sync.Mutex

    slots        map[uint64]model.Slot
    reservations []model.SlotReservation
    bookings     map[uint64]model.Booking
    packages     map[uint64]model.BookingPackage
    plans        map[uint64]model.PricingPlan
    coaches      map[uint64]model.Coach
    fees         map[uint64][]model.CourtFee
    members      map[[2]uint64]bool // [coachID, academyID] -> active

    nextReservationID uint64
    nextBookingID     uint64

    now func() time.Time

    // failure injection
    failInsertBooking bool
}

func newFakeStore() *fakeStore {
    return &fakeStore{
        slots:    make(map[uint64]model.Slot),
        bookings: make(map[uint64]model.Booking),
        packages: make(map[uint64]model.BookingPackage),
        plans:    make(map[uint64]model.PricingPlan),
        coaches:  make(map[uint64]model.Coach),
        fees:     make(map[uint64][]model.CourtFee),
        members:  make(map[[2]uint64]bool),
        now:      func() time.Time { return time.Now().UTC() },
    }
}

type snapshot struct {
    slots             map[uint64]model.Slot
    reservations      []model.SlotReservation
    bookings          map[uint64]model.Booking
    packages          map[uint64]model.BookingPackage
    nextReservationID uint64
    nextBookingID     uint64
}

func (s *fakeStore) snapshot() snapshot {
    snap := snapshot{
        slots:             make(map[uint64]model.Slot, len(s.slots)),
        reservations:      append([]model.SlotReservation(nil), s.reservations...),
        bookings:          make(map[uint64]model.Booking, len(s.bookings)),
        packages:          make(map[uint64]model.BookingPackage, len(s.packages)),
        nextReservationID: s.nextReservationID,
        nextBookingID:     s.nextBookingID,
    }
    for k, v := range s.slots {
        snap.slots[k] = v
    }
    for k, v := range s.bookings {
        snap.bookings[k] = v
    }
    for k, v := range s.packages {
        snap.packages[k] = v
    }
    return snap
}

func (s *fakeStore) restore(snap snapshot) {
    s.slots = snap.slots
    s.reservations = snap.reservations
    s.bookings = snap.bookings
    s.packages = snap.packages
    s.nextReservationID = snap.nextReservationID
    s.nextBookingID = snap.nextBookingID
}

func (s *fakeStore) InTx(ctx context.Context, fn func(tx repository.StoreTx) error) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    snap := s.snapshot()
    if err := fn(&fakeTx{s}); err != nil {
        s.restore(snap)
        return err
    }
    return nil
}

type fakeTx struct{ s *fakeStore }

func (t *fakeTx) SlotsByIDs(ctx context.Context, ids []uint64) ([]model.Slot, error) {
    var out []model.Slot
    for _, id := range ids {
        if sl, ok := t.s.slots[id]; ok {
            out = append(out, sl)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
    return out, nil
}

func (t *fakeTx) LockSlots(ctx context.Context, ids []uint64) ([]model.Slot, error) {
    out, err := t.SlotsByIDs(ctx, ids)
    if err != nil {
        return nil, err
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out, nil
}

func (t *fakeTx) MarkSlotsBooked(ctx context.Context, ids []uint64, booked bool) error {
    for _, id := range ids {
        sl := t.s.slots[id]
        sl.IsBooked = booked
        t.s.slots[id] = sl
    }
    return nil
}

func (t *fakeTx) ActiveReservations(ctx context.Context, slotIDs []uint64) ([]model.SlotReservation, error) {
    want := make(map[uint64]bool, len(slotIDs))
    for _, id := range slotIDs {
        want[id] = true
    }
    now := t.s.now()
    var out []model.SlotReservation
    for _, res := range t.s.reservations {
        if want[res.SlotID] && !res.Expired(now) {
            out = append(out, res)
        }
    }
    return out, nil
}

func (t *fakeTx) InsertReservations(ctx context.Context, reservations []model.SlotReservation) error {
    for _, res := range reservations {
        t.s.nextReservationID++
        res.ID = t.s.nextReservationID
        res.CreatedAt = t.s.now()
        t.s.reservations = append(t.s.reservations, res)
    }
    return nil
}

func (t *fakeTx) DeleteHolderReservations(ctx context.Context, holderID uint64, slotIDs []uint64) error {
    want := make(map[uint64]bool, len(slotIDs))
    for _, id := range slotIDs {
        want[id] = true
    }
    kept := t.s.reservations[:0]
    for _, res := range t.s.reservations {
        if res.HolderID == holderID && want[res.SlotID] {
            continue
        }
        kept = append(kept, res)
    }
    t.s.reservations = append([]model.SlotReservation(nil), kept...)
    return nil
}

func (t *fakeTx) DeleteReservationsByToken(ctx context.Context, token string) error {
    kept := t.s.reservations[:0]
    for _, res := range t.s.reservations {
        if res.Token == token {
            continue
        }
        kept = append(kept, res)
    }
    t.s.reservations = append([]model.SlotReservation(nil), kept...)
    return nil
}

func (t *fakeTx) DeleteExpiredReservations(ctx context.Context) (int64, error) {
    now := t.s.now()
    var purged int64
    kept := t.s.reservations[:0]
    for _, res := range t.s.reservations {
        if res.Expired(now) {
            purged++
            continue
        }
        kept = append(kept, res)
    }
    t.s.reservations = append([]model.SlotReservation(nil), kept...)
    return purged, nil
}

func (t *fakeTx) InsertBooking(ctx context.Context, b *model.Booking) error {
    if t.s.failInsertBooking {
        return errBoom
    }
    t.s.nextBookingID++
    b.ID = t.s.nextBookingID
    t.s.bookings[b.ID] = *b
    return nil
}

func (t *fakeTx) BookingByID(ctx context.Context, id uint64) (*model.Booking, error) {
    b, ok := t.s.bookings[id]
    if !ok {
        return nil, repository.ErrNotFound
    }
    return &b, nil
}

func (t *fakeTx) SetBookingStatus(ctx context.Context, id uint64, status string) error {
    b, ok := t.s.bookings[id]
    if !ok {
        return repository.ErrNotFound
    }
    b.Status = status
    t.s.bookings[id] = b
    return nil
}

func (t *fakeTx) HasPriorBooking(ctx context.Context, studentID, coachID uint64) (bool, error) {
    for _, b := range t.s.bookings {
        if b.StudentID == studentID && b.CoachID == coachID && b.Status != model.BookingStatusCancelled {
            return true, nil
        }
    }
    return false, nil
}

func (t *fakeTx) LockPackage(ctx context.Context, id uint64) (*model.BookingPackage, error) {
    p, ok := t.s.packages[id]
    if !ok {
        return nil, repository.ErrNotFound
    }
    return &p, nil
}

func (t *fakeTx) ConsumePackage(ctx context.Context, id uint64, n uint32) error {
    p, ok := t.s.packages[id]
    if !ok {
        return repository.ErrNotFound
    }
    if p.SessionsBooked+n > p.TotalSessions {
        return repository.ErrPackageExhausted
    }
    p.SessionsBooked += n
    t.s.packages[id] = p
    return nil
}

func (t *fakeTx) IncrementPackageCompleted(ctx context.Context, id uint64) error {
    p, ok := t.s.packages[id]
    if !ok {
        return repository.ErrNotFound
    }
    p.SessionsCompleted++
    t.s.packages[id] = p
    return nil
}

func (t *fakeTx) PricingPlanByID(ctx context.Context, id uint64) (*model.PricingPlan, error) {
    p, ok := t.s.plans[id]
    if !ok {
        return nil, repository.ErrNotFound
    }
    return &p, nil
}

func (t *fakeTx) CoachByID(ctx context.Context, id uint64) (*model.Coach, error) {
    c, ok := t.s.coaches[id]
    if !ok {
        return nil, repository.ErrNotFound
    }
    return &c, nil
}

func (t *fakeTx) CourtFees(ctx context.Context, courtID uint64) ([]model.CourtFee, error) {
    return t.s.fees[courtID], nil
}

func (t *fakeTx) IsActiveAcademyMember(ctx context.Context, coachID, academyID uint64) (bool, error) {
    return t.s.members[[2]uint64{coachID, academyID}], nil
}

func (t *fakeTx) IncrementCoachCompleted(ctx context.Context, coachID uint64) error {
    c, ok := t.s.coaches[coachID]
    if !ok {
        return repository.ErrNotFound
    }
    c.SessionsCompleted++
    t.s.coaches[coachID] = c
    return nil
}

// fakePublisher records published events for assertions.
type fakePublisher struct {
    mu        sync.Mutex
    confirmed []queue.BookingConfirmedEvent
    completed []queue.BookingCompletedEvent
    fail      bool
}

func (p *fakePublisher) BookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.fail {
        return errBoom
    }
    p.confirmed = append(p.confirmed, ev)
    return nil
}

func (p *fakePublisher) BookingCompleted(ctx context.Context, ev queue.BookingCompletedEvent) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.fail {
        return errBoom
    }
    p.completed = append(p.completed, ev)
    return nil
}

// testClock is a movable wall clock shared between a fake store and the
// services under test.
type testClock struct {
    mu sync.Mutex
    t  time.Time
}

func newTestClock(t time.Time) *testClock { return &testClock{t: t} }

func (c *testClock) Now() time.Time {
    c.mu.Lock()
    defer c.mu.Unlock()
    return c.t
}

func (c *testClock) Advance(d time.Duration) {
    c.mu.Lock()
    defer c.mu.Unlock()
    c.t = c.t.Add(d)
}
