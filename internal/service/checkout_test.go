package service

import (
    "context"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/coach-court-booking/internal/model"
    "github.com/iliyamo/coach-court-booking/internal/repository"
)

// checkoutFixture wires a store, a reservation manager and a checkout
// service to one movable clock, seeded with coach 1 (rate 5000) on court
// 1 (flat fee 1000) and three open slots.
type checkoutFixture struct {
    store  *fakeStore
    holds  *ReservationManager
    svc    *CheckoutService
    events *fakePublisher
    clock  *testClock
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
    t.Helper()
    clock := newTestClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
    store := newFakeStore()
    store.now = clock.Now
    store.coaches[1] = model.Coach{ID: 1, HourlyRateCents: 5000}
    store.fees[1] = allDayFee(1000)
    for i := uint64(1); i <= 3; i++ {
        start := clock.Now().Add(time.Duration(i) * time.Hour)
        store.slots[i] = model.Slot{
            ID: i, CoachID: 1, CourtID: 1,
            StartsAt: start, EndsAt: start.Add(time.Hour),
            CourtBookedBy: model.CourtBookedByCoach,
        }
    }

    holds := NewReservationManager(store, DefaultHoldTTL)
    holds.now = clock.Now

    events := &fakePublisher{}
    svc := NewCheckoutService(store, events)
    svc.now = clock.Now

    return &checkoutFixture{store: store, holds: holds, svc: svc, events: events, clock: clock}
}

// hold claims the slots for student 42 and returns the token.
func (f *checkoutFixture) hold(t *testing.T, slotIDs ...uint64) string {
    t.Helper()
    res, err := f.holds.Hold(context.Background(), 42, slotIDs)
    require.NoError(t, err)
    return res.Token
}

func TestCheckoutHappyPath(t *testing.T) {
    f := newCheckoutFixture(t)
    ctx := context.Background()
    token := f.hold(t, 1, 2)

    result, err := f.svc.CreateBookings(ctx, CheckoutRequest{
        StudentID:     42,
        Token:         token,
        SlotIDs:       []uint64{1, 2},
        CoachProofRef: "proofs/coach.png",
        CourtProofRef: "proofs/court.png",
    })
    require.NoError(t, err)
    assert.Equal(t, CheckoutCommitted, result.State)
    assert.NotEmpty(t, result.ConfirmationID)
    require.Len(t, result.Bookings, 2)

    for _, b := range result.Bookings {
        assert.NotZero(t, b.ID)
        assert.Equal(t, model.BookingStatusUpcoming, b.Status)
        assert.Equal(t, int64(6000), b.PriceCents)
        assert.Equal(t, b.BasePriceCents-b.DiscountCents, b.PriceCents)
    }
    assert.True(t, f.store.slots[1].IsBooked)
    assert.True(t, f.store.slots[2].IsBooked)
    assert.False(t, f.store.slots[3].IsBooked)
    assert.Empty(t, f.store.reservations, "the hold is consumed on commit")

    require.Len(t, f.events.confirmed, 1)
    ev := f.events.confirmed[0]
    assert.Equal(t, result.ConfirmationID, ev.ConfirmationID)
    assert.Equal(t, int64(12000), ev.TotalCents)
    assert.ElementsMatch(t, []uint64{1, 2}, ev.SlotIDs)
}

func TestCheckoutRejectsGuests(t *testing.T) {
    f := newCheckoutFixture(t)

    _, err := f.svc.CreateBookings(context.Background(), CheckoutRequest{
        StudentID: model.GuestHolderID,
        Token:     "anything",
        SlotIDs:   []uint64{1},
    })
    assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestCheckoutRejectsMixedBatch(t *testing.T) {
    f := newCheckoutFixture(t)
    sl := f.store.slots[3]
    sl.CourtID = 2
    f.store.slots[3] = sl
    token := f.hold(t, 1, 3)

    _, err := f.svc.CreateBookings(context.Background(), CheckoutRequest{
        StudentID:     42,
        Token:         token,
        SlotIDs:       []uint64{1, 3},
        CoachProofRef: "p",
        CourtProofRef: "p",
    })
    assert.ErrorIs(t, err, repository.ErrMixedBatch)
}

func TestCheckoutExpiredReservation(t *testing.T) {
    f := newCheckoutFixture(t)
    token := f.hold(t, 1)

    f.clock.Advance(DefaultHoldTTL + time.Second)

    _, err := f.svc.CreateBookings(context.Background(), CheckoutRequest{
        StudentID:     42,
        Token:         token,
        SlotIDs:       []uint64{1},
        CoachProofRef: "p",
        CourtProofRef: "p",
    })
    assert.ErrorIs(t, err, repository.ErrReservationExpired)
    assert.False(t, f.store.slots[1].IsBooked)
    assert.Empty(t, f.store.bookings)
}

func TestCheckoutRollsBackWhenOneSlotTaken(t *testing.T) {
    f := newCheckoutFixture(t)
    token := f.hold(t, 1, 2, 3)

    // Slot 3 got booked out from under the hold.
    sl := f.store.slots[3]
    sl.IsBooked = true
    f.store.slots[3] = sl

    _, err := f.svc.CreateBookings(context.Background(), CheckoutRequest{
        StudentID:     42,
        Token:         token,
        SlotIDs:       []uint64{1, 2, 3},
        CoachProofRef: "p",
        CourtProofRef: "p",
    })
    assert.ErrorIs(t, err, repository.ErrSlotUnavailable)

    var conflict *SlotConflictError
    require.ErrorAs(t, err, &conflict)
    assert.Equal(t, []uint64{3}, conflict.SlotIDs)

    // Full rollback: no bookings, the other two slots stayed open and
    // the hold survives so the student can retry with different slots.
    assert.Empty(t, f.store.bookings)
    assert.False(t, f.store.slots[1].IsBooked)
    assert.False(t, f.store.slots[2].IsBooked)
    assert.Len(t, f.store.reservations, 3)
    assert.Empty(t, f.events.confirmed)
}

func TestCheckoutRollsBackOnPersistenceFailure(t *testing.T) {
    f := newCheckoutFixture(t)
    token := f.hold(t, 1, 2)
    f.store.failInsertBooking = true

    _, err := f.svc.CreateBookings(context.Background(), CheckoutRequest{
        StudentID:     42,
        Token:         token,
        SlotIDs:       []uint64{1, 2},
        CoachProofRef: "p",
        CourtProofRef: "p",
    })
    require.ErrorIs(t, err, errBoom)

    assert.Empty(t, f.store.bookings)
    assert.False(t, f.store.slots[1].IsBooked)
    assert.False(t, f.store.slots[2].IsBooked)
    assert.Len(t, f.store.reservations, 2)
}

func TestCheckoutMutualExclusion(t *testing.T) {
    f := newCheckoutFixture(t)
    ctx := context.Background()

    // Two holders somehow both believe they hold slot 1; the slot lock
    // inside the transaction must let exactly one of them win.
    now := f.clock.Now()
    f.store.reservations = []model.SlotReservation{
        {ID: 1, SlotID: 1, HolderID: 42, Token: "token-a", ExpiresAt: now.Add(DefaultHoldTTL)},
        {ID: 2, SlotID: 1, HolderID: 43, Token: "token-b", ExpiresAt: now.Add(DefaultHoldTTL)},
    }

    run := func(studentID uint64, token string) error {
        _, err := f.svc.CreateBookings(ctx, CheckoutRequest{
            StudentID:     studentID,
            Token:         token,
            SlotIDs:       []uint64{1},
            CoachProofRef: "p",
            CourtProofRef: "p",
        })
        return err
    }

    var wg sync.WaitGroup
    errs := make([]error, 2)
    wg.Add(2)
    go func() { defer wg.Done(); errs[0] = run(42, "token-a") }()
    go func() { defer wg.Done(); errs[1] = run(43, "token-b") }()
    wg.Wait()

    var wins, losses int
    for _, err := range errs {
        if err == nil {
            wins++
        } else {
            losses++
            assert.ErrorIs(t, err, repository.ErrSlotUnavailable)
        }
    }
    assert.Equal(t, 1, wins, "exactly one checkout commits")
    assert.Equal(t, 1, losses)
    assert.Len(t, f.store.bookings, 1)
    assert.True(t, f.store.slots[1].IsBooked)
}

func TestCheckoutWithPackage(t *testing.T) {
    f := newCheckoutFixture(t)
    token := f.hold(t, 1, 2)
    f.store.packages[10] = model.BookingPackage{
        ID: 10, StudentID: 42, Kind: model.PackageKindCoach, CoachID: 1,
        TotalSessions: 10, SessionsBooked: 3, Status: model.PackageStatusActive,
    }
    pkgID := uint64(10)

    result, err := f.svc.CreateBookings(context.Background(), CheckoutRequest{
        StudentID: 42,
        Token:     token,
        SlotIDs:   []uint64{1, 2},
        PackageID: &pkgID,
        // No coach proof: the package pre-paid the coach fee.
        CourtProofRef: "proofs/court.png",
    })
    require.NoError(t, err)
    require.Len(t, result.Bookings, 2)

    for _, b := range result.Bookings {
        assert.Equal(t, int64(1000), b.PriceCents, "package bookings owe the court fee only")
        assert.Equal(t, int64(5000), b.DiscountCents)
        require.NotNil(t, b.PackageID)
        assert.Equal(t, pkgID, *b.PackageID)
    }
    // One increment of two, not two increments of one.
    assert.Equal(t, uint32(5), f.store.packages[10].SessionsBooked)
}

func TestCheckoutPackageExhaustedRollsBack(t *testing.T) {
    f := newCheckoutFixture(t)
    token := f.hold(t, 1, 2)
    f.store.packages[10] = model.BookingPackage{
        ID: 10, StudentID: 42, Kind: model.PackageKindCoach, CoachID: 1,
        TotalSessions: 10, SessionsBooked: 9, Status: model.PackageStatusActive,
    }
    pkgID := uint64(10)

    _, err := f.svc.CreateBookings(context.Background(), CheckoutRequest{
        StudentID:     42,
        Token:         token,
        SlotIDs:       []uint64{1, 2},
        PackageID:     &pkgID,
        CourtProofRef: "p",
    })
    assert.ErrorIs(t, err, repository.ErrPackageExhausted)

    assert.Empty(t, f.store.bookings)
    assert.False(t, f.store.slots[1].IsBooked)
    assert.Equal(t, uint32(9), f.store.packages[10].SessionsBooked, "no session is consumed on rollback")
}

func TestCheckoutPackageOwnership(t *testing.T) {
    f := newCheckoutFixture(t)
    token := f.hold(t, 1)
    f.store.packages[10] = model.BookingPackage{
        ID: 10, StudentID: 99, Kind: model.PackageKindCoach, CoachID: 1,
        TotalSessions: 10, Status: model.PackageStatusActive,
    }
    pkgID := uint64(10)

    _, err := f.svc.CreateBookings(context.Background(), CheckoutRequest{
        StudentID:     42,
        Token:         token,
        SlotIDs:       []uint64{1},
        PackageID:     &pkgID,
        CourtProofRef: "p",
    })
    assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestCheckoutProofMatrix(t *testing.T) {
    t.Run("coach proof required without package", func(t *testing.T) {
        f := newCheckoutFixture(t)
        token := f.hold(t, 1)
        _, err := f.svc.CreateBookings(context.Background(), CheckoutRequest{
            StudentID:     42,
            Token:         token,
            SlotIDs:       []uint64{1},
            CourtProofRef: "p",
        })
        assert.ErrorIs(t, err, repository.ErrMissingProof)
    })

    t.Run("court proof required when student books the court", func(t *testing.T) {
        f := newCheckoutFixture(t)
        sl := f.store.slots[1]
        sl.CourtBookedBy = model.CourtBookedByStudent
        f.store.slots[1] = sl
        token := f.hold(t, 1)
        _, err := f.svc.CreateBookings(context.Background(), CheckoutRequest{
            StudentID:     42,
            Token:         token,
            SlotIDs:       []uint64{1},
            CoachProofRef: "p",
        })
        assert.ErrorIs(t, err, repository.ErrMissingProof)
    })

    t.Run("no court proof needed on a free court", func(t *testing.T) {
        f := newCheckoutFixture(t)
        f.store.fees[1] = nil
        token := f.hold(t, 1)
        result, err := f.svc.CreateBookings(context.Background(), CheckoutRequest{
            StudentID:     42,
            Token:         token,
            SlotIDs:       []uint64{1},
            CoachProofRef: "p",
        })
        require.NoError(t, err)
        assert.Equal(t, int64(5000), result.Bookings[0].PriceCents)
    })
}

func TestCheckoutPlanEligibility(t *testing.T) {
    newPlan := func(kind string) model.PricingPlan {
        return model.PricingPlan{
            ID: 20, OwnerKind: model.PlanOwnerCoach, OwnerID: 1,
            Kind: kind, Percentage: ptrF64(10), Active: true,
        }
    }
    planID := uint64(20)
    request := func(token string) CheckoutRequest {
        return CheckoutRequest{
            StudentID:     42,
            Token:         token,
            SlotIDs:       []uint64{1},
            PricingPlanID: &planID,
            CoachProofRef: "p",
            CourtProofRef: "p",
        }
    }

    t.Run("first time applies without prior booking", func(t *testing.T) {
        f := newCheckoutFixture(t)
        f.store.plans[20] = newPlan(model.DiscountKindFirstTime)
        result, err := f.svc.CreateBookings(context.Background(), request(f.hold(t, 1)))
        require.NoError(t, err)
        assert.Equal(t, int64(5500), result.Bookings[0].PriceCents)
    })

    t.Run("first time rejected with prior booking", func(t *testing.T) {
        f := newCheckoutFixture(t)
        f.store.plans[20] = newPlan(model.DiscountKindFirstTime)
        f.store.bookings[1] = model.Booking{
            ID: 1, StudentID: 42, CoachID: 1, Status: model.BookingStatusCompleted,
        }
        f.store.nextBookingID = 1
        _, err := f.svc.CreateBookings(context.Background(), request(f.hold(t, 1)))
        assert.ErrorIs(t, err, repository.ErrPlanNotApplicable)
    })

    t.Run("cancelled history does not block first time", func(t *testing.T) {
        f := newCheckoutFixture(t)
        f.store.plans[20] = newPlan(model.DiscountKindFirstTime)
        f.store.bookings[1] = model.Booking{
            ID: 1, StudentID: 42, CoachID: 1, Status: model.BookingStatusCancelled,
        }
        f.store.nextBookingID = 1
        _, err := f.svc.CreateBookings(context.Background(), request(f.hold(t, 1)))
        require.NoError(t, err)
    })

    t.Run("seasonal inside window", func(t *testing.T) {
        f := newCheckoutFixture(t)
        plan := newPlan(model.DiscountKindSeasonal)
        from := f.clock.Now().Add(-24 * time.Hour)
        to := f.clock.Now().Truncate(24 * time.Hour) // today: inclusive through end of day
        plan.ValidFrom, plan.ValidTo = &from, &to
        f.store.plans[20] = plan
        _, err := f.svc.CreateBookings(context.Background(), request(f.hold(t, 1)))
        require.NoError(t, err)
    })

    t.Run("seasonal outside window", func(t *testing.T) {
        f := newCheckoutFixture(t)
        plan := newPlan(model.DiscountKindSeasonal)
        from := f.clock.Now().Add(-48 * time.Hour)
        to := f.clock.Now().Add(-25 * time.Hour)
        plan.ValidFrom, plan.ValidTo = &from, &to
        f.store.plans[20] = plan
        _, err := f.svc.CreateBookings(context.Background(), request(f.hold(t, 1)))
        assert.ErrorIs(t, err, repository.ErrPlanNotApplicable)
    })

    t.Run("inactive plan", func(t *testing.T) {
        f := newCheckoutFixture(t)
        plan := newPlan(model.DiscountKindCustom)
        plan.Active = false
        f.store.plans[20] = plan
        _, err := f.svc.CreateBookings(context.Background(), request(f.hold(t, 1)))
        assert.ErrorIs(t, err, repository.ErrPlanNotApplicable)
    })

    t.Run("package kind needs enough sessions", func(t *testing.T) {
        f := newCheckoutFixture(t)
        plan := newPlan(model.DiscountKindPackage)
        plan.SessionsRequired = 3
        f.store.plans[20] = plan
        _, err := f.svc.CreateBookings(context.Background(), request(f.hold(t, 1)))
        assert.ErrorIs(t, err, repository.ErrPlanNotApplicable)
    })
}

func TestCheckoutFixedDiscountSumsAcrossSlots(t *testing.T) {
    f := newCheckoutFixture(t)
    f.store.plans[20] = model.PricingPlan{
        ID: 20, OwnerKind: model.PlanOwnerCoach, OwnerID: 1,
        Kind: model.DiscountKindCustom, FixedCents: ptrI64(1000), Active: true,
    }
    planID := uint64(20)
    token := f.hold(t, 1, 2, 3)

    result, err := f.svc.CreateBookings(context.Background(), CheckoutRequest{
        StudentID:     42,
        Token:         token,
        SlotIDs:       []uint64{1, 2, 3},
        PricingPlanID: &planID,
        CoachProofRef: "p",
        CourtProofRef: "p",
    })
    require.NoError(t, err)
    require.Len(t, result.Bookings, 3)

    var totalDiscount int64
    for _, b := range result.Bookings {
        totalDiscount += b.DiscountCents
        assert.Equal(t, b.BasePriceCents-b.DiscountCents, b.PriceCents)
    }
    assert.Equal(t, int64(1000), totalDiscount)
}
