package service

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/coach-court-booking/internal/model"
    "github.com/iliyamo/coach-court-booking/internal/repository"
)

func newLifecycleFixture(t *testing.T) (*fakeStore, *BookingLifecycle, *fakePublisher) {
    t.Helper()
    store := newFakeStore()
    store.coaches[1] = model.Coach{ID: 1, HourlyRateCents: 5000, SessionsCompleted: 4}
    store.slots[1] = model.Slot{ID: 1, CoachID: 1, CourtID: 1, IsBooked: true}
    store.bookings[1] = model.Booking{
        ID: 1, StudentID: 42, CoachID: 1, CourtID: 1, SlotID: 1,
        PriceCents: 6000, Status: model.BookingStatusUpcoming,
    }
    store.nextBookingID = 1
    events := &fakePublisher{}
    return store, NewBookingLifecycle(store, events), events
}

func TestCompleteBooking(t *testing.T) {
    store, svc, events := newLifecycleFixture(t)

    b, err := svc.Complete(context.Background(), 1, 1)
    require.NoError(t, err)
    assert.Equal(t, model.BookingStatusCompleted, b.Status)
    assert.Equal(t, model.BookingStatusCompleted, store.bookings[1].Status)
    assert.Equal(t, uint32(5), store.coaches[1].SessionsCompleted)

    require.Len(t, events.completed, 1)
    assert.Equal(t, uint64(1), events.completed[0].BookingID)
    assert.Equal(t, int64(6000), events.completed[0].PriceCents)
}

func TestCompletePackageFundedBooking(t *testing.T) {
    store, svc, _ := newLifecycleFixture(t)
    store.packages[10] = model.BookingPackage{
        ID: 10, StudentID: 42, Kind: model.PackageKindCoach, CoachID: 1,
        TotalSessions: 10, SessionsBooked: 5, SessionsCompleted: 2,
        Status: model.PackageStatusActive,
    }
    pkgID := uint64(10)
    b := store.bookings[1]
    b.PackageID = &pkgID
    store.bookings[1] = b

    _, err := svc.Complete(context.Background(), 1, 1)
    require.NoError(t, err)
    assert.Equal(t, uint32(3), store.packages[10].SessionsCompleted)
    assert.Equal(t, uint32(5), store.packages[10].SessionsBooked, "completion never re-consumes a session")
}

func TestCompleteGuards(t *testing.T) {
    _, svc, _ := newLifecycleFixture(t)
    ctx := context.Background()

    _, err := svc.Complete(ctx, 1, 99)
    assert.ErrorIs(t, err, repository.ErrForbidden, "only the booking's coach may complete it")

    _, err = svc.Complete(ctx, 404, 1)
    assert.ErrorIs(t, err, repository.ErrNotFound)

    _, err = svc.Complete(ctx, 1, 1)
    require.NoError(t, err)
    _, err = svc.Complete(ctx, 1, 1)
    assert.ErrorIs(t, err, repository.ErrConflict, "a booking completes at most once")
}

func TestCompleteSurvivesPublishFailure(t *testing.T) {
    store, svc, events := newLifecycleFixture(t)
    events.fail = true

    b, err := svc.Complete(context.Background(), 1, 1)
    require.NoError(t, err, "the loyalty event is fire-and-forget")
    assert.Equal(t, model.BookingStatusCompleted, b.Status)
    assert.Equal(t, model.BookingStatusCompleted, store.bookings[1].Status)
}

func TestCancelBookingReleasesSlot(t *testing.T) {
    store, svc, _ := newLifecycleFixture(t)

    b, err := svc.Cancel(context.Background(), 1, 42, 0)
    require.NoError(t, err)
    assert.Equal(t, model.BookingStatusCancelled, b.Status)
    assert.False(t, store.slots[1].IsBooked, "a cancelled slot is reservable again immediately")
}

func TestCancelByCoach(t *testing.T) {
    store, svc, _ := newLifecycleFixture(t)

    _, err := svc.Cancel(context.Background(), 1, 0, 1)
    require.NoError(t, err)
    assert.Equal(t, model.BookingStatusCancelled, store.bookings[1].Status)
}

func TestCancelGuards(t *testing.T) {
    _, svc, _ := newLifecycleFixture(t)
    ctx := context.Background()

    _, err := svc.Cancel(ctx, 1, 7, 7)
    assert.ErrorIs(t, err, repository.ErrForbidden)

    _, err = svc.Cancel(ctx, 1, 42, 0)
    require.NoError(t, err)
    _, err = svc.Cancel(ctx, 1, 42, 0)
    assert.ErrorIs(t, err, repository.ErrConflict)
}
