package service

import (
    "context"
    "log"
    "time"

    "github.com/iliyamo/coach-court-booking/internal/model"
    "github.com/iliyamo/coach-court-booking/internal/queue"
    "github.com/iliyamo/coach-court-booking/internal/repository"
)

// BookingLifecycle moves bookings out of UPCOMING.  Completion and
// cancellation each run in one store transaction; the loyalty event
// emitted after completion is fire-and-forget.
type BookingLifecycle struct {
    store  repository.Store
    events EventPublisher

    now func() time.Time
}

// NewBookingLifecycle builds the lifecycle service.  events may be nil.
func NewBookingLifecycle(store repository.Store, events EventPublisher) *BookingLifecycle {
    return &BookingLifecycle{
        store:  store,
        events: events,
        now:    func() time.Time { return time.Now().UTC() },
    }
}

// Complete marks a booking COMPLETED on behalf of its coach.  It bumps
// the coach's completed-session counter and, for package-funded
// bookings, the package's sessions_completed.  The loyalty-points event
// published afterwards is logged and swallowed on failure; it never
// propagates to the caller.
func (l *BookingLifecycle) Complete(ctx context.Context, bookingID, coachID uint64) (*model.Booking, error) {
    var booking *model.Booking
    err := l.store.InTx(ctx, func(tx repository.StoreTx) error {
        b, err := tx.BookingByID(ctx, bookingID)
        if err != nil {
            return err
        }
        if b.CoachID != coachID {
            return repository.ErrForbidden
        }
        if b.Status != model.BookingStatusUpcoming {
            return repository.ErrConflict
        }
        if err := tx.SetBookingStatus(ctx, b.ID, model.BookingStatusCompleted); err != nil {
            return err
        }
        if err := tx.IncrementCoachCompleted(ctx, b.CoachID); err != nil {
            return err
        }
        if b.PackageID != nil {
            if err := tx.IncrementPackageCompleted(ctx, *b.PackageID); err != nil {
                return err
            }
        }
        b.Status = model.BookingStatusCompleted
        booking = b
        return nil
    })
    if err != nil {
        return nil, err
    }

    if l.events != nil {
        ev := queue.BookingCompletedEvent{
            BookingID:   booking.ID,
            StudentID:   booking.StudentID,
            CoachID:     booking.CoachID,
            PriceCents:  booking.PriceCents,
            CompletedAt: l.now().Format(time.RFC3339),
        }
        if err := l.events.BookingCompleted(ctx, ev); err != nil {
            log.Printf("booking: loyalty event publish failed for booking %d: %v", booking.ID, err)
        }
    }
    return booking, nil
}

// Cancel marks a booking CANCELLED on behalf of its student or coach and
// releases the slot immediately; a cancelled slot is reservable again
// with no cooldown.
func (l *BookingLifecycle) Cancel(ctx context.Context, bookingID, actorStudentID, actorCoachID uint64) (*model.Booking, error) {
    var booking *model.Booking
    err := l.store.InTx(ctx, func(tx repository.StoreTx) error {
        b, err := tx.BookingByID(ctx, bookingID)
        if err != nil {
            return err
        }
        if b.StudentID != actorStudentID && b.CoachID != actorCoachID {
            return repository.ErrForbidden
        }
        if b.Status != model.BookingStatusUpcoming {
            return repository.ErrConflict
        }
        if err := tx.SetBookingStatus(ctx, b.ID, model.BookingStatusCancelled); err != nil {
            return err
        }
        if err := tx.MarkSlotsBooked(ctx, []uint64{b.SlotID}, false); err != nil {
            return err
        }
        b.Status = model.BookingStatusCancelled
        booking = b
        return nil
    })
    if err != nil {
        return nil, err
    }
    return booking, nil
}
