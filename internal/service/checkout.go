package service

import (
    "context"
    "log"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/coach-court-booking/internal/model"
    "github.com/iliyamo/coach-court-booking/internal/queue"
    "github.com/iliyamo/coach-court-booking/internal/repository"
)

// EventPublisher is the outbound messaging capability consumed by the
// checkout and completion flows.  Publish failures never roll back a
// committed booking.
type EventPublisher interface {
    BookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
    BookingCompleted(ctx context.Context, ev queue.BookingCompletedEvent) error
}

// CheckoutState tracks how far a checkout attempt progressed.  Any
// failure short-circuits to CheckoutRolledBack; no partial bookings are
// ever visible.
type CheckoutState string

const (
    CheckoutStarted               CheckoutState = "STARTED"
    CheckoutReservationsValidated CheckoutState = "RESERVATIONS_VALIDATED"
    CheckoutSlotsLocked           CheckoutState = "SLOTS_LOCKED"
    CheckoutPriced                CheckoutState = "PRICED"
    CheckoutPersisted             CheckoutState = "PERSISTED"
    CheckoutCommitted             CheckoutState = "COMMITTED"
    CheckoutRolledBack            CheckoutState = "ROLLED_BACK"
)

// CheckoutRequest is the final create-bookings submission: the slots of
// one hold, the reservation token, payment-proof references and at most
// one discount source (package or pricing plan).
type CheckoutRequest struct {
    StudentID     uint64
    Token         string
    SlotIDs       []uint64
    PackageID     *uint64
    PricingPlanID *uint64
    CoachProofRef string
    CourtProofRef string
}

// CheckoutResult is returned once the transaction commits.
type CheckoutResult struct {
    ConfirmationID string
    Bookings       []model.Booking
    State          CheckoutState
}

// CheckoutService is the booking transaction orchestrator.  It converts
// a validated hold into confirmed bookings atomically: reservations are
// re-validated, slot rows locked, prices computed, bookings persisted,
// the package counter moved by a single increment and the reservations
// cleared, all inside one store transaction.
type CheckoutService struct {
    store  repository.Store
    events EventPublisher

    now func() time.Time
}

// NewCheckoutService builds the orchestrator.  events may be nil in
// which case no confirmation event is published.
func NewCheckoutService(store repository.Store, events EventPublisher) *CheckoutService {
    return &CheckoutService{
        store:  store,
        events: events,
        now:    func() time.Time { return time.Now().UTC() },
    }
}

// CreateBookings runs the checkout state machine.  Conflict and expiry
// errors are retryable after a fresh hold; business-rule errors require
// different input; anything else is an infrastructure failure.  In every
// error case the store transaction has been rolled back completely: the
// slots stay unbooked, no bookings exist and the reservations are left
// in place so the holder can retry without re-holding.
func (s *CheckoutService) CreateBookings(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
    if req.StudentID == model.GuestHolderID {
        return nil, repository.ErrForbidden
    }
    slotIDs := dedupe(req.SlotIDs)
    if len(slotIDs) == 0 {
        return nil, repository.ErrSlotNotFound
    }

    state := CheckoutStarted
    var bookings []model.Booking
    err := s.store.InTx(ctx, func(tx repository.StoreTx) error {
        slots, err := tx.SlotsByIDs(ctx, slotIDs)
        if err != nil {
            return err
        }
        if missing := missingIDs(slotIDs, slots); len(missing) > 0 {
            return slotConflict(repository.ErrSlotNotFound, missing)
        }
        // One checkout covers one coach on one court; cross-court (or
        // cross-coach) batches would make the discount and package
        // bookkeeping ambiguous.
        for _, sl := range slots[1:] {
            if sl.CourtID != slots[0].CourtID || sl.CoachID != slots[0].CoachID {
                return repository.ErrMixedBatch
            }
        }
        coachID := slots[0].CoachID
        courtID := slots[0].CourtID

        if err := validateReservationsTx(ctx, tx, req.Token, req.StudentID, slotIDs); err != nil {
            return err
        }
        state = CheckoutReservationsValidated

        locked, err := tx.LockSlots(ctx, slotIDs)
        if err != nil {
            return err
        }
        var gone []uint64
        for _, sl := range locked {
            if sl.IsBooked {
                gone = append(gone, sl.ID)
            }
        }
        if len(gone) > 0 {
            return slotConflict(repository.ErrSlotUnavailable, gone)
        }
        state = CheckoutSlotsLocked

        coach, err := tx.CoachByID(ctx, coachID)
        if err != nil {
            return err
        }
        fees, err := tx.CourtFees(ctx, courtID)
        if err != nil {
            return err
        }

        var pkg *model.BookingPackage
        var plan *model.PricingPlan
        switch {
        case req.PackageID != nil:
            pkg, err = tx.LockPackage(ctx, *req.PackageID)
            if err != nil {
                return err
            }
            if pkg.StudentID != req.StudentID {
                return repository.ErrForbidden
            }
            if err := EnsureCanFund(ctx, tx, pkg, coachID, s.now()); err != nil {
                return err
            }
        case req.PricingPlanID != nil:
            plan, err = tx.PricingPlanByID(ctx, *req.PricingPlanID)
            if err != nil {
                return err
            }
            if err := s.checkPlanEligibility(ctx, tx, plan, req.StudentID, coachID, len(locked)); err != nil {
                return err
            }
        }

        if err := checkProofs(req, pkg, locked, fees); err != nil {
            return err
        }

        bookings = bookings[:0]
        for i, sl := range locked {
            var q Quote
            switch {
            case pkg != nil:
                q = PackageQuote(coach, fees, sl.StartsAt)
            case plan != nil:
                q = ApplyPlanDiscount(BaseQuote(coach, fees, sl.StartsAt), plan, len(locked), i)
            default:
                q = BaseQuote(coach, fees, sl.StartsAt)
            }
            b := model.Booking{
                StudentID:      req.StudentID,
                CoachID:        coachID,
                CourtID:        courtID,
                SlotID:         sl.ID,
                StartsAt:       sl.StartsAt,
                EndsAt:         sl.EndsAt,
                CoachFeeCents:  q.CoachFeeCents,
                CourtFeeCents:  q.CourtFeeCents,
                BasePriceCents: q.BasePriceCents,
                PriceCents:     q.PriceCents,
                DiscountCents:  q.DiscountCents,
                DiscountPct:    q.DiscountPct,
                Status:         model.BookingStatusUpcoming,
            }
            if pkg != nil {
                id := pkg.ID
                b.PackageID = &id
            }
            if plan != nil {
                id := plan.ID
                b.PricingPlanID = &id
            }
            if req.CoachProofRef != "" {
                ref := req.CoachProofRef
                b.CoachProofRef = &ref
            }
            if req.CourtProofRef != "" {
                ref := req.CourtProofRef
                b.CourtProofRef = &ref
            }
            bookings = append(bookings, b)
        }
        state = CheckoutPriced

        ids := make([]uint64, 0, len(locked))
        for _, sl := range locked {
            ids = append(ids, sl.ID)
        }
        if err := tx.MarkSlotsBooked(ctx, ids, true); err != nil {
            return err
        }
        for i := range bookings {
            if err := tx.InsertBooking(ctx, &bookings[i]); err != nil {
                return err
            }
        }
        // One increment of N, never N increments of one: the package
        // row lock plus this single statement rule out lost updates.
        if pkg != nil {
            if err := tx.ConsumePackage(ctx, pkg.ID, uint32(len(bookings))); err != nil {
                return err
            }
        }
        if err := tx.DeleteReservationsByToken(ctx, req.Token); err != nil {
            return err
        }
        state = CheckoutPersisted
        return nil
    })
    if err != nil {
        log.Printf("checkout: rolled back after %s: %v", state, err)
        return nil, err
    }
    state = CheckoutCommitted

    result := &CheckoutResult{
        ConfirmationID: uuid.NewString(),
        Bookings:       bookings,
        State:          state,
    }
    s.publishConfirmed(ctx, result)
    return result, nil
}

// checkPlanEligibility enforces the plan-kind conditions before any
// discount is applied: first-time plans require no prior non-cancelled
// booking between the student and the coach, seasonal plans must be
// inside their validity window and package-kind plans need the checkout
// to reach the required session count.
func (s *CheckoutService) checkPlanEligibility(ctx context.Context, tx repository.StoreTx, plan *model.PricingPlan, studentID, coachID uint64, slotCount int) error {
    if !plan.Active {
        return repository.ErrPlanNotApplicable
    }
    switch plan.Kind {
    case model.DiscountKindFirstTime:
        prior, err := tx.HasPriorBooking(ctx, studentID, coachID)
        if err != nil {
            return err
        }
        if prior {
            return repository.ErrPlanNotApplicable
        }
    case model.DiscountKindSeasonal:
        today := s.now()
        if plan.ValidFrom == nil || plan.ValidTo == nil ||
            today.Before(*plan.ValidFrom) || today.After(plan.ValidTo.Add(24*time.Hour-time.Nanosecond)) {
            return repository.ErrPlanNotApplicable
        }
    case model.DiscountKindPackage:
        if uint32(slotCount) < plan.SessionsRequired {
            return repository.ErrPlanNotApplicable
        }
    }
    return nil
}

// checkProofs enforces the payment-proof matrix before any mutation: a
// coaching-fee proof is required unless a package funds the coach fee;
// a court proof is required when the student books the court directly or
// when the coach books it but the fee is passed through to the student.
func checkProofs(req CheckoutRequest, pkg *model.BookingPackage, slots []model.Slot, fees []model.CourtFee) error {
    if pkg == nil && req.CoachProofRef == "" {
        return repository.ErrMissingProof
    }
    for _, sl := range slots {
        needCourtProof := sl.CourtBookedBy == model.CourtBookedByStudent ||
            (sl.CourtBookedBy == model.CourtBookedByCoach && CourtFeeAt(fees, sl.StartsAt) > 0)
        if needCourtProof && req.CourtProofRef == "" {
            return repository.ErrMissingProof
        }
    }
    return nil
}

func (s *CheckoutService) publishConfirmed(ctx context.Context, result *CheckoutResult) {
    if s.events == nil || len(result.Bookings) == 0 {
        return
    }
    first := result.Bookings[0]
    ev := queue.BookingConfirmedEvent{
        ConfirmationID: result.ConfirmationID,
        StudentID:      first.StudentID,
        CoachID:        first.CoachID,
        CourtID:        first.CourtID,
        ConfirmedAt:    s.now().Format(time.RFC3339),
    }
    for _, b := range result.Bookings {
        ev.SlotIDs = append(ev.SlotIDs, b.SlotID)
        ev.BookingIDs = append(ev.BookingIDs, b.ID)
        ev.TotalCents += b.PriceCents
    }
    if err := s.events.BookingConfirmed(ctx, ev); err != nil {
        log.Printf("checkout: booking.confirmed publish failed: %v", err)
    }
}
