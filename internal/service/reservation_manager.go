package service

import (
    "context"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/coach-court-booking/internal/model"
    "github.com/iliyamo/coach-court-booking/internal/repository"
)

// DefaultHoldTTL is how long a hold blocks other holders once created.
const DefaultHoldTTL = 15 * time.Minute

// ReservationManager creates and validates short-lived holds on slots so
// a student can finish a multi-slot checkout without losing slots to a
// competitor.  Every hold request is evaluated and committed as one
// transaction: the slot rows are locked first, so two holders racing for
// the same slot serialize and exactly one of them succeeds.
type ReservationManager struct {
    store repository.Store
    ttl   time.Duration

    // injectable for tests
    now      func() time.Time
    newToken func() string
}

// HoldResult is returned to the client after a successful hold.
type HoldResult struct {
    Token     string
    ExpiresAt time.Time
}

// NewReservationManager builds a manager with the given hold TTL.  A
// non-positive ttl falls back to DefaultHoldTTL.
func NewReservationManager(store repository.Store, ttl time.Duration) *ReservationManager {
    if ttl <= 0 {
        ttl = DefaultHoldTTL
    }
    return &ReservationManager{
        store:    store,
        ttl:      ttl,
        now:      func() time.Time { return time.Now().UTC() },
        newToken: uuid.NewString,
    }
}

// Hold claims the given slots for the holder.  It fails with
// ErrSlotAlreadyBooked when any slot carries a booking and with
// ErrSlotHeldByOther when another holder has an unexpired reservation on
// any slot.  The holder's own prior reservations on these slots are
// replaced, so re-holding is idempotent and never leaves duplicate rows.
// Expired reservations found in passing are purged.
func (m *ReservationManager) Hold(ctx context.Context, holderID uint64, slotIDs []uint64) (*HoldResult, error) {
    slotIDs = dedupe(slotIDs)
    if len(slotIDs) == 0 {
        return nil, repository.ErrSlotNotFound
    }
    token := m.newToken()
    expiresAt := m.now().Add(m.ttl).Truncate(time.Second)

    err := m.store.InTx(ctx, func(tx repository.StoreTx) error {
        slots, err := tx.LockSlots(ctx, slotIDs)
        if err != nil {
            return err
        }
        if missing := missingIDs(slotIDs, slots); len(missing) > 0 {
            return slotConflict(repository.ErrSlotNotFound, missing)
        }
        var booked []uint64
        for _, s := range slots {
            if s.IsBooked {
                booked = append(booked, s.ID)
            }
        }
        if len(booked) > 0 {
            return slotConflict(repository.ErrSlotAlreadyBooked, booked)
        }
        // Purge expired rows in passing to bound table growth.
        if _, err := tx.DeleteExpiredReservations(ctx); err != nil {
            return err
        }
        active, err := tx.ActiveReservations(ctx, slotIDs)
        if err != nil {
            return err
        }
        var heldByOther []uint64
        for _, res := range active {
            if res.HolderID != holderID {
                heldByOther = append(heldByOther, res.SlotID)
            }
        }
        if len(heldByOther) > 0 {
            return slotConflict(repository.ErrSlotHeldByOther, heldByOther)
        }
        if err := tx.DeleteHolderReservations(ctx, holderID, slotIDs); err != nil {
            return err
        }
        reservations := make([]model.SlotReservation, 0, len(slotIDs))
        for _, id := range slotIDs {
            reservations = append(reservations, model.SlotReservation{
                SlotID:    id,
                HolderID:  holderID,
                Token:     token,
                ExpiresAt: expiresAt,
            })
        }
        return tx.InsertReservations(ctx, reservations)
    })
    if err != nil {
        return nil, err
    }
    return &HoldResult{Token: token, ExpiresAt: expiresAt}, nil
}

// Release drops the holder's reservations on the given slots.  Releasing
// slots that are not held is a no-op.
func (m *ReservationManager) Release(ctx context.Context, holderID uint64, slotIDs []uint64) error {
    slotIDs = dedupe(slotIDs)
    if len(slotIDs) == 0 {
        return nil
    }
    return m.store.InTx(ctx, func(tx repository.StoreTx) error {
        return tx.DeleteHolderReservations(ctx, holderID, slotIDs)
    })
}

// Validate checks in its own transaction that every slot is covered by
// an unexpired reservation matching both token and holder.  The checkout
// path uses validateReservationsTx instead, inside its own transaction.
func (m *ReservationManager) Validate(ctx context.Context, token string, holderID uint64, slotIDs []uint64) error {
    return m.store.InTx(ctx, func(tx repository.StoreTx) error {
        return validateReservationsTx(ctx, tx, token, holderID, dedupe(slotIDs))
    })
}

// validateReservationsTx fails with ErrReservationExpired unless every
// slot has an unexpired reservation with the given token and holder.
func validateReservationsTx(ctx context.Context, tx repository.StoreTx, token string, holderID uint64, slotIDs []uint64) error {
    active, err := tx.ActiveReservations(ctx, slotIDs)
    if err != nil {
        return err
    }
    covered := make(map[uint64]bool, len(slotIDs))
    for _, res := range active {
        if res.Token == token && res.HolderID == holderID {
            covered[res.SlotID] = true
        }
    }
    var stale []uint64
    for _, id := range slotIDs {
        if !covered[id] {
            stale = append(stale, id)
        }
    }
    if len(stale) > 0 {
        return slotConflict(repository.ErrReservationExpired, stale)
    }
    return nil
}

// dedupe drops zero and repeated IDs while preserving order.
func dedupe(ids []uint64) []uint64 {
    seen := make(map[uint64]struct{}, len(ids))
    out := make([]uint64, 0, len(ids))
    for _, id := range ids {
        if id == 0 {
            continue
        }
        if _, ok := seen[id]; ok {
            continue
        }
        seen[id] = struct{}{}
        out = append(out, id)
    }
    return out
}

// missingIDs returns requested IDs absent from the loaded slots.
func missingIDs(requested []uint64, slots []model.Slot) []uint64 {
    present := make(map[uint64]struct{}, len(slots))
    for _, s := range slots {
        present[s.ID] = struct{}{}
    }
    var missing []uint64
    for _, id := range requested {
        if _, ok := present[id]; !ok {
            missing = append(missing, id)
        }
    }
    return missing
}
