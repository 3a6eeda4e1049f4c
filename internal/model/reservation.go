package model

import "time"

// GuestHolderID is the sentinel holder identity used when an anonymous
// visitor holds slots before authenticating.
const GuestHolderID uint64 = 0

// SlotReservation is a short-lived claim on a slot taken during checkout.
// All reservations created by one hold request share a token so the
// checkout can later be validated as a unit.  A reservation expires at
// ExpiresAt; expired rows are ignored by every read path and purged by
// the periodic sweeper.  At most one unexpired reservation may exist per
// slot.
//
// Fields:
//  ID        – primary key identifier.
//  SlotID    – slot being held.
//  HolderID  – user holding the slot (GuestHolderID for guests).
//  Token     – token shared by all reservations of one hold request.
//  ExpiresAt – when the hold stops blocking other holders.
//  CreatedAt – when the hold was created.
type SlotReservation struct {
    ID        uint64    // slot_reservations.id
    SlotID    uint64    // slot_reservations.slot_id
    HolderID  uint64    // slot_reservations.holder_id
    Token     string    // slot_reservations.token
    ExpiresAt time.Time // slot_reservations.expires_at
    CreatedAt time.Time // slot_reservations.created_at
}

// Expired reports whether the reservation no longer blocks other holders
// at the given instant.
func (r SlotReservation) Expired(now time.Time) bool {
    return !r.ExpiresAt.After(now)
}
