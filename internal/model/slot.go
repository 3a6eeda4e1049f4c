package model

import "time"

// CourtBookedBy states which party is responsible for reserving the
// physical court for a slot.  When the student books the court they pay
// the venue directly; when the coach books it the court fee may still be
// passed through to the student at checkout.
type CourtBookedBy string

const (
    CourtBookedByStudent CourtBookedBy = "STUDENT" // student reserves and pays the venue
    CourtBookedByCoach   CourtBookedBy = "COACH"   // coach reserves the venue
)

// Slot is a single bookable (coach, court, date, time-range) unit.  A
// coach publishes slots directly or via the weekly bulk operation.  At
// most one non-cancelled booking may reference a slot; IsBooked mirrors
// the existence of such a booking.  Slots may only be deleted while
// unbooked.
//
// Fields:
//  ID            – primary key identifier.
//  CoachID       – coach offering the session.
//  CourtID       – court where the session takes place.
//  StartsAt      – when the session begins (UTC).
//  EndsAt        – when the session ends (UTC, after StartsAt).
//  IsBooked      – true iff a non-cancelled booking references this slot.
//  CourtBookedBy – which party reserves the physical court.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Slot struct {
    ID            uint64        // slots.id
    CoachID       uint64        // slots.coach_id
    CourtID       uint64        // slots.court_id
    StartsAt      time.Time     // slots.starts_at
    EndsAt        time.Time     // slots.ends_at
    IsBooked      bool          // slots.is_booked
    CourtBookedBy CourtBookedBy // slots.court_booked_by
    CreatedAt     time.Time     // slots.created_at
    UpdatedAt     time.Time     // slots.updated_at
}
