// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a checkout commits.  The
// notification consumer uses it to tell the coach about the new
// bookings without querying the primary database.
type BookingConfirmedEvent struct {
    ConfirmationID string   `json:"confirmation_id"`
    StudentID      uint64   `json:"student_id"`
    CoachID        uint64   `json:"coach_id"`
    CourtID        uint64   `json:"court_id"`
    SlotIDs        []uint64 `json:"slot_ids"`
    BookingIDs     []uint64 `json:"booking_ids"`
    TotalCents     int64    `json:"total_cents"`
    ConfirmedAt    string   `json:"confirmed_at"`
}

// BookingCompletedEvent is published after a booking transitions to
// COMPLETED.  The loyalty-points ledger consumes it to award points;
// delivery failures are logged and swallowed, never surfaced to the
// completion caller.
type BookingCompletedEvent struct {
    BookingID   uint64 `json:"booking_id"`
    StudentID   uint64 `json:"student_id"`
    CoachID     uint64 `json:"coach_id"`
    PriceCents  int64  `json:"price_cents"`
    CompletedAt string `json:"completed_at"`
}
