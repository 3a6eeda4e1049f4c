package model

import "time"

// Booking status values.  A booking starts UPCOMING and moves to either
// COMPLETED or CANCELLED.  Cancelling releases the slot immediately.
const (
    BookingStatusUpcoming  = "UPCOMING"
    BookingStatusCompleted = "COMPLETED"
    BookingStatusCancelled = "CANCELLED"
)

// Booking is the confirmed, priced occupation of exactly one slot by one
// student.  All monetary amounts are integer cents.  The price identity
// is price = base_price - discount; when a package funds the booking the
// price equals the court fee alone because the coach fee was pre-paid.
//
// Fields:
//  ID             – primary key identifier.
//  StudentID      – student who booked the session.
//  CoachID        – coach delivering the session.
//  CourtID        – court where the session takes place.
//  SlotID         – slot this booking occupies.
//  StartsAt       – session start (copied from the slot at booking time).
//  EndsAt         – session end.
//  CoachFeeCents  – coach hourly fee component.
//  CourtFeeCents  – court fee component from the fee schedule.
//  BasePriceCents – coach fee + court fee before any discount.
//  PriceCents     – final price after discount or package funding.
//  DiscountCents  – absolute discount applied to this booking.
//  DiscountPct    – percentage discount applied, 0 when none or fixed.
//  PricingPlanID  – discount rule applied, if any.
//  PackageID      – package that funded the coach fee, if any.
//  CoachProofRef  – stored reference of the coaching-fee payment proof.
//  CourtProofRef  – stored reference of the court payment proof.
//  Status         – UPCOMING, COMPLETED or CANCELLED.
//  VenueConfirmed – whether the venue confirmed the court booking.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Booking struct {
    ID             uint64     // bookings.id
    StudentID      uint64     // bookings.student_id
    CoachID        uint64     // bookings.coach_id
    CourtID        uint64     // bookings.court_id
    SlotID         uint64     // bookings.slot_id
    StartsAt       time.Time  // bookings.starts_at
    EndsAt         time.Time  // bookings.ends_at
    CoachFeeCents  int64      // bookings.coach_fee_cents
    CourtFeeCents  int64      // bookings.court_fee_cents
    BasePriceCents int64      // bookings.base_price_cents
    PriceCents     int64      // bookings.price_cents
    DiscountCents  int64      // bookings.discount_cents
    DiscountPct    float64    // bookings.discount_pct
    PricingPlanID  *uint64    // bookings.pricing_plan_id (nullable)
    PackageID      *uint64    // bookings.package_id (nullable)
    CoachProofRef  *string    // bookings.coach_proof_ref (nullable)
    CourtProofRef  *string    // bookings.court_proof_ref (nullable)
    Status         string     // bookings.status
    VenueConfirmed bool       // bookings.venue_confirmed
    CreatedAt      time.Time  // bookings.created_at
    UpdatedAt      time.Time  // bookings.updated_at
}
