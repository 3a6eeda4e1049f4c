package model

import "time"

// Package status values.  A purchased package is PENDING until the coach
// or academy approves it; only ACTIVE packages can fund bookings.
const (
    PackageStatusPending  = "PENDING"
    PackageStatusActive   = "ACTIVE"
    PackageStatusRejected = "REJECTED"
)

// PackageKind is the tagged variant separating coach-specific packages
// from academy-wide ones.  A package is tied to exactly one of the two;
// the kind tells which of CoachID and AcademyID is meaningful.
type PackageKind uint8

const (
    PackageKindCoach   PackageKind = iota + 1 // redeemable with one coach
    PackageKindAcademy                        // redeemable with any active member coach
)

// BookingPackage is a pre-purchased bundle of sessions bought by one
// student from one coach or one academy.  SessionsBooked counts sessions
// consumed into bookings; SessionsCompleted counts sessions actually
// delivered.  Invariant: SessionsBooked <= TotalSessions.
//
// Fields:
//  ID                – primary key identifier.
//  StudentID         – student who purchased the package.
//  Kind              – coach-specific or academy-wide.
//  CoachID           – coach the package is tied to (coach kind only).
//  AcademyID         – academy the package is tied to (academy kind only).
//  PlanID            – PACKAGE-kind pricing plan that generated this package.
//  TotalSessions     – sessions purchased.
//  SessionsBooked    – sessions consumed into bookings.
//  SessionsCompleted – sessions delivered.
//  OriginalCents     – price before the package discount.
//  DiscountCents     – discount granted at purchase.
//  FinalCents        – price actually paid.
//  Status            – PENDING, ACTIVE or REJECTED.
//  ExpiresAt         – optional expiry; an expired package cannot fund.
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp.
type BookingPackage struct {
    ID                uint64      // booking_packages.id
    StudentID         uint64      // booking_packages.student_id
    Kind              PackageKind // booking_packages.kind
    CoachID           uint64      // booking_packages.coach_id (coach kind)
    AcademyID         uint64      // booking_packages.academy_id (academy kind)
    PlanID            uint64      // booking_packages.plan_id
    TotalSessions     uint32      // booking_packages.total_sessions
    SessionsBooked    uint32      // booking_packages.sessions_booked
    SessionsCompleted uint32      // booking_packages.sessions_completed
    OriginalCents     int64       // booking_packages.original_cents
    DiscountCents     int64       // booking_packages.discount_cents
    FinalCents        int64       // booking_packages.final_cents
    Status            string      // booking_packages.status
    ExpiresAt         *time.Time  // booking_packages.expires_at (nullable)
    CreatedAt         time.Time   // booking_packages.created_at
    UpdatedAt         time.Time   // booking_packages.updated_at
}

// RemainingSessions returns how many sessions can still be consumed.
func (p BookingPackage) RemainingSessions() uint32 {
    if p.SessionsBooked >= p.TotalSessions {
        return 0
    }
    return p.TotalSessions - p.SessionsBooked
}

// ExpiredAt reports whether the package has passed its expiry at the
// given instant.  Packages without an expiry never expire.
func (p BookingPackage) ExpiredAt(now time.Time) bool {
    return p.ExpiresAt != nil && !p.ExpiresAt.After(now)
}
