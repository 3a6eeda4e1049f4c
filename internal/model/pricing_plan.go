package model

import "time"

// Discount kinds supported by pricing plans.  first_time applies only to
// a student's first booking with a coach, package requires a minimum
// number of sessions bought together and also seeds a session package,
// seasonal is bounded by a date range and custom has no extra condition.
const (
    DiscountKindFirstTime = "FIRST_TIME"
    DiscountKindPackage   = "PACKAGE"
    DiscountKindSeasonal  = "SEASONAL"
    DiscountKindCustom    = "CUSTOM"
)

// PlanOwnerKind distinguishes plans owned by a single coach from plans
// owned by an academy and shared by its member coaches.
type PlanOwnerKind string

const (
    PlanOwnerCoach   PlanOwnerKind = "COACH"
    PlanOwnerAcademy PlanOwnerKind = "ACADEMY"
)

// PricingPlan is a discount rule owned by a coach or an academy.  Exactly
// one of Percentage and FixedCents is set.  Plans are read-only at
// booking time and are deactivated rather than deleted once historical
// bookings reference them.
//
// Fields:
//  ID               – primary key identifier.
//  OwnerKind        – COACH or ACADEMY.
//  OwnerID          – coach id or academy id depending on OwnerKind.
//  Kind             – discount kind (see constants above).
//  Percentage       – percentage discount on the coach fee (nil when fixed).
//  FixedCents       – fixed discount in cents (nil when percentage).
//  SessionsRequired – minimum sessions for PACKAGE kind, 0 otherwise.
//  ValidFrom        – first valid day for SEASONAL kind (inclusive).
//  ValidTo          – last valid day for SEASONAL kind (inclusive).
//  Active           – false once the plan is retired.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type PricingPlan struct {
    ID               uint64        // pricing_plans.id
    OwnerKind        PlanOwnerKind // pricing_plans.owner_kind
    OwnerID          uint64        // pricing_plans.owner_id
    Kind             string        // pricing_plans.kind
    Percentage       *float64      // pricing_plans.percentage (nullable)
    FixedCents       *int64        // pricing_plans.fixed_cents (nullable)
    SessionsRequired uint32        // pricing_plans.sessions_required
    ValidFrom        *time.Time    // pricing_plans.valid_from (nullable)
    ValidTo          *time.Time    // pricing_plans.valid_to (nullable)
    Active           bool          // pricing_plans.active
    CreatedAt        time.Time     // pricing_plans.created_at
    UpdatedAt        time.Time     // pricing_plans.updated_at
}
