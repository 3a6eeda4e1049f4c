package service

import (
    "math"
    "time"

    "github.com/iliyamo/coach-court-booking/internal/model"
)

// Quote is the price breakdown of a single slot.  All amounts are
// integer cents and satisfy PriceCents = BasePriceCents - DiscountCents.
type Quote struct {
    CoachFeeCents  int64
    CourtFeeCents  int64
    BasePriceCents int64
    DiscountCents  int64
    DiscountPct    float64
    PriceCents     int64
}

// CourtFeeAt returns the fee of the schedule entry whose window contains
// the slot start time.  When no entry matches the fee is zero; an empty
// schedule is an open court, not an error.
func CourtFeeAt(fees []model.CourtFee, startsAt time.Time) int64 {
    for _, f := range fees {
        if f.Covers(startsAt) {
            return f.FeeCents
        }
    }
    return 0
}

// BaseQuote prices a slot without any discount: coach hourly rate plus
// the court fee for the slot's start time.
func BaseQuote(coach *model.Coach, fees []model.CourtFee, startsAt time.Time) Quote {
    courtFee := CourtFeeAt(fees, startsAt)
    base := coach.HourlyRateCents + courtFee
    return Quote{
        CoachFeeCents:  coach.HourlyRateCents,
        CourtFeeCents:  courtFee,
        BasePriceCents: base,
        PriceCents:     base,
    }
}

// PackageQuote prices a slot funded by a session package.  The coach fee
// was pre-paid at purchase, so the student only owes the court fee.  The
// discount fields record the waived coach fee for the booking breakdown.
func PackageQuote(coach *model.Coach, fees []model.CourtFee, startsAt time.Time) Quote {
    q := BaseQuote(coach, fees, startsAt)
    q.DiscountCents = q.CoachFeeCents
    q.PriceCents = q.CourtFeeCents
    return q
}

// ApplyPlanDiscount applies a pricing plan to a base quote.  Percentage
// discounts touch the coach fee component only.  Fixed discounts are
// split evenly across the slots of the current checkout: each slot gets
// fixed/slotCount cents and the remainder cents go to the slots with the
// lowest indexes so the per-slot shares add up to the plan amount.  The
// discount never pushes a price below zero.
func ApplyPlanDiscount(q Quote, plan *model.PricingPlan, slotCount, slotIndex int) Quote {
    switch {
    case plan.Percentage != nil:
        pct := *plan.Percentage
        q.DiscountPct = pct
        q.DiscountCents = int64(math.Round(float64(q.CoachFeeCents) * pct / 100))
    case plan.FixedCents != nil && slotCount > 0:
        share := *plan.FixedCents / int64(slotCount)
        if int64(slotIndex) < *plan.FixedCents%int64(slotCount) {
            share++
        }
        q.DiscountCents = share
    }
    if q.DiscountCents > q.BasePriceCents {
        q.DiscountCents = q.BasePriceCents
    }
    q.PriceCents = q.BasePriceCents - q.DiscountCents
    return q
}

// PackagePurchasePrice computes the price breakdown of buying a
// PACKAGE-kind plan: sessions at the coach's hourly rate, minus the
// plan's percentage or fixed discount applied to the bundle as a whole.
func PackagePurchasePrice(hourlyRateCents int64, sessions uint32, plan *model.PricingPlan) (original, discount, final int64) {
    original = hourlyRateCents * int64(sessions)
    switch {
    case plan.Percentage != nil:
        discount = int64(math.Round(float64(original) * *plan.Percentage / 100))
    case plan.FixedCents != nil:
        discount = *plan.FixedCents
    }
    if discount > original {
        discount = original
    }
    final = original - discount
    return original, discount, final
}
