package service

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/coach-court-booking/internal/model"
)

func ptrF64(v float64) *float64 { return &v }
func ptrI64(v int64) *int64     { return &v }

var testCoach = &model.Coach{ID: 1, HourlyRateCents: 5000}

// allDayFee charges the same court fee regardless of start time.
func allDayFee(cents int64) []model.CourtFee {
    return []model.CourtFee{{ID: 1, CourtID: 1, StartMinute: 0, EndMinute: 1439, FeeCents: cents}}
}

func TestCourtFeeAt(t *testing.T) {
    fees := []model.CourtFee{
        {StartMinute: 8 * 60, EndMinute: 12*60 - 1, FeeCents: 800},
        {StartMinute: 12 * 60, EndMinute: 18 * 60, FeeCents: 1500},
    }
    morning := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
    afternoon := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
    night := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)

    assert.Equal(t, int64(800), CourtFeeAt(fees, morning))
    assert.Equal(t, int64(1500), CourtFeeAt(fees, afternoon))
    assert.Equal(t, int64(0), CourtFeeAt(fees, night), "uncovered time of day is free")
    assert.Equal(t, int64(0), CourtFeeAt(nil, morning), "empty schedule is an open court")
}

func TestBaseQuote(t *testing.T) {
    at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
    q := BaseQuote(testCoach, allDayFee(1000), at)

    assert.Equal(t, int64(5000), q.CoachFeeCents)
    assert.Equal(t, int64(1000), q.CourtFeeCents)
    assert.Equal(t, int64(6000), q.BasePriceCents)
    assert.Equal(t, int64(6000), q.PriceCents)
    assert.Equal(t, int64(0), q.DiscountCents)
}

func TestApplyPlanDiscountPercentage(t *testing.T) {
    at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
    plan := &model.PricingPlan{Kind: model.DiscountKindCustom, Percentage: ptrF64(10), Active: true}

    q := ApplyPlanDiscount(BaseQuote(testCoach, allDayFee(1000), at), plan, 1, 0)

    // 10% off the coach fee only: 6000 - 500 = 5500.
    assert.Equal(t, int64(500), q.DiscountCents)
    assert.Equal(t, float64(10), q.DiscountPct)
    assert.Equal(t, int64(5500), q.PriceCents)
    assert.Equal(t, q.BasePriceCents-q.DiscountCents, q.PriceCents)
}

func TestApplyPlanDiscountPercentageRounds(t *testing.T) {
    coach := &model.Coach{HourlyRateCents: 3333}
    at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
    plan := &model.PricingPlan{Kind: model.DiscountKindCustom, Percentage: ptrF64(15), Active: true}

    q := ApplyPlanDiscount(BaseQuote(coach, nil, at), plan, 1, 0)

    // 3333 * 0.15 = 499.95, rounds to 500.
    assert.Equal(t, int64(500), q.DiscountCents)
    assert.Equal(t, int64(2833), q.PriceCents)
}

func TestApplyPlanDiscountFixedSplit(t *testing.T) {
    at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
    plan := &model.PricingPlan{Kind: model.DiscountKindCustom, FixedCents: ptrI64(1000), Active: true}

    var total int64
    shares := make([]int64, 3)
    for i := 0; i < 3; i++ {
        q := ApplyPlanDiscount(BaseQuote(testCoach, allDayFee(1000), at), plan, 3, i)
        shares[i] = q.DiscountCents
        total += q.DiscountCents
    }

    // 1000 / 3 = 333 with 1 remainder cent on the first slot.
    assert.Equal(t, []int64{334, 333, 333}, shares)
    assert.Equal(t, int64(1000), total, "per-slot shares must add up to the plan amount")
}

func TestApplyPlanDiscountFixedClampsAtBase(t *testing.T) {
    at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
    plan := &model.PricingPlan{Kind: model.DiscountKindCustom, FixedCents: ptrI64(999999), Active: true}

    q := ApplyPlanDiscount(BaseQuote(testCoach, allDayFee(1000), at), plan, 1, 0)

    assert.Equal(t, q.BasePriceCents, q.DiscountCents)
    assert.Equal(t, int64(0), q.PriceCents, "a discount never pushes the price below zero")
}

func TestPackageQuote(t *testing.T) {
    at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
    q := PackageQuote(testCoach, allDayFee(1000), at)

    // Coach fee was pre-paid at purchase; only the court fee is owed.
    assert.Equal(t, int64(1000), q.PriceCents)
    assert.Equal(t, int64(5000), q.DiscountCents)
    assert.Equal(t, int64(6000), q.BasePriceCents)
}

func TestPackagePurchasePrice(t *testing.T) {
    t.Run("percentage", func(t *testing.T) {
        plan := &model.PricingPlan{Kind: model.DiscountKindPackage, Percentage: ptrF64(20)}
        original, discount, final := PackagePurchasePrice(5000, 10, plan)
        require.Equal(t, int64(50000), original)
        assert.Equal(t, int64(10000), discount)
        assert.Equal(t, int64(40000), final)
    })
    t.Run("fixed", func(t *testing.T) {
        plan := &model.PricingPlan{Kind: model.DiscountKindPackage, FixedCents: ptrI64(7500)}
        original, discount, final := PackagePurchasePrice(5000, 10, plan)
        require.Equal(t, int64(50000), original)
        assert.Equal(t, int64(7500), discount)
        assert.Equal(t, int64(42500), final)
    })
    t.Run("fixed larger than bundle", func(t *testing.T) {
        plan := &model.PricingPlan{Kind: model.DiscountKindPackage, FixedCents: ptrI64(99999)}
        _, discount, final := PackagePurchasePrice(5000, 2, plan)
        assert.Equal(t, int64(10000), discount)
        assert.Equal(t, int64(0), final)
    })
}
