package service

import (
    "context"
    "time"

    "github.com/iliyamo/coach-court-booking/internal/model"
    "github.com/iliyamo/coach-court-booking/internal/repository"
)

// EnsureCanFund verifies that a package can fund bookings with the given
// coach at the given instant.  A package funds iff it is ACTIVE, not
// expired, has sessions left, and is tied to the coach directly or to an
// academy the coach is an active member of.  It returns
// repository.ErrPackageExhausted when only the session count blocks
// funding and repository.ErrPackageNotEligible for every other reason.
// The membership lookup runs on the caller's transaction so eligibility
// is judged under the same snapshot as the consumption that follows.
func EnsureCanFund(ctx context.Context, tx repository.StoreTx, pkg *model.BookingPackage, coachID uint64, now time.Time) error {
    if pkg.Status != model.PackageStatusActive || pkg.ExpiredAt(now) {
        return repository.ErrPackageNotEligible
    }
    switch pkg.Kind {
    case model.PackageKindCoach:
        if pkg.CoachID != coachID {
            return repository.ErrPackageNotEligible
        }
    case model.PackageKindAcademy:
        active, err := tx.IsActiveAcademyMember(ctx, coachID, pkg.AcademyID)
        if err != nil {
            return err
        }
        if !active {
            return repository.ErrPackageNotEligible
        }
    default:
        return repository.ErrPackageNotEligible
    }
    if pkg.RemainingSessions() == 0 {
        return repository.ErrPackageExhausted
    }
    return nil
}
